package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Archive is a durable SQLite record of every fired intervention. Unlike
// the bounded log it is never evicted; it exists for inspection beyond the
// FIFO window.
type Archive struct {
	db *sql.DB
}

// OpenArchive opens (or creates) the archive database at dbPath.
func OpenArchive(dbPath string) (*Archive, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS interventions (
			id        TEXT PRIMARY KEY,
			task_id   TEXT NOT NULL DEFAULT '',
			level     INTEGER NOT NULL,
			message   TEXT NOT NULL,
			character TEXT NOT NULL DEFAULT '',
			fired_at  TEXT NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create archive table: %w", err)
	}

	return &Archive{db: db}, nil
}

// Close closes the underlying database.
func (a *Archive) Close() error {
	return a.db.Close()
}

// Append inserts a record. Re-inserting the same ID is a no-op so replays
// after a crash stay idempotent.
func (a *Archive) Append(rec Record) error {
	_, err := a.db.Exec(`
		INSERT OR IGNORE INTO interventions (id, task_id, level, message, character, fired_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.TaskID, rec.Level, rec.Message, rec.Character,
		rec.FiredAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert intervention: %w", err)
	}
	return nil
}

// Count returns the number of archived interventions.
func (a *Archive) Count() (int, error) {
	var n int
	if err := a.db.QueryRow(`SELECT COUNT(*) FROM interventions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count interventions: %w", err)
	}
	return n, nil
}

// Recent returns the most recent archived interventions, newest first.
func (a *Archive) Recent(limit int) ([]Record, error) {
	rows, err := a.db.Query(`
		SELECT id, task_id, level, message, character, fired_at
		FROM interventions ORDER BY fired_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query interventions: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var firedAt string
		if err := rows.Scan(&rec.ID, &rec.TaskID, &rec.Level, &rec.Message,
			&rec.Character, &firedAt); err != nil {
			return nil, fmt.Errorf("failed to scan intervention: %w", err)
		}
		rec.FiredAt, _ = time.Parse(time.RFC3339, firedAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}
