// Package history keeps a bounded record of fired interventions for
// statistics.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/solomonsojay/TaskDefender-sub000/internal/logging"
)

const logFilename = "interventions.json"

// MaxEntries bounds the log; the oldest entry is evicted first.
const MaxEntries = 100

// Record is one fired intervention. Immutable once written.
type Record struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id,omitempty"`
	Level     int       `json:"level"`
	Message   string    `json:"message"`
	Character string    `json:"character,omitempty"`
	FiredAt   time.Time `json:"fired_at"`
}

// Stats are the aggregate queries over the log, purely derived.
type Stats struct {
	TotalInterventions int     `json:"total_interventions"`
	Last24h            int     `json:"last_24h"`
	AverageLevel       float64 `json:"average_level"`
}

// Log is the append-only bounded intervention log. An optional archive
// receives every record before eviction can drop it.
type Log struct {
	path    string
	entries []Record
	archive *Archive
	now     func() time.Time
	mu      sync.RWMutex
}

// NewLog creates a log rooted at the given state directory.
func NewLog(statePath string) *Log {
	return &Log{
		path:    filepath.Join(statePath, logFilename),
		entries: []Record{},
		now:     time.Now,
	}
}

// SetArchive attaches a durable archive that outlives the FIFO window.
func (l *Log) SetArchive(a *Archive) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.archive = a
}

// Load reads the persisted log. A missing file is an empty log.
func (l *Log) Load() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := os.ReadFile(l.path)
	if os.IsNotExist(err) {
		l.entries = []Record{}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read intervention log: %w", err)
	}

	var entries []Record
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to parse intervention log: %w", err)
	}
	if entries == nil {
		entries = []Record{}
	}
	if len(entries) > MaxEntries {
		entries = entries[len(entries)-MaxEntries:]
	}
	l.entries = entries
	return nil
}

// Save writes the log to disk.
func (l *Log) Save() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.persistLocked()
}

func (l *Log) persistLocked() error {
	data, err := json.MarshalIndent(l.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal intervention log: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(l.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write intervention log: %w", err)
	}
	return nil
}

// RecordIntervention appends a record, evicting the oldest entry once the
// bound is exceeded. Assigns ID and timestamp when absent.
func (l *Log) RecordIntervention(rec Record) Record {
	l.mu.Lock()
	defer l.mu.Unlock()

	if rec.ID == "" {
		rec.ID = ulid.Make().String()
	}
	if rec.FiredAt.IsZero() {
		rec.FiredAt = l.now()
	}

	l.entries = append(l.entries, rec)
	if len(l.entries) > MaxEntries {
		l.entries = l.entries[len(l.entries)-MaxEntries:]
	}

	if l.archive != nil {
		if err := l.archive.Append(rec); err != nil {
			logging.Warn("history", "archive append failed: %v", err)
		}
	}
	if err := l.persistLocked(); err != nil {
		logging.Warn("history", "persist failed: %v", err)
	}
	return rec
}

// Entries returns a copy of the log, oldest first.
func (l *Log) Entries() []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Record, len(l.entries))
	copy(out, l.entries)
	return out
}

// GetStats derives the aggregate view of the log.
func (l *Log) GetStats() Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	stats := Stats{TotalInterventions: len(l.entries)}
	if len(l.entries) == 0 {
		return stats
	}

	cutoff := l.now().Add(-24 * time.Hour)
	sum := 0
	for _, e := range l.entries {
		sum += e.Level
		if e.FiredAt.After(cutoff) {
			stats.Last24h++
		}
	}
	stats.AverageLevel = float64(sum) / float64(len(l.entries))
	return stats
}
