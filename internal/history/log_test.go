package history

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

func TestBoundedEviction(t *testing.T) {
	log := NewLog(t.TempDir())

	for i := 0; i < MaxEntries+1; i++ {
		log.RecordIntervention(Record{
			Message: fmt.Sprintf("intervention %d", i),
			Level:   1,
		})
	}

	entries := log.Entries()
	if len(entries) != MaxEntries {
		t.Fatalf("expected log capped at %d entries, have %d", MaxEntries, len(entries))
	}
	if entries[0].Message != "intervention 1" {
		t.Errorf("oldest entry should have been evicted, head is %q", entries[0].Message)
	}
	if entries[len(entries)-1].Message != fmt.Sprintf("intervention %d", MaxEntries) {
		t.Errorf("newest entry missing, tail is %q", entries[len(entries)-1].Message)
	}
}

func TestRecordAssignsIDAndTimestamp(t *testing.T) {
	log := NewLog(t.TempDir())
	fixed := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	log.now = func() time.Time { return fixed }

	rec := log.RecordIntervention(Record{Message: "hello", Level: 2})
	if rec.ID == "" {
		t.Error("expected an assigned ID")
	}
	if !rec.FiredAt.Equal(fixed) {
		t.Errorf("expected FiredAt %v, got %v", fixed, rec.FiredAt)
	}

	// Explicit values are kept.
	at := fixed.Add(-time.Hour)
	rec = log.RecordIntervention(Record{ID: "custom", FiredAt: at})
	if rec.ID != "custom" || !rec.FiredAt.Equal(at) {
		t.Errorf("explicit ID/timestamp were overwritten: %+v", rec)
	}
}

func TestGetStats(t *testing.T) {
	log := NewLog(t.TempDir())
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	log.now = func() time.Time { return now }

	if s := log.GetStats(); s.TotalInterventions != 0 || s.AverageLevel != 0 {
		t.Errorf("empty log should yield zero stats, got %+v", s)
	}

	log.RecordIntervention(Record{Level: 4, FiredAt: now.Add(-time.Hour)})
	log.RecordIntervention(Record{Level: 2, FiredAt: now.Add(-2 * time.Hour)})
	log.RecordIntervention(Record{Level: 0, FiredAt: now.Add(-30 * time.Hour)})

	s := log.GetStats()
	if s.TotalInterventions != 3 {
		t.Errorf("expected 3 total, got %d", s.TotalInterventions)
	}
	if s.Last24h != 2 {
		t.Errorf("expected 2 in the last 24h, got %d", s.Last24h)
	}
	if s.AverageLevel != 2.0 {
		t.Errorf("expected average level 2.0, got %v", s.AverageLevel)
	}
}

func TestReloadKeepsBound(t *testing.T) {
	dir := t.TempDir()

	log := NewLog(dir)
	for i := 0; i < 10; i++ {
		log.RecordIntervention(Record{Message: fmt.Sprintf("m%d", i), Level: i % 5})
	}

	fresh := NewLog(dir)
	if err := fresh.Load(); err != nil {
		t.Fatalf("failed to reload: %v", err)
	}
	entries := fresh.Entries()
	if len(entries) != 10 {
		t.Fatalf("expected 10 entries after reload, got %d", len(entries))
	}
	if entries[0].Message != "m0" || entries[9].Message != "m9" {
		t.Error("reload changed entry order")
	}

	empty := NewLog(t.TempDir())
	if err := empty.Load(); err != nil {
		t.Fatalf("load of missing file should succeed: %v", err)
	}
	if len(empty.Entries()) != 0 {
		t.Error("missing file should load as an empty log")
	}
}

func TestArchiveOutlivesEviction(t *testing.T) {
	dir := t.TempDir()

	archive, err := OpenArchive(filepath.Join(dir, "interventions.db"))
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}
	defer archive.Close()

	log := NewLog(dir)
	log.SetArchive(archive)

	total := MaxEntries + 20
	for i := 0; i < total; i++ {
		log.RecordIntervention(Record{
			Message: fmt.Sprintf("intervention %d", i),
			Level:   3,
		})
	}

	if len(log.Entries()) != MaxEntries {
		t.Fatalf("log should stay bounded at %d", MaxEntries)
	}
	n, err := archive.Count()
	if err != nil {
		t.Fatalf("failed to count archive: %v", err)
	}
	if n != total {
		t.Errorf("archive should keep all %d records, has %d", total, n)
	}
}

func TestArchiveAppendIdempotent(t *testing.T) {
	archive, err := OpenArchive(filepath.Join(t.TempDir(), "interventions.db"))
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}
	defer archive.Close()

	rec := Record{
		ID:      "fixed-id",
		Level:   2,
		Message: "once",
		FiredAt: time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC),
	}
	if err := archive.Append(rec); err != nil {
		t.Fatalf("failed to append: %v", err)
	}
	if err := archive.Append(rec); err != nil {
		t.Fatalf("replayed append should not fail: %v", err)
	}

	n, err := archive.Count()
	if err != nil {
		t.Fatalf("failed to count: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 archived record, got %d", n)
	}

	recent, err := archive.Recent(5)
	if err != nil {
		t.Fatalf("failed to query recent: %v", err)
	}
	if len(recent) != 1 || recent[0].Message != "once" {
		t.Errorf("unexpected recent records: %+v", recent)
	}
}
