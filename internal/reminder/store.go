package reminder

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/solomonsojay/TaskDefender-sub000/internal/logging"
)

const storeFilename = "reminders.json"

// Store holds the reminder collection, persisted as a whole on every
// mutation. Access is effectively single-writer (one scheduler per state
// dir); concurrent writers race last-writer-wins by design.
type Store struct {
	path      string
	reminders map[string]*Reminder
	defense   map[string]string // taskID -> reminder ID, kind=defense only
	mu        sync.RWMutex
}

// NewStore creates a reminder store rooted at the given state directory.
func NewStore(statePath string) *Store {
	return &Store{
		path:      filepath.Join(statePath, storeFilename),
		reminders: make(map[string]*Reminder),
		defense:   make(map[string]string),
	}
}

// Load reads the collection from disk. Records are decoded element-wise so
// a single malformed entry is dropped with a log line while the rest load.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.reminders = make(map[string]*Reminder)
		s.defense = make(map[string]string)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read reminder store: %w", err)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse reminder store: %w", err)
	}

	s.reminders = make(map[string]*Reminder)
	s.defense = make(map[string]string)
	for i, entry := range raw {
		var r Reminder
		if err := json.Unmarshal(entry, &r); err != nil {
			logging.Warn("store", "dropping malformed reminder record %d: %v", i, err)
			continue
		}
		if r.ID == "" {
			logging.Warn("store", "dropping reminder record %d with empty id", i)
			continue
		}
		s.reminders[r.ID] = &r
		s.indexLocked(&r)
	}
	return nil
}

// Save writes the whole collection to disk.
func (s *Store) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.persistLocked()
}

// persistLocked writes the collection. Callers must hold at least a read
// lock. Entries are sorted for stable files.
func (s *Store) persistLocked() error {
	list := make([]*Reminder, 0, len(s.reminders))
	for _, r := range s.reminders {
		list = append(list, r)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})

	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal reminder store: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write reminder store: %w", err)
	}
	return nil
}

// flushLocked persists and logs instead of failing; in-memory state stays
// authoritative for the current process, the next successful write
// reconciles.
func (s *Store) flushLocked() {
	if err := s.persistLocked(); err != nil {
		logging.Warn("store", "persist failed: %v", err)
	}
}

func (s *Store) indexLocked(r *Reminder) {
	if r.Kind == KindDefense && r.TaskID != "" {
		s.defense[r.TaskID] = r.ID
	}
}

// Add validates and inserts a reminder. Adding a defense reminder for a
// task that already has one replaces the old record, keeping exactly one
// per (task, defense) pair.
func (s *Store) Add(r *Reminder) error {
	if err := r.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = NewID()
	}
	if r.State == "" {
		r.State = StateScheduled
	}
	if r.Recurring == "" {
		r.Recurring = RecurNone
	}
	if r.Kind == KindDefense && r.TaskID != "" {
		if oldID, ok := s.defense[r.TaskID]; ok && oldID != r.ID {
			delete(s.reminders, oldID)
		}
	}
	cp := *r
	s.reminders[cp.ID] = &cp
	s.indexLocked(&cp)
	s.flushLocked()
	return nil
}

// Get returns a copy of a reminder, or nil.
func (s *Store) Get(id string) *Reminder {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if r, ok := s.reminders[id]; ok {
		cp := *r
		return &cp
	}
	return nil
}

// Update replaces an existing reminder.
func (s *Store) Update(r *Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reminders[r.ID]; !ok {
		return fmt.Errorf("reminder not found: %s", r.ID)
	}
	cp := *r
	s.reminders[cp.ID] = &cp
	s.indexLocked(&cp)
	s.flushLocked()
	return nil
}

// Delete removes a reminder permanently. Deactivation never deletes;
// deletion is this distinct explicit operation.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reminders[id]
	if !ok {
		return fmt.Errorf("reminder not found: %s", id)
	}
	delete(s.reminders, id)
	if r.Kind == KindDefense && r.TaskID != "" && s.defense[r.TaskID] == id {
		delete(s.defense, r.TaskID)
	}
	s.flushLocked()
	return nil
}

// All returns copies of every reminder, soonest scheduled first.
func (s *Store) All() []*Reminder {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*Reminder, 0, len(s.reminders))
	for _, r := range s.reminders {
		cp := *r
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].ScheduledFor.Before(list[j].ScheduledFor)
	})
	return list
}

// Active returns copies of reminders with IsActive set.
func (s *Store) Active() []*Reminder {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var list []*Reminder
	for _, r := range s.reminders {
		if r.IsActive {
			cp := *r
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].ScheduledFor.Before(list[j].ScheduledFor)
	})
	return list
}

// DefenseFor returns the defense reminder for a task, or nil.
func (s *Store) DefenseFor(taskID string) *Reminder {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.defense[taskID]
	if !ok {
		return nil
	}
	if r, ok := s.reminders[id]; ok {
		cp := *r
		return &cp
	}
	return nil
}

// ByTask returns copies of all reminders linked to a task.
func (s *Store) ByTask(taskID string) []*Reminder {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var list []*Reminder
	for _, r := range s.reminders {
		if r.TaskID == taskID {
			cp := *r
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].ScheduledFor.Before(list[j].ScheduledFor)
	})
	return list
}

// Len returns the number of stored reminders.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reminders)
}
