package task

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

const storeFilename = "tasks.json"

// FileStore reads tasks from a JSON file maintained by the task-management
// side of the application. The defender treats it as read-only apart from
// test seeding.
type FileStore struct {
	path  string
	tasks []Task
	mu    sync.RWMutex
}

// NewFileStore creates a task store rooted at the given state directory.
func NewFileStore(statePath string) *FileStore {
	return &FileStore{
		path:  filepath.Join(statePath, storeFilename),
		tasks: []Task{},
	}
}

// Load reads the task collection from disk. A missing file is an empty
// collection, not an error.
func (s *FileStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.tasks = []Task{}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read task store: %w", err)
	}

	var tasks []Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return fmt.Errorf("failed to parse task store: %w", err)
	}
	if tasks == nil {
		tasks = []Task{}
	}
	s.tasks = tasks
	return nil
}

// Save writes the task collection to disk. Used by tests and by the import
// path; the daemon itself never mutates tasks.
func (s *FileStore) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := json.MarshalIndent(s.tasks, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal task store: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write task store: %w", err)
	}
	return nil
}

// Add appends a task. Test/import helper.
func (s *FileStore) Add(t Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, t)
}

// Get returns a task by ID, or nil.
func (s *FileStore) Get(id string) *Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.tasks {
		if s.tasks[i].ID == id {
			t := s.tasks[i]
			return &t
		}
	}
	return nil
}

// ListOpen returns all tasks not yet done, oldest first.
func (s *FileStore) ListOpen() ([]Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []Task
	for _, t := range s.tasks {
		if t.Open() {
			result = append(result, t)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}
