package task

import "time"

// Status values for tasks. The defender core never writes these; they are
// owned by the task-management side of the application.
const (
	StatusTodo       = "todo"
	StatusInProgress = "in-progress"
	StatusDone       = "done"
)

// Task is the slice of the task entity the defender core reads. Everything
// else about a task (checklists, projects, ordering) lives elsewhere.
type Task struct {
	ID                   string     `json:"id"`
	Title                string     `json:"title"`
	CreatedAt            time.Time  `json:"created_at"`
	DueDate              *time.Time `json:"due_date,omitempty"`
	Status               string     `json:"status"`
	Priority             int        `json:"priority"`
	ProcrastinationCount int        `json:"procrastination_count"`
}

// Open reports whether the task still needs defending.
func (t *Task) Open() bool {
	return t.Status != StatusDone
}

// Source is the read-only view of the task subsystem consumed by the
// defense monitor.
type Source interface {
	ListOpen() ([]Task, error)
}
