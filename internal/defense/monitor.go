// Package defense periodically re-evaluates open tasks against their
// deadlines and keeps exactly one escalating defense reminder per task.
package defense

import (
	"fmt"
	"sync"
	"time"

	"github.com/solomonsojay/TaskDefender-sub000/internal/logging"
	"github.com/solomonsojay/TaskDefender-sub000/internal/reminder"
	"github.com/solomonsojay/TaskDefender-sub000/internal/scheduler"
	"github.com/solomonsojay/TaskDefender-sub000/internal/task"
	"github.com/solomonsojay/TaskDefender-sub000/internal/urgency"
)

// DefaultPollInterval is how often task urgency is reassessed.
const DefaultPollInterval = 5 * time.Minute

// procrastinationThreshold forces at least level 2 once a task has been
// put off this many times, regardless of time progress.
const procrastinationThreshold = 3

// Config holds monitor configuration.
type Config struct {
	PollInterval time.Duration
	Character    string // voice persona for defense reminders
	ToneID       string
	Now          func() time.Time
}

// Monitor derives defense reminders from task urgency and feeds them into
// the escalation scheduler.
type Monitor struct {
	tasks     task.Source
	sched     *scheduler.Scheduler
	interval  time.Duration
	character string
	toneID    string
	now       func() time.Time

	mu       sync.Mutex
	stopChan chan struct{}
	stopped  bool
}

// New creates a defense monitor.
func New(tasks task.Source, sched *scheduler.Scheduler, cfg Config) *Monitor {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Monitor{
		tasks:     tasks,
		sched:     sched,
		interval:  cfg.PollInterval,
		character: cfg.Character,
		toneID:    cfg.ToneID,
		now:       cfg.Now,
		stopChan:  make(chan struct{}),
	}
}

// Start begins the reassessment loop.
func (m *Monitor) Start() {
	go m.pollLoop()
	logging.Info("defense", "Started with poll interval %v", m.interval)
}

// Stop halts the loop.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return
	}
	m.stopped = true
	close(m.stopChan)
}

func (m *Monitor) pollLoop() {
	m.Sweep()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopChan:
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

// Sweep runs one reassessment pass over all tasks.
func (m *Monitor) Sweep() {
	open, err := m.tasks.ListOpen()
	if err != nil {
		logging.Warn("defense", "task query failed: %v", err)
		return
	}

	now := m.now()
	openIDs := make(map[string]bool, len(open))
	for i := range open {
		t := &open[i]
		openIDs[t.ID] = true
		m.assess(t, now)
	}

	m.retireClosed(openIDs)
}

// levelFor combines deadline progress with the procrastination override.
func (m *Monitor) levelFor(t *task.Task, now time.Time) urgency.Level {
	level := urgency.Compute(t, now)
	if t.Open() && t.ProcrastinationCount >= procrastinationThreshold && level < urgency.LevelWarning {
		level = urgency.LevelWarning
	}
	return level
}

func (m *Monitor) assess(t *task.Task, now time.Time) {
	level := m.levelFor(t, now)
	existing := m.sched.Store().DefenseFor(t.ID)

	if level == urgency.LevelNone {
		if existing != nil && existing.IsActive {
			if _, err := m.sched.ToggleActive(existing.ID); err != nil {
				logging.Warn("defense", "deactivate failed for task %s: %v", t.ID, err)
			}
		}
		return
	}

	minutes := urgency.RefireMinutes(level)

	if existing == nil {
		title, message := templateFor(level, t.Title)
		_, err := m.sched.CreateReminder(scheduler.Spec{
			TaskID:          t.ID,
			Title:           title,
			Message:         message,
			Kind:            reminder.KindDefense,
			ScheduledFor:    now,
			IntervalMinutes: minutes,
			Channels: reminder.Channels{
				Voice:        m.character != "",
				Tone:         m.toneID != "",
				Push:         true,
				Modal:        true,
				SelectedTone: m.toneID,
				Character:    m.character,
			},
		})
		if err != nil {
			logging.Warn("defense", "create failed for task %s: %v", t.ID, err)
			return
		}
		logging.Info("defense", "Task %s escalated to level %d", logging.Truncate(t.Title, 40), level)
		return
	}

	if !existing.IsActive {
		// Re-escalate a previously retired defense reminder.
		if _, err := m.sched.ToggleActive(existing.ID); err != nil {
			logging.Warn("defense", "reactivate failed for task %s: %v", t.ID, err)
			return
		}
	}

	// Tighten (or relax) the cadence when the level changed. The count is
	// deliberately preserved across cadence changes.
	if existing.IntervalMinutes != minutes {
		prev := urgency.FromRefireMinutes(existing.IntervalMinutes)
		if err := m.sched.SetRefireInterval(existing.ID, minutes); err != nil {
			logging.Warn("defense", "interval update failed for task %s: %v", t.ID, err)
			return
		}
		logging.Info("defense", "Task %s level %d -> %d", logging.Truncate(t.Title, 40), prev, level)
	}
}

// retireClosed deactivates defense reminders whose task is no longer open.
func (m *Monitor) retireClosed(openIDs map[string]bool) {
	for _, r := range m.sched.Store().Active() {
		if r.Kind != reminder.KindDefense || r.TaskID == "" {
			continue
		}
		if openIDs[r.TaskID] {
			continue
		}
		if _, err := m.sched.ToggleActive(r.ID); err != nil {
			logging.Warn("defense", "retire failed for %s: %v", r.ID, err)
		} else {
			logging.Info("defense", "Task %s closed, defense retired", r.TaskID)
		}
	}
}

// templateFor selects the per-level title and message pair.
func templateFor(level urgency.Level, taskTitle string) (string, string) {
	switch level {
	case urgency.LevelHeadsUp:
		return "Heads up: " + taskTitle,
			fmt.Sprintf("%q is past the halfway mark to its deadline. A little progress now saves a scramble later.", taskTitle)
	case urgency.LevelWarning:
		return "Deadline approaching: " + taskTitle,
			fmt.Sprintf("%q is 70%% of the way to its deadline. Time to get moving.", taskTitle)
	case urgency.LevelCritical:
		return "Critical: " + taskTitle,
			fmt.Sprintf("%q is nearly due. Drop the distractions and finish it.", taskTitle)
	case urgency.LevelFinal:
		return "FINAL CALL: " + taskTitle,
			fmt.Sprintf("%q is due imminently. This is the last line of defense!", taskTitle)
	default:
		return taskTitle, ""
	}
}
