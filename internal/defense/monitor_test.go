package defense

import (
	"sync"
	"testing"
	"time"

	"github.com/solomonsojay/TaskDefender-sub000/internal/history"
	"github.com/solomonsojay/TaskDefender-sub000/internal/reminder"
	"github.com/solomonsojay/TaskDefender-sub000/internal/scheduler"
	"github.com/solomonsojay/TaskDefender-sub000/internal/task"
)

// sliceSource serves tasks from memory.
type sliceSource struct {
	mu    sync.Mutex
	tasks []task.Task
}

func (s *sliceSource) ListOpen() ([]task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var open []task.Task
	for _, t := range s.tasks {
		if t.Open() {
			open = append(open, t)
		}
	}
	return open, nil
}

func (s *sliceSource) set(tasks []task.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = tasks
}

type nullSink struct{}

func (nullSink) Dispatch(r *reminder.Reminder, full bool) {}
func (nullSink) ClearPush(id string)                      {}

type fixture struct {
	monitor *Monitor
	sched   *scheduler.Scheduler
	source  *sliceSource
	now     time.Time
	nowMu   sync.Mutex
}

func (f *fixture) clock() time.Time {
	f.nowMu.Lock()
	defer f.nowMu.Unlock()
	return f.now
}

func (f *fixture) advance(d time.Duration) {
	f.nowMu.Lock()
	defer f.nowMu.Unlock()
	f.now = f.now.Add(d)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()

	store := reminder.NewStore(dir)
	if err := store.Load(); err != nil {
		t.Fatalf("failed to load store: %v", err)
	}

	f := &fixture{
		source: &sliceSource{},
		now:    time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC),
	}
	f.sched = scheduler.New(store, history.NewLog(dir), nullSink{}, scheduler.Config{Now: f.clock})
	f.monitor = New(f.source, f.sched, Config{Now: f.clock, Character: "mom", ToneID: "urgent"})
	return f
}

func deadlineTask(id string, createdAt time.Time, hoursUntilDue int) task.Task {
	due := createdAt.Add(time.Duration(hoursUntilDue) * time.Hour)
	return task.Task{
		ID:        id,
		Title:     "task " + id,
		CreatedAt: createdAt,
		DueDate:   &due,
		Status:    task.StatusTodo,
	}
}

func TestSweepCreatesDefenseReminder(t *testing.T) {
	f := newFixture(t)

	// 10h deadline, 6h elapsed: level 1.
	tk := deadlineTask("t1", f.now, 10)
	f.source.set([]task.Task{tk})
	f.advance(6 * time.Hour)

	f.monitor.Sweep()

	r := f.sched.Store().DefenseFor("t1")
	if r == nil {
		t.Fatal("no defense reminder created")
	}
	if r.Kind != reminder.KindDefense || !r.IsActive {
		t.Errorf("unexpected reminder: kind=%s active=%v", r.Kind, r.IsActive)
	}
	if r.IntervalMinutes != 60 {
		t.Errorf("level 1 should re-fire every 60m, got %d", r.IntervalMinutes)
	}
	if r.Channels.Character != "mom" || r.Channels.SelectedTone != "urgent" {
		t.Errorf("configured channels not applied: %+v", r.Channels)
	}
	if !r.Channels.Voice || !r.Channels.Tone || !r.Channels.Push || !r.Channels.Modal {
		t.Errorf("expected all channels enabled, got %+v", r.Channels)
	}

	// A second sweep at the same level leaves the single reminder alone.
	f.monitor.Sweep()
	if f.sched.Store().Len() != 1 {
		t.Fatalf("repeated sweep duplicated reminders, have %d", f.sched.Store().Len())
	}
}

func TestSweepBelowThresholdCreatesNothing(t *testing.T) {
	f := newFixture(t)

	tk := deadlineTask("t1", f.now, 10)
	f.source.set([]task.Task{tk})
	f.advance(2 * time.Hour) // 20%: level 0

	f.monitor.Sweep()
	if f.sched.Store().Len() != 0 {
		t.Errorf("level 0 task got a defense reminder")
	}
}

func TestEscalationTightensInterval(t *testing.T) {
	f := newFixture(t)

	tk := deadlineTask("t1", f.now, 10)
	f.source.set([]task.Task{tk})

	f.advance(6 * time.Hour) // level 1
	f.monitor.Sweep()
	r := f.sched.Store().DefenseFor("t1")
	if r == nil || r.IntervalMinutes != 60 {
		t.Fatalf("expected a level 1 reminder with 60m cadence, got %+v", r)
	}

	f.advance(90 * time.Minute) // 75%: level 2
	f.monitor.Sweep()
	r2 := f.sched.Store().DefenseFor("t1")
	if r2.ID != r.ID {
		t.Fatal("escalation replaced the reminder instead of updating it")
	}
	if r2.IntervalMinutes != 30 {
		t.Errorf("level 2 should re-fire every 30m, got %d", r2.IntervalMinutes)
	}
	if r2.State != r.State {
		t.Errorf("escalation must not restart the cycle, state %s -> %s", r.State, r2.State)
	}

	f.advance(2 * time.Hour) // ~95%+: level 4
	f.monitor.Sweep()
	r3 := f.sched.Store().DefenseFor("t1")
	if r3.IntervalMinutes != 5 {
		t.Errorf("level 4 should re-fire every 5m, got %d", r3.IntervalMinutes)
	}
}

func TestProcrastinationOverride(t *testing.T) {
	f := newFixture(t)

	// Only 20% of the way to the deadline, but repeatedly put off.
	tk := deadlineTask("t1", f.now, 10)
	tk.ProcrastinationCount = 3
	f.source.set([]task.Task{tk})
	f.advance(2 * time.Hour)

	f.monitor.Sweep()

	r := f.sched.Store().DefenseFor("t1")
	if r == nil {
		t.Fatal("procrastinated task got no defense reminder")
	}
	if r.IntervalMinutes != 30 {
		t.Errorf("override should force level 2 cadence (30m), got %d", r.IntervalMinutes)
	}
}

func TestOverrideDoesNotLowerLevel(t *testing.T) {
	f := newFixture(t)

	tk := deadlineTask("t1", f.now, 10)
	tk.ProcrastinationCount = 5
	f.source.set([]task.Task{tk})
	f.advance(9*time.Hour + 36*time.Minute) // 96%: level 4

	f.monitor.Sweep()

	r := f.sched.Store().DefenseFor("t1")
	if r == nil || r.IntervalMinutes != 5 {
		t.Fatalf("expected level 4 cadence (5m), got %+v", r)
	}
}

func TestClosedTaskRetiresDefense(t *testing.T) {
	f := newFixture(t)

	tk := deadlineTask("t1", f.now, 10)
	f.source.set([]task.Task{tk})
	f.advance(8 * time.Hour)
	f.monitor.Sweep()

	r := f.sched.Store().DefenseFor("t1")
	if r == nil || !r.IsActive {
		t.Fatal("expected an active defense reminder before completion")
	}

	// Task completed: next sweep retires, never deletes.
	tk.Status = task.StatusDone
	f.source.set([]task.Task{tk})
	f.monitor.Sweep()

	r = f.sched.Store().DefenseFor("t1")
	if r == nil {
		t.Fatal("retirement should keep the record")
	}
	if r.IsActive {
		t.Error("defense reminder still active for a completed task")
	}
}

func TestReactivationAfterRetirement(t *testing.T) {
	f := newFixture(t)

	tk := deadlineTask("t1", f.now, 10)
	f.source.set([]task.Task{tk})
	f.advance(6 * time.Hour)
	f.monitor.Sweep()

	// Task briefly marked done, then reopened.
	done := tk
	done.Status = task.StatusDone
	f.source.set([]task.Task{done})
	f.monitor.Sweep()

	if r := f.sched.Store().DefenseFor("t1"); r.IsActive {
		t.Fatal("expected the reminder retired while done")
	}

	f.source.set([]task.Task{tk})
	f.monitor.Sweep()

	r := f.sched.Store().DefenseFor("t1")
	if !r.IsActive {
		t.Error("reopened task did not re-escalate")
	}
	if f.sched.Store().Len() != 1 {
		t.Errorf("reactivation duplicated reminders, have %d", f.sched.Store().Len())
	}
}

func TestLevelDropDeactivates(t *testing.T) {
	f := newFixture(t)

	tk := deadlineTask("t1", f.now, 10)
	f.source.set([]task.Task{tk})
	f.advance(6 * time.Hour)
	f.monitor.Sweep()

	// Deadline pushed out: urgency falls back to level 0.
	relaxed := tk
	due := f.clock().Add(100 * time.Hour)
	relaxed.DueDate = &due
	f.source.set([]task.Task{relaxed})
	f.monitor.Sweep()

	r := f.sched.Store().DefenseFor("t1")
	if r == nil {
		t.Fatal("deactivation should keep the record")
	}
	if r.IsActive {
		t.Error("defense reminder still active after the urgency dropped to 0")
	}
}
