package urgency

import (
	"testing"
	"time"

	"github.com/solomonsojay/TaskDefender-sub000/internal/task"
)

func deadlineTask(createdAt time.Time, due time.Time, status string) *task.Task {
	return &task.Task{
		ID:        "t1",
		Title:     "write report",
		CreatedAt: createdAt,
		DueDate:   &due,
		Status:    status,
	}
}

func TestLevelProgression(t *testing.T) {
	// Task created at T0 with a 10h deadline.
	t0 := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	due := t0.Add(10 * time.Hour)
	tk := deadlineTask(t0, due, task.StatusTodo)

	cases := []struct {
		elapsed time.Duration
		want    Level
	}{
		{0, LevelNone},
		{4 * time.Hour, LevelNone},
		{5 * time.Hour, LevelHeadsUp},   // 50%
		{6 * time.Hour, LevelHeadsUp},   // 60%
		{7 * time.Hour, LevelWarning},   // 70%
		{8 * time.Hour, LevelWarning},   // 80%
		{8*time.Hour + 30*time.Minute, LevelCritical}, // 85%
		{9*time.Hour + 36*time.Minute, LevelFinal},    // 96%
		{10 * time.Hour, LevelFinal},
		{12 * time.Hour, LevelFinal}, // overdue clamps to 1.0
	}

	for _, c := range cases {
		got := Compute(tk, t0.Add(c.elapsed))
		if got != c.want {
			t.Errorf("at +%v: expected level %d, got %d", c.elapsed, c.want, got)
		}
	}
}

func TestLevelMonotonic(t *testing.T) {
	t0 := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	due := t0.Add(10 * time.Hour)
	tk := deadlineTask(t0, due, task.StatusInProgress)

	prev := LevelNone
	for m := 0; m <= 12*60; m += 5 {
		got := Compute(tk, t0.Add(time.Duration(m)*time.Minute))
		if got < prev {
			t.Fatalf("level decreased from %d to %d at +%dm", prev, got, m)
		}
		prev = got
	}
}

func TestDoneTaskAlwaysZero(t *testing.T) {
	t0 := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	due := t0.Add(10 * time.Hour)
	tk := deadlineTask(t0, due, task.StatusDone)

	for _, at := range []time.Time{t0, t0.Add(9 * time.Hour), t0.Add(48 * time.Hour)} {
		if got := Compute(tk, at); got != LevelNone {
			t.Errorf("done task at %v: expected level 0, got %d", at, got)
		}
	}
}

func TestNoDueDate(t *testing.T) {
	t0 := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	tk := &task.Task{ID: "t2", CreatedAt: t0, Status: task.StatusTodo}

	if got := Compute(tk, t0.Add(1000*time.Hour)); got != LevelNone {
		t.Errorf("expected level 0 without due date, got %d", got)
	}
}

func TestDegenerateSpan(t *testing.T) {
	t0 := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	// Due at creation: maximum urgency, not a division by zero.
	tk := deadlineTask(t0, t0, task.StatusTodo)
	if got := Compute(tk, t0); got != LevelFinal {
		t.Errorf("due == created: expected level 4, got %d", got)
	}

	// Due before creation.
	tk = deadlineTask(t0, t0.Add(-time.Hour), task.StatusTodo)
	if got := Compute(tk, t0); got != LevelFinal {
		t.Errorf("due < created: expected level 4, got %d", got)
	}
}

func TestRefireMinutes(t *testing.T) {
	cases := map[Level]int{
		LevelNone:     0,
		LevelHeadsUp:  60,
		LevelWarning:  30,
		LevelCritical: 15,
		LevelFinal:    5,
	}
	for level, want := range cases {
		if got := RefireMinutes(level); got != want {
			t.Errorf("level %d: expected %d minutes, got %d", level, want, got)
		}
	}

	for _, level := range []Level{LevelHeadsUp, LevelWarning, LevelCritical, LevelFinal} {
		if got := FromRefireMinutes(RefireMinutes(level)); got != level {
			t.Errorf("round trip for level %d gave %d", level, got)
		}
	}
	if got := FromRefireMinutes(42); got != LevelNone {
		t.Errorf("unknown interval: expected level 0, got %d", got)
	}
}
