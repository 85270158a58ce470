package scheduler

import (
	"fmt"
	"time"

	"github.com/solomonsojay/TaskDefender-sub000/internal/history"
	"github.com/solomonsojay/TaskDefender-sub000/internal/logging"
	"github.com/solomonsojay/TaskDefender-sub000/internal/reminder"
)

func errNotFound(id string) error {
	return fmt.Errorf("reminder not found: %s", id)
}

// Spec describes a reminder to create. Zero-value channel and snooze
// settings fall back to the scheduler defaults.
type Spec struct {
	TaskID          string
	Title           string
	Message         string
	Kind            reminder.Kind
	ScheduledFor    time.Time
	Recurring       reminder.Recurrence
	IntervalMinutes int
	SnoozeOptions   []int
	Channels        reminder.Channels
}

// CreateReminder validates the spec and stores a new active reminder,
// returning its ID. Invalid specs are rejected synchronously and nothing
// is stored.
func (s *Scheduler) CreateReminder(spec Spec) (string, error) {
	r := &reminder.Reminder{
		ID:              reminder.NewID(),
		TaskID:          spec.TaskID,
		Title:           spec.Title,
		Message:         spec.Message,
		Kind:            spec.Kind,
		ScheduledFor:    spec.ScheduledFor,
		Recurring:       spec.Recurring,
		IntervalMinutes: spec.IntervalMinutes,
		SnoozeOptions:   spec.SnoozeOptions,
		Channels:        spec.Channels,
		IsActive:        true,
		State:           reminder.StateScheduled,
		CreatedAt:       s.now(),
	}
	if r.Kind == "" {
		r.Kind = reminder.KindReminder
	}
	if r.Recurring == "" {
		r.Recurring = reminder.RecurNone
	}
	if len(r.SnoozeOptions) == 0 {
		r.SnoozeOptions = append([]int(nil), s.defaultSnooze...)
	}
	if r.IntervalMinutes == 0 {
		r.IntervalMinutes = s.defaultInterval
	}
	if !r.Channels.Voice && !r.Channels.Tone && !r.Channels.Push && !r.Channels.Modal {
		r.Channels.Push = true
		r.Channels.Modal = true
	}

	if err := s.store.Add(r); err != nil {
		return "", err
	}
	logging.Info("scheduler", "Created reminder %s (%s) for %s",
		r.ID, logging.Truncate(r.Title, 40), r.ScheduledFor.Format(time.RFC3339))
	return r.ID, nil
}

// DeleteReminder removes a reminder permanently, cancelling its loop.
func (s *Scheduler) DeleteReminder(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLoopLocked(id)
	if err := s.store.Delete(id); err != nil {
		return err
	}
	s.sink.ClearPush(id)
	return nil
}

// ToggleActive flips a reminder's active flag and returns the new value.
// Deactivation cancels the continuous loop; reactivation starts a fresh
// cycle from SCHEDULED.
func (s *Scheduler) ToggleActive(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.store.Get(id)
	if r == nil {
		return false, errNotFound(id)
	}

	if r.IsActive {
		s.cancelLoopLocked(id)
		r.IsActive = false
	} else {
		r.IsActive = true
		r.State = reminder.StateScheduled
		r.ReminderCount = 0
		r.SnoozedUntil = nil
	}
	if err := s.store.Update(r); err != nil {
		return r.IsActive, err
	}
	return r.IsActive, nil
}

// Acknowledge resolves the current cycle. A recurring reminder advances to
// its next slot (computed from the previous slot, not from now) and goes
// back to SCHEDULED; a one-shot reminder is deactivated. Acknowledging an
// already-resolved reminder is a no-op so at-least-once delivery stays
// idempotent.
func (s *Scheduler) Acknowledge(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.store.Get(id)
	if r == nil {
		return errNotFound(id)
	}
	if r.State == reminder.StateAcknowledged || r.State == reminder.StateDismissed {
		return nil
	}

	s.cancelLoopLocked(id)
	r.ReminderCount = 0
	r.SnoozedUntil = nil

	if r.Recurring != reminder.RecurNone {
		r.ScheduledFor = reminder.NextOccurrence(r.Recurring, r.ScheduledFor)
		r.State = reminder.StateScheduled
		logging.Info("scheduler", "Acknowledged %s, next occurrence %s",
			id, r.ScheduledFor.Format(time.RFC3339))
	} else {
		r.State = reminder.StateAcknowledged
		r.IsActive = false
		logging.Info("scheduler", "Acknowledged %s", id)
	}

	if err := s.store.Update(r); err != nil {
		return err
	}
	s.sink.ClearPush(id)
	return nil
}

// Snooze suppresses further dispatch for the given number of minutes. The
// reminder becomes DUE again once the window elapses.
func (s *Scheduler) Snooze(id string, minutes int) error {
	if minutes <= 0 {
		return fmt.Errorf("snooze minutes must be positive, got %d", minutes)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.store.Get(id)
	if r == nil {
		return errNotFound(id)
	}
	if !r.IsActive {
		return fmt.Errorf("reminder %s is not active", id)
	}

	s.cancelLoopLocked(id)
	until := s.now().Add(time.Duration(minutes) * time.Minute)
	r.SnoozedUntil = &until
	r.ReminderCount = 0
	r.State = reminder.StateSnoozed

	if err := s.store.Update(r); err != nil {
		return err
	}
	s.sink.ClearPush(id)
	logging.Info("scheduler", "Snoozed %s until %s", id, until.Format(time.RFC3339))
	return nil
}

// Dismiss ends the cycle unconditionally, recurring or not. The record
// stays in the store deactivated; deletion remains a separate operation.
func (s *Scheduler) Dismiss(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.store.Get(id)
	if r == nil {
		return errNotFound(id)
	}

	s.cancelLoopLocked(id)
	r.State = reminder.StateDismissed
	r.IsActive = false

	if err := s.store.Update(r); err != nil {
		return err
	}
	s.sink.ClearPush(id)
	logging.Info("scheduler", "Dismissed %s", id)
	return nil
}

// SetTaskReminder creates a task-scoped reminder.
func (s *Scheduler) SetTaskReminder(taskID string, spec Spec) (string, error) {
	if taskID == "" {
		return "", fmt.Errorf("task id is required")
	}
	spec.TaskID = taskID
	return s.CreateReminder(spec)
}

// ClearTaskReminders deletes every reminder linked to a task.
func (s *Scheduler) ClearTaskReminders(taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.store.ByTask(taskID) {
		s.cancelLoopLocked(r.ID)
		if err := s.store.Delete(r.ID); err != nil {
			return err
		}
		s.sink.ClearPush(r.ID)
	}
	return nil
}

// GetStats returns the aggregate intervention statistics.
func (s *Scheduler) GetStats() history.Stats {
	return s.log.GetStats()
}

// Store exposes the underlying reminder store for read-side consumers.
func (s *Scheduler) Store() *reminder.Store {
	return s.store
}
