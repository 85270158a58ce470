package reminder

import (
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// Kind tags what produced a reminder and how it should read.
type Kind string

const (
	KindReminder    Kind = "reminder"
	KindNudge       Kind = "nudge"
	KindDeadline    Kind = "deadline"
	KindCelebration Kind = "celebration"
	KindDefense     Kind = "defense"
	KindEmergency   Kind = "emergency"
)

// Recurrence controls how a reminder re-schedules after acknowledgement.
type Recurrence string

const (
	RecurNone     Recurrence = "none"
	RecurDaily    Recurrence = "daily"
	RecurWeekly   Recurrence = "weekly"
	RecurWorkdays Recurrence = "workdays"
)

// State is the escalation state machine position. Persisted so a restart
// resumes mid-cycle.
type State string

const (
	StateScheduled    State = "scheduled"
	StateDue          State = "due"
	StateTriggered    State = "triggered"
	StateSnoozed      State = "snoozed"
	StateAcknowledged State = "acknowledged"
	StateDismissed    State = "dismissed"
)

// Channels selects the output modalities for a reminder.
type Channels struct {
	Voice        bool   `json:"voice"`
	Tone         bool   `json:"tone"`
	Push         bool   `json:"push"`
	Modal        bool   `json:"modal"`
	SelectedTone string `json:"selected_tone,omitempty"`
	Character    string `json:"character,omitempty"`
}

// Reminder is the central schedulable entity, either user-authored or
// derived from task urgency by the defense monitor.
type Reminder struct {
	ID              string     `json:"id"`
	TaskID          string     `json:"task_id,omitempty"`
	Title           string     `json:"title"`
	Message         string     `json:"message"`
	Kind            Kind       `json:"kind"`
	ScheduledFor    time.Time  `json:"scheduled_for"`
	Recurring       Recurrence `json:"recurring"`
	IntervalMinutes int        `json:"interval_minutes"`
	SnoozeOptions   []int      `json:"snooze_options,omitempty"`
	Channels        Channels   `json:"channels"`
	IsActive        bool       `json:"is_active"`
	State           State      `json:"state"`
	LastTriggeredAt *time.Time `json:"last_triggered_at,omitempty"`
	SnoozedUntil    *time.Time `json:"snoozed_until,omitempty"`
	ReminderCount   int        `json:"reminder_count"`
	CreatedAt       time.Time  `json:"created_at"`
}

// NewID mints a reminder ID.
func NewID() string {
	return ulid.Make().String()
}

// Validate rejects specs that cannot be scheduled. Called synchronously at
// creation; no record is created on failure.
func (r *Reminder) Validate() error {
	if r.Title == "" {
		return fmt.Errorf("reminder title is required")
	}
	if r.ScheduledFor.IsZero() {
		return fmt.Errorf("reminder scheduled time is required")
	}
	switch r.Kind {
	case KindReminder, KindNudge, KindDeadline, KindCelebration, KindDefense, KindEmergency:
	case "":
		return fmt.Errorf("reminder kind is required")
	default:
		return fmt.Errorf("unknown reminder kind: %s", r.Kind)
	}
	for _, m := range r.SnoozeOptions {
		if m <= 0 {
			return fmt.Errorf("snooze option must be positive, got %d", m)
		}
	}
	return nil
}

// NextOccurrence advances a recurrence from the previous scheduled time.
// Computing from the previous slot rather than from now keeps late
// acknowledgements from accumulating drift.
func NextOccurrence(rec Recurrence, from time.Time) time.Time {
	switch rec {
	case RecurDaily:
		return from.AddDate(0, 0, 1)
	case RecurWeekly:
		return from.AddDate(0, 0, 7)
	case RecurWorkdays:
		next := from.AddDate(0, 0, 1)
		for next.Weekday() == time.Saturday || next.Weekday() == time.Sunday {
			next = next.AddDate(0, 0, 1)
		}
		return next
	default:
		return from
	}
}
