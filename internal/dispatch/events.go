package dispatch

import (
	"time"

	"github.com/solomonsojay/TaskDefender-sub000/internal/logging"
)

// ModalEvent asks the presentation layer to surface a blocking
// acknowledgement for a due reminder. The core never renders anything; it
// emits this event and the presenter calls back acknowledge/snooze/dismiss.
type ModalEvent struct {
	ReminderID    string    `json:"reminder_id"`
	Title         string    `json:"title"`
	Message       string    `json:"message"`
	SnoozeOptions []int     `json:"snooze_options,omitempty"`
	FiredAt       time.Time `json:"fired_at"`
}

// ModalEmitter fans modal events out to a single consumer over a buffered
// channel. Emission never blocks the scheduler; with no consumer draining,
// excess events are dropped with a log line.
type ModalEmitter struct {
	events chan ModalEvent
}

// NewModalEmitter creates an emitter with a small buffer.
func NewModalEmitter() *ModalEmitter {
	return &ModalEmitter{events: make(chan ModalEvent, 16)}
}

// Events is the consumer side of the emitter.
func (m *ModalEmitter) Events() <-chan ModalEvent {
	return m.events
}

// Emit queues an event without blocking.
func (m *ModalEmitter) Emit(ev ModalEvent) {
	select {
	case m.events <- ev:
	default:
		logging.Warn("dispatch", "modal event dropped, consumer not draining (reminder %s)", ev.ReminderID)
	}
}
