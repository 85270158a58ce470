// Package dispatch fires reminders through the configured output channels:
// spoken message, audible tone, platform push, and the on-screen modal
// event. Channels fail independently; a missing platform capability is
// logged and skipped, never fatal.
package dispatch

import (
	"time"

	"github.com/solomonsojay/TaskDefender-sub000/internal/logging"
	"github.com/solomonsojay/TaskDefender-sub000/internal/reminder"
)

// Dispatcher routes a reminder to every channel enabled on it. It is
// stateless aside from channel availability; a nil channel means the
// platform capability is absent.
type Dispatcher struct {
	synth Synthesizer
	tones *TonePlayer
	push  Notifier
	modal *ModalEmitter
	pool  *MessagePool
}

// New creates a dispatcher. Any channel may be nil.
func New(synth Synthesizer, tones *TonePlayer, push Notifier, modal *ModalEmitter, pool *MessagePool) *Dispatcher {
	if pool == nil {
		pool = NewMessagePool()
	}
	return &Dispatcher{
		synth: synth,
		tones: tones,
		push:  push,
		modal: modal,
		pool:  pool,
	}
}

// Modal returns the modal emitter, or nil if the channel is absent.
func (d *Dispatcher) Modal() *ModalEmitter {
	return d.modal
}

// Dispatch fires the reminder through its enabled channels. full selects
// the first firing of a cycle: continuous re-fires pass false and skip the
// blocking modal. Each channel runs on its own goroutine and its failure
// never reaches the scheduler.
func (d *Dispatcher) Dispatch(r *reminder.Reminder, full bool) {
	message := r.Message
	if message == "" {
		message = r.Title
	}
	if r.Channels.Character == CharacterCustom {
		message = d.pool.Pick(message)
	}

	if r.Channels.Voice {
		if d.synth == nil {
			logging.Debug("dispatch", "voice unavailable, skipping (reminder %s)", r.ID)
		} else {
			persona := PersonaFor(r.Channels.Character)
			spoken := message
			go func() {
				if err := d.synth.Speak(spoken, persona.Rate, persona.Pitch, persona.Volume, persona.VoiceHint); err != nil {
					logging.Warn("dispatch", "voice failed: %v", err)
				}
			}()
		}
	}

	if r.Channels.Tone {
		if d.tones == nil {
			logging.Debug("dispatch", "tone unavailable, skipping (reminder %s)", r.ID)
		} else {
			d.tones.Play(r.Channels.SelectedTone)
		}
	}

	if r.Channels.Push {
		if d.push == nil {
			logging.Debug("dispatch", "push unavailable, skipping (reminder %s)", r.ID)
		} else {
			title, body, tag := r.Title, message, NotificationTag(r.ID)
			go func() {
				if err := d.push.Notify(title, body, tag); err != nil {
					logging.Warn("dispatch", "push failed: %v", err)
				}
			}()
		}
	}

	if r.Channels.Modal && full {
		if d.modal == nil {
			logging.Debug("dispatch", "modal unavailable, skipping (reminder %s)", r.ID)
		} else {
			d.modal.Emit(ModalEvent{
				ReminderID:    r.ID,
				Title:         r.Title,
				Message:       message,
				SnoozeOptions: append([]int(nil), r.SnoozeOptions...),
				FiredAt:       time.Now(),
			})
		}
	}
}

// ClearPush withdraws the push notification for a reminder, typically once
// the user has responded through the modal.
func (d *Dispatcher) ClearPush(reminderID string) {
	if d.push == nil {
		return
	}
	if err := d.push.Clear(NotificationTag(reminderID)); err != nil {
		logging.Debug("dispatch", "push clear failed: %v", err)
	}
}

// NotificationTag is the stable platform tag for a reminder's push
// notification.
func NotificationTag(reminderID string) string {
	return "defender-" + reminderID
}
