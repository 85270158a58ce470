// Package scheduler owns the reminder lifecycle: it decides when a
// reminder becomes due, runs the continuous re-fire loop while it goes
// unacknowledged, and applies snooze/acknowledge/dismiss transitions.
package scheduler

import (
	"sync"
	"time"

	"github.com/solomonsojay/TaskDefender-sub000/internal/history"
	"github.com/solomonsojay/TaskDefender-sub000/internal/logging"
	"github.com/solomonsojay/TaskDefender-sub000/internal/reminder"
	"github.com/solomonsojay/TaskDefender-sub000/internal/urgency"
)

// DefaultCheckInterval is the fine-grained due-check cadence.
const DefaultCheckInterval = 30 * time.Second

// Sink receives due reminders. Dispatch must not block; failures stay on
// the sink's side of the boundary.
type Sink interface {
	Dispatch(r *reminder.Reminder, full bool)
	ClearPush(reminderID string)
}

// Config tunes a scheduler. Zero values select defaults.
type Config struct {
	CheckInterval          time.Duration
	DefaultSnoozeOptions   []int
	DefaultIntervalMinutes int
	Now                    func() time.Time
}

// Scheduler is the escalation state machine. All transitions for a single
// reminder are linearized under mu; across reminders there is no ordering.
type Scheduler struct {
	store *reminder.Store
	log   *history.Log
	sink  Sink

	checkInterval   time.Duration
	defaultSnooze   []int
	defaultInterval int
	now             func() time.Time

	mu    sync.Mutex
	loops map[string]chan struct{} // reminder ID -> cancel token

	stopChan chan struct{}
	stopOnce sync.Once
	running  bool
}

// New creates a scheduler over the given store, history log and channel
// sink. It is usable without Start: operations still apply transitions,
// they just never arm continuous-loop timers.
func New(store *reminder.Store, log *history.Log, sink Sink, cfg Config) *Scheduler {
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = DefaultCheckInterval
	}
	if len(cfg.DefaultSnoozeOptions) == 0 {
		cfg.DefaultSnoozeOptions = []int{5, 10, 15}
	}
	if cfg.DefaultIntervalMinutes <= 0 {
		cfg.DefaultIntervalMinutes = 10
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Scheduler{
		store:           store,
		log:             log,
		sink:            sink,
		checkInterval:   cfg.CheckInterval,
		defaultSnooze:   cfg.DefaultSnoozeOptions,
		defaultInterval: cfg.DefaultIntervalMinutes,
		now:             cfg.Now,
		loops:           make(map[string]chan struct{}),
		stopChan:        make(chan struct{}),
	}
}

// Start begins the due-check loop and re-arms continuous loops for
// reminders persisted mid-cycle.
func (s *Scheduler) Start() {
	s.mu.Lock()
	s.running = true
	for _, r := range s.store.Active() {
		if r.State == reminder.StateTriggered && r.IntervalMinutes > 0 {
			s.startLoopLocked(r.ID, r.IntervalMinutes)
		}
	}
	s.mu.Unlock()

	go s.tickLoop()
	logging.Info("scheduler", "Started. Check interval: %v", s.checkInterval)
}

// Stop halts the due-check loop and cancels every continuous loop.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })

	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	for id, ch := range s.loops {
		close(ch)
		delete(s.loops, id)
	}
}

func (s *Scheduler) tickLoop() {
	// Check immediately on start, then on the ticker.
	s.checkDue()

	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			logging.Info("scheduler", "Shutting down...")
			return
		case <-ticker.C:
			s.checkDue()
		}
	}
}

// checkDue advances every active reminder that has reached its scheduled
// or snoozed-until time. Each reminder is processed in isolation so one
// bad record cannot halt the rest.
func (s *Scheduler) checkDue() {
	now := s.now()
	for _, r := range s.store.Active() {
		if fire := s.advance(r.ID, now); fire != nil {
			s.sink.Dispatch(fire, true)
		}
	}
}

// advance applies one due-check transition under the lock and returns the
// reminder to dispatch, if any. The recover runs after the deferred unlock,
// so a panicking record releases the lock and is skipped.
func (s *Scheduler) advance(id string, now time.Time) (fire *reminder.Reminder) {
	defer func() {
		if p := recover(); p != nil {
			logging.Warn("scheduler", "reminder %s processing panicked: %v", id, p)
			fire = nil
		}
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Re-read under the lock; an operation may have raced the snapshot.
	cur := s.store.Get(id)
	if cur == nil || !cur.IsActive {
		return nil
	}

	switch cur.State {
	case reminder.StateScheduled, reminder.StateDue:
		if cur.SnoozedUntil != nil && now.Before(*cur.SnoozedUntil) {
			return nil
		}
		if now.Before(cur.ScheduledFor) {
			return nil
		}
		s.triggerLocked(cur, now)
		return cur

	case reminder.StateSnoozed:
		if cur.SnoozedUntil == nil || !now.Before(*cur.SnoozedUntil) {
			s.triggerLocked(cur, now)
			return cur
		}
		return nil

	case reminder.StateTriggered:
		// Normally the loop is already armed; after a restart or a
		// missed arm, re-arm it here.
		if cur.IntervalMinutes > 0 {
			if _, ok := s.loops[cur.ID]; !ok && s.running {
				s.startLoopLocked(cur.ID, cur.IntervalMinutes)
			}
		}
		return nil

	default:
		return nil
	}
}

// triggerLocked applies the DUE -> TRIGGERED transition and arms the
// continuous loop. Callers dispatch after releasing the lock.
func (s *Scheduler) triggerLocked(r *reminder.Reminder, now time.Time) {
	ts := now
	r.State = reminder.StateTriggered
	r.LastTriggeredAt = &ts
	r.SnoozedUntil = nil
	r.ReminderCount++
	if err := s.store.Update(r); err != nil {
		logging.Warn("scheduler", "update failed for %s: %v", r.ID, err)
	}

	s.recordFiring(r, now)

	if r.IntervalMinutes > 0 && s.running {
		s.startLoopLocked(r.ID, r.IntervalMinutes)
	}

	logging.Info("scheduler", "Triggered %s (%s, count %d)",
		r.ID, logging.Truncate(r.Title, 40), r.ReminderCount)
}

// recordFiring appends the intervention to the history log. Defense
// reminders carry the urgency level implied by their re-fire cadence;
// emergencies record the top level; everything else records 0.
func (s *Scheduler) recordFiring(r *reminder.Reminder, now time.Time) {
	level := 0
	switch r.Kind {
	case reminder.KindDefense:
		level = int(urgency.FromRefireMinutes(r.IntervalMinutes))
	case reminder.KindEmergency:
		level = int(urgency.LevelFinal)
	}

	s.log.RecordIntervention(history.Record{
		TaskID:    r.TaskID,
		Level:     level,
		Message:   r.Message,
		Character: r.Channels.Character,
		FiredAt:   now,
	})
}

// startLoopLocked arms (or re-arms) the continuous-loop timer for a
// reminder. Any previous token is cancelled first so at most one loop per
// reminder exists.
func (s *Scheduler) startLoopLocked(id string, minutes int) {
	s.cancelLoopLocked(id)

	token := make(chan struct{})
	s.loops[id] = token
	go s.runLoop(id, time.Duration(minutes)*time.Minute, token)
}

// cancelLoopLocked synchronously cancels the loop token for a reminder.
// The token is closed before any new state is written, so a stale tick
// cannot re-arm cancelled state.
func (s *Scheduler) cancelLoopLocked(id string) {
	if ch, ok := s.loops[id]; ok {
		close(ch)
		delete(s.loops, id)
	}
}

func (s *Scheduler) runLoop(id string, interval time.Duration, token chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-token:
			return
		case <-ticker.C:
			if !s.fireLoopTick(id, token) {
				return
			}
		}
	}
}

// fireLoopTick re-fires a triggered, unacknowledged reminder through the
// lighter channel subset. Returns false once the loop should stop.
func (s *Scheduler) fireLoopTick(id string, token chan struct{}) bool {
	fire, keep := s.refire(id, token)
	if fire != nil {
		// Continuous re-fires skip the blocking modal.
		s.sink.Dispatch(fire, false)
		logging.Debug("scheduler", "Re-fired %s (count %d)", fire.ID, fire.ReminderCount)
	}
	return keep
}

// refire applies one continuous-loop firing under the lock. A panic is
// recovered after the deferred unlock and keeps the loop alive; the next
// tick retries.
func (s *Scheduler) refire(id string, token chan struct{}) (fire *reminder.Reminder, keep bool) {
	defer func() {
		if p := recover(); p != nil {
			logging.Warn("scheduler", "reminder %s re-fire panicked: %v", id, p)
			fire, keep = nil, true
		}
	}()

	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Stale-token guard: a transition may have cancelled and re-armed
	// between the tick and acquiring the lock.
	if cur, ok := s.loops[id]; !ok || cur != token {
		return nil, false
	}

	r := s.store.Get(id)
	if r == nil || !r.IsActive || r.State != reminder.StateTriggered {
		s.cancelLoopLocked(id)
		return nil, false
	}

	ts := now
	r.LastTriggeredAt = &ts
	r.ReminderCount++
	if err := s.store.Update(r); err != nil {
		logging.Warn("scheduler", "update failed for %s: %v", r.ID, err)
	}
	s.recordFiring(r, now)
	return r, true
}

// SetRefireInterval replaces a reminder's effective re-fire cadence going
// forward without resetting its count. A running loop is re-armed at the
// new cadence.
func (s *Scheduler) SetRefireInterval(id string, minutes int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.store.Get(id)
	if r == nil {
		return errNotFound(id)
	}
	if r.IntervalMinutes == minutes {
		return nil
	}
	r.IntervalMinutes = minutes
	if err := s.store.Update(r); err != nil {
		return err
	}
	if _, ok := s.loops[id]; ok && minutes > 0 {
		s.startLoopLocked(id, minutes)
	}
	logging.Info("scheduler", "Re-fire interval for %s now %dm", id, minutes)
	return nil
}

// loopArmed reports whether a continuous loop is currently armed for a
// reminder.
func (s *Scheduler) loopArmed(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.loops[id]
	return ok
}
