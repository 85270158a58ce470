// Package urgency maps a task's deadline progress to a discrete
// escalation level.
package urgency

import (
	"time"

	"github.com/solomonsojay/TaskDefender-sub000/internal/task"
)

// Level classifies how close a task is to its deadline. Level 0 means no
// intervention; level 4 is the final stretch.
type Level int

const (
	LevelNone     Level = 0
	LevelHeadsUp  Level = 1
	LevelWarning  Level = 2
	LevelCritical Level = 3
	LevelFinal    Level = 4
)

// Progress thresholds, inclusive lower bounds.
const (
	headsUpAt  = 0.5
	warningAt  = 0.7
	criticalAt = 0.85
	finalAt    = 0.95
)

// refireMinutes is how often an unacknowledged defense reminder re-fires at
// each level. Design constants, not derived.
var refireMinutes = map[Level]int{
	LevelHeadsUp:  60,
	LevelWarning:  30,
	LevelCritical: 15,
	LevelFinal:    5,
}

// Compute returns the escalation level for a task at the given instant.
// Tasks without a due date never escalate here, and done tasks are exempt
// regardless of dates.
func Compute(t *task.Task, now time.Time) Level {
	if t.Status == task.StatusDone {
		return LevelNone
	}
	if t.DueDate == nil {
		return LevelNone
	}

	span := t.DueDate.Sub(t.CreatedAt)
	progress := 1.0
	if span > 0 {
		progress = float64(now.Sub(t.CreatedAt)) / float64(span)
		if progress < 0 {
			progress = 0
		}
		if progress > 1 {
			progress = 1
		}
	}

	switch {
	case progress < headsUpAt:
		return LevelNone
	case progress < warningAt:
		return LevelHeadsUp
	case progress < criticalAt:
		return LevelWarning
	case progress < finalAt:
		return LevelCritical
	default:
		return LevelFinal
	}
}

// RefireMinutes returns the continuous-loop cadence for a level. Level 0
// has no cadence and returns 0.
func RefireMinutes(l Level) int {
	return refireMinutes[l]
}

// FromRefireMinutes is the inverse of RefireMinutes, used to recover the
// level a stored defense reminder was last escalated to. Unknown intervals
// map to level 0.
func FromRefireMinutes(minutes int) Level {
	for l, m := range refireMinutes {
		if m == minutes {
			return l
		}
	}
	return LevelNone
}
