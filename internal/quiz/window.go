package quiz

import "time"

// Status of a quiz relative to a trainee and an instant.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusCompleted  Status = "completed"
	StatusActive     Status = "active"
	StatusMissed     Status = "missed"
)

// Window is the effective availability of a quiz: it opens at Schedule and
// closes at the earlier of Schedule+Duration and Expiry.
type Window struct {
	Schedule     time.Time
	Expiry       time.Time
	EffectiveEnd time.Time
}

func NewWindow(schedule, expiry time.Time, durationMin int) Window {
	end := schedule.Add(time.Duration(durationMin) * time.Minute)
	if !expiry.IsZero() && expiry.Before(end) {
		end = expiry
	}
	return Window{Schedule: schedule, Expiry: expiry, EffectiveEnd: end}
}

func WindowFor(def QuizDefinition) Window {
	return NewWindow(def.Schedule, def.Expiry, def.DurationMin)
}

// Remaining reports whole seconds left until the effective end, never
// negative.
func (w Window) Remaining(now time.Time) int {
	d := w.EffectiveEnd.Sub(now)
	if d <= 0 {
		return 0
	}
	return int(d / time.Second)
}

// Classify orders the states by priority: a quiz the trainee already has a
// result for is completed even after the window closes.
func (w Window) Classify(now time.Time, hasResult bool) Status {
	switch {
	case now.Before(w.Schedule):
		return StatusNotStarted
	case hasResult:
		return StatusCompleted
	case !now.After(w.EffectiveEnd):
		return StatusActive
	default:
		return StatusMissed
	}
}
