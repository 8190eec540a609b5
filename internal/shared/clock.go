package shared

import "time"

// Clock abstracts wall-clock reads so expiry checks, sent timestamps and
// contract numbering can run against fixed instants in tests.
type Clock interface {
	Now() time.Time
	Today() time.Time
}

type systemClock struct{}

// NewClock returns the system clock.
func NewClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

func (systemClock) Today() time.Time {
	return Truncate(time.Now().UTC())
}

// Truncate drops the time-of-day component, keeping a pure date in UTC.
func Truncate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FixedClock always reports the same instant. Test helper.
type FixedClock struct {
	Instant time.Time
}

func (c FixedClock) Now() time.Time {
	return c.Instant
}

func (c FixedClock) Today() time.Time {
	return Truncate(c.Instant)
}
