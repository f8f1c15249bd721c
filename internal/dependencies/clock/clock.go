package clock

import "time"

// Clock provides the current time; tests substitute a mock
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current UTC time at microsecond precision, which is what
// Postgres timestamptz columns keep, so stored times compare equal on read.
func (c *RealClock) Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
