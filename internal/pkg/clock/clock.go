// Package clock provides injectable time for the application
package clock

import "time"

// Clock provides time functionality
type Clock interface {
	Now() time.Time
}

// Real implements Clock using actual system time
type Real struct{}

// Now returns the current time
func (c *Real) Now() time.Time {
	return time.Now()
}

// New returns a new real clock
func New() Clock {
	return &Real{}
}

// Fixed is a clock that returns a controllable time, for tests.
// Advance moves it forward so successive writes get distinct
// modified_at values.
type Fixed struct {
	now time.Time
}

// NewFixed returns a clock pinned to t
func NewFixed(t time.Time) *Fixed {
	return &Fixed{now: t}
}

// Now returns the pinned time
func (c *Fixed) Now() time.Time {
	return c.now
}

// Advance moves the pinned time forward by d
func (c *Fixed) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}
