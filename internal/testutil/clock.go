package testutil

import (
	"sync"
	"time"
)

// DefaultStart is the first instant returned by a Clock built with a zero
// start time.
var DefaultStart = time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)

// Clock is a deterministic time source for tests.
//
// The first Now call returns the start time; each later call returns one
// Step after the previous one. Safe for concurrent use.
type Clock struct {
	mu    sync.Mutex
	start time.Time
	step  time.Duration
	ticks int64
}

// NewClock creates a clock starting at start and advancing one second per
// call. A zero start means DefaultStart.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = DefaultStart
	}
	return &Clock{start: start, step: time.Second}
}

// Now returns the current instant and advances the clock.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.start.Add(time.Duration(c.ticks) * c.step)
	c.ticks++
	return t
}

// Ticks returns how many times Now has been called.
func (c *Clock) Ticks() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ticks
}

// Reset rewinds the clock so the next Now returns the start time again.
func (c *Clock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks = 0
}
