// Package timeutil supplies the wall clock used to stamp datasets, training
// runs and metrics, so commands can run against a fixed instant in tests.
package timeutil

import (
	"sync"
	"time"
)

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the host clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock reports the same instant until it is moved with Advance.
type FixedClock struct {
	mu sync.Mutex
	at time.Time
}

// NewFixedClock returns a FixedClock stopped at at.
func NewFixedClock(at time.Time) *FixedClock {
	return &FixedClock{at: at}
}

func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.at
}

// Advance moves the clock forward by d.
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.at = c.at.Add(d)
}

// Elapsed returns the time passed on c since start, rounded to the
// millisecond for log output.
func Elapsed(c Clock, start time.Time) time.Duration {
	return c.Now().Sub(start).Round(time.Millisecond)
}
