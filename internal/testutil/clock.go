// Package testutil holds small deterministic helpers shared by tests.
package testutil

import (
	"sync"
	"time"
)

// FixedClock returns the same instant on every call, making date
// placeholders and audit timestamps deterministic in tests.
//
// Thread-safety: the returned func is safe for concurrent use.
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time {
		return t
	}
}

// SteppingClock returns successive instants advancing by step per
// call, for tests that assert ordering of recorded timestamps.
//
// Thread-safety: safe for concurrent use via internal mutex.
type SteppingClock struct {
	mu   sync.Mutex
	next time.Time
	step time.Duration
}

// NewSteppingClock creates a clock starting at start.
func NewSteppingClock(start time.Time, step time.Duration) *SteppingClock {
	return &SteppingClock{next: start, step: step}
}

// Now returns the current instant and advances the clock.
func (c *SteppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.next
	c.next = c.next.Add(c.step)
	return t
}
