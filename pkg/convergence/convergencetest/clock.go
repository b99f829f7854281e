// Package convergencetest provides a virtual clock for driving
// convergence polling deterministically in tests.
package convergencetest

import (
	"sync"
	"time"
)

// Epoch is the default start time of a VirtualClock.
var Epoch = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

// VirtualClock is a Clock whose time only moves when After or
// Advance is called. After advances the clock by the requested
// duration and fires immediately, so a poller sleeping on it
// runs without real delays.
type VirtualClock struct {
	mu    sync.Mutex
	start time.Time
	now   time.Time
	waits int
}

// NewVirtualClock creates a clock at Epoch.
func NewVirtualClock() *VirtualClock {
	return &VirtualClock{start: Epoch, now: Epoch}
}

// Now returns the current virtual time.
func (c *VirtualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// After advances the clock by d and returns a channel that
// already holds the new time.
func (c *VirtualClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.waits++
	now := c.now
	c.mu.Unlock()

	ch := make(chan time.Time, 1)
	ch <- now
	return ch
}

// Advance moves the clock forward by d.
func (c *VirtualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Elapsed returns the virtual time since the clock was created.
func (c *VirtualClock) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now.Sub(c.start)
}

// Waits returns how many times After has been called.
func (c *VirtualClock) Waits() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.waits
}
