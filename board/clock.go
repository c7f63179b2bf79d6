package board

import (
	"sort"
	"sync"
	"time"
)

// Clock schedules deferred callbacks. Callbacks may run on any goroutine.
type Clock interface {
	AfterFunc(d time.Duration, f func())
}

// WallClock schedules on real timers
type WallClock struct{}

func (WallClock) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

// ManualClock only advances when told to. Callbacks run synchronously
// inside Advance, in deadline order (ties in scheduling order).
type ManualClock struct {
	mu      sync.Mutex
	now     time.Duration
	seq     int
	pending []pendingFunc
}

type pendingFunc struct {
	at  time.Duration
	seq int
	f   func()
}

// NewManualClock creates a clock at t=0
func NewManualClock() *ManualClock {
	return &ManualClock{}
}

func (c *ManualClock) AfterFunc(d time.Duration, f func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	c.pending = append(c.pending, pendingFunc{at: c.now + d, seq: c.seq, f: f})
}

// Advance moves time forward by d, firing everything that comes due
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	c.mu.Unlock()

	for {
		c.mu.Lock()
		sort.Slice(c.pending, func(i, j int) bool {
			if c.pending[i].at != c.pending[j].at {
				return c.pending[i].at < c.pending[j].at
			}
			return c.pending[i].seq < c.pending[j].seq
		})
		if len(c.pending) == 0 || c.pending[0].at > target {
			c.now = target
			c.mu.Unlock()
			return
		}
		next := c.pending[0]
		c.pending = c.pending[1:]
		c.now = next.at
		c.mu.Unlock()

		// run unlocked so the callback may schedule more work
		next.f()
	}
}

// Now returns the elapsed manual time
func (c *ManualClock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Pending returns how many callbacks are waiting
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
