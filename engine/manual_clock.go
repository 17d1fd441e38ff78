package engine

import (
	"sync/atomic"
	"time"
)

// ManualClock only moves when told to, for deterministic runner tests
// With a stride set, every Now call also advances it, so a free-running
// Runner observes evenly spaced frames
type ManualClock struct {
	base   time.Time
	offset atomic.Int64 // Nanoseconds past base
	stride atomic.Int64
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{base: start}
}

// Now returns the current reading, then applies the stride
func (c *ManualClock) Now() time.Time {
	stride := c.stride.Load()
	off := c.offset.Add(stride) - stride
	return c.base.Add(time.Duration(off))
}

// Set jumps to t; earlier than the start is allowed
func (c *ManualClock) Set(t time.Time) {
	c.offset.Store(int64(t.Sub(c.base)))
}

func (c *ManualClock) Advance(d time.Duration) {
	c.offset.Add(int64(d))
}

// SetStride makes each Now advance the clock by d; zero disables it
func (c *ManualClock) SetStride(d time.Duration) {
	c.stride.Store(int64(d))
}
