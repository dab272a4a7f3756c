package engine

import "sync/atomic"

// Clock is a monotonic logical clock used by recorders to number moves.
//
// All records are stamped with a strictly increasing seq from this clock.
// Wall-clock time is never used for ordering, so replay produces identical
// sequence numbers.
//
// Thread-safety: Clock is safe for concurrent use, though a sort only ever
// calls Next from one goroutine.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
