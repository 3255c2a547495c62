package engine

import "sync/atomic"

// Clock is the monotonic revision counter of the engine.
//
// Each committed command is stamped with the next revision, and every View
// carries the revision it was computed at, so consumers can tell which of two
// views is newer.
//
// A revision counts committed commands, not state changes. A command that
// commits without changing anything (a reorder already in place, an empty
// position batch, a toggle to the current value) still advances the clock;
// the hub suppresses the identical views it would produce. Rejected commands
// never advance it.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations).
// Only the Run loop calls Next().
type Clock struct {
	rev atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next revision and increments the clock.
func (c *Clock) Next() int64 {
	return c.rev.Add(1)
}

// Current returns the latest revision without incrementing.
func (c *Clock) Current() int64 {
	return c.rev.Load()
}
