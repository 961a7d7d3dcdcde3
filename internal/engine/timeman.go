package engine

import (
	"sync/atomic"
	"time"
)

// Deadline is the search's only time-management input: a timestamp (or
// ∞) plus a shared interrupt flag, checked at every node. Anything
// fancier — UCI-style stability/instability reallocation, clock tracking,
// move-overhead heuristics — is out of scope; callers that want that
// behavior compute an absolute deadline themselves before calling Search.
type Deadline struct {
	at        time.Time // zero value means no deadline
	interrupt *atomic.Bool
}

// NewDeadline returns a Deadline that expires at the given time. Pass the
// zero time.Time for a deadline that never expires on its own.
func NewDeadline(at time.Time, interrupt *atomic.Bool) Deadline {
	return Deadline{at: at, interrupt: interrupt}
}

// NoDeadline returns a Deadline that only stops via its own interrupt flag.
func NoDeadline() Deadline {
	var flag atomic.Bool
	return Deadline{interrupt: &flag}
}

// Expired reports whether the deadline has passed or the interrupt flag
// has been raised.
func (d Deadline) Expired() bool {
	if d.interrupt != nil && d.interrupt.Load() {
		return true
	}
	return !d.at.IsZero() && time.Now().After(d.at)
}

// Interrupt raises the shared interrupt flag, if one was provided.
func (d Deadline) Interrupt() {
	if d.interrupt != nil {
		d.interrupt.Store(true)
	}
}
