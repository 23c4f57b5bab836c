// Package scheduler runs card callbacks one at a time. Loop is the real event
// loop; Virtual drives the same callbacks from a test-controlled clock.
package scheduler

import (
	"time"
)

// Timer is a pending one-shot callback.
type Timer interface {
	// Stop prevents the callback from running. It reports whether the call
	// stopped it.
	Stop() bool
}

// Scheduler serialises every callback onto a single logical thread.
type Scheduler interface {
	Now() time.Time
	// AfterFunc runs fn on the loop once d has elapsed.
	AfterFunc(d time.Duration, fn func()) Timer
	// NextFrame runs fn on the loop at the next animation frame.
	NextFrame(fn func())
	// Post queues fn onto the loop. Safe to call from any goroutine.
	Post(fn func())
	// Do runs fn on the loop and returns once it has finished. It must not be
	// called from a loop callback.
	Do(fn func())
}
