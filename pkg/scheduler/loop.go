package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultFrame approximates a 60Hz display refresh.
const DefaultFrame = 16 * time.Millisecond

// Loop is a single goroutine draining a queue of callbacks.
type Loop struct {
	tasks chan func()
	done  chan struct{}
	frame time.Duration
}

func NewLoop(frame time.Duration) *Loop {
	if frame <= 0 {
		frame = DefaultFrame
	}
	return &Loop{
		tasks: make(chan func(), 64),
		done:  make(chan struct{}),
		frame: frame,
	}
}

// Run drains the queue until ctx is cancelled. Callbacks posted after Run
// returns are dropped.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-l.tasks:
			l.run(fn)
		}
	}
}

func (l *Loop) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithField("panic", r).Error("Loop: callback panicked")
		}
	}()
	fn()
}

func (l *Loop) Now() time.Time {
	return time.Now()
}

func (l *Loop) Post(fn func()) {
	select {
	case l.tasks <- fn:
	case <-l.done:
	}
}

func (l *Loop) Do(fn func()) {
	finished := make(chan struct{})
	l.Post(func() {
		defer close(finished)
		fn()
	})
	select {
	case <-finished:
	case <-l.done:
	}
}

type loopTimer struct {
	t       *time.Timer
	stopped atomic.Bool
}

func (lt *loopTimer) Stop() bool {
	if lt.stopped.Swap(true) {
		return false
	}
	lt.t.Stop()
	return true
}

func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	lt := &loopTimer{}
	lt.t = time.AfterFunc(d, func() {
		l.Post(func() {
			// Stop may have run after the timer fired but before this turn.
			if lt.stopped.Swap(true) {
				return
			}
			fn()
		})
	})
	return lt
}

func (l *Loop) NextFrame(fn func()) {
	time.AfterFunc(l.frame, func() { l.Post(fn) })
}
