package scheduler

import (
	"sort"
	"sync"
	"time"
)

// Virtual is a Scheduler whose clock only moves when the test says so. Do
// runs inline on the caller's goroutine; timers, frames and posted callbacks
// wait for Advance, RunFrames or RunPosted.
type Virtual struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	timers []*virtualTimer
	frames []func()
	posted []func()
}

type virtualTimer struct {
	v       *Virtual
	due     time.Time
	seq     int
	fn      func()
	stopped bool
}

func (vt *virtualTimer) Stop() bool {
	vt.v.mu.Lock()
	defer vt.v.mu.Unlock()
	if vt.stopped {
		return false
	}
	vt.stopped = true
	return true
}

func NewVirtual(start time.Time) *Virtual {
	return &Virtual{now: start}
}

func (v *Virtual) Now() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.now
}

func (v *Virtual) AfterFunc(d time.Duration, fn func()) Timer {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.seq++
	vt := &virtualTimer{v: v, due: v.now.Add(d), seq: v.seq, fn: fn}
	v.timers = append(v.timers, vt)
	return vt
}

func (v *Virtual) NextFrame(fn func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.frames = append(v.frames, fn)
}

func (v *Virtual) Post(fn func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.posted = append(v.posted, fn)
}

func (v *Virtual) Do(fn func()) {
	fn()
}

// RunFrames runs the frame callbacks queued so far. Callbacks they request
// wait for the following frame.
func (v *Virtual) RunFrames() int {
	v.mu.Lock()
	frames := v.frames
	v.frames = nil
	v.mu.Unlock()

	for _, fn := range frames {
		fn()
	}
	return len(frames)
}

// RunPosted runs queued Post callbacks until the queue is empty.
func (v *Virtual) RunPosted() int {
	n := 0
	for {
		v.mu.Lock()
		posted := v.posted
		v.posted = nil
		v.mu.Unlock()
		if len(posted) == 0 {
			return n
		}
		for _, fn := range posted {
			fn()
		}
		n += len(posted)
	}
}

// Pending reports the number of live timers.
func (v *Virtual) Pending() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	n := 0
	for _, vt := range v.timers {
		if !vt.stopped {
			n++
		}
	}
	return n
}

// Advance moves the clock forward by d. Frames and posted callbacks run
// first, then every timer due within the window fires in due order with the
// clock set to its due time.
func (v *Virtual) Advance(d time.Duration) {
	v.RunFrames()
	v.RunPosted()

	v.mu.Lock()
	target := v.now.Add(d)
	v.mu.Unlock()

	for {
		vt := v.popDue(target)
		if vt == nil {
			break
		}
		vt.fn()
		v.RunPosted()
	}

	v.mu.Lock()
	v.now = target
	v.mu.Unlock()
}

func (v *Virtual) popDue(target time.Time) *virtualTimer {
	v.mu.Lock()
	defer v.mu.Unlock()

	live := v.timers[:0]
	for _, vt := range v.timers {
		if !vt.stopped {
			live = append(live, vt)
		}
	}
	v.timers = live
	if len(v.timers) == 0 {
		return nil
	}

	sort.SliceStable(v.timers, func(i, j int) bool {
		if v.timers[i].due.Equal(v.timers[j].due) {
			return v.timers[i].seq < v.timers[j].seq
		}
		return v.timers[i].due.Before(v.timers[j].due)
	})

	next := v.timers[0]
	if next.due.After(target) {
		return nil
	}
	v.timers = v.timers[1:]
	next.stopped = true
	if next.due.After(v.now) {
		v.now = next.due
	}
	return next
}
