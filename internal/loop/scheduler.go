package loop

import (
	"sync/atomic"
	"time"
)

// Timer is a handle to a scheduled callback
type Timer interface {
	// Stop disarms the timer. Called from the loop, it guarantees the
	// callback will not run again.
	Stop()
}

// Scheduler runs callbacks on the interactive loop. Callbacks never run
// concurrently with each other.
type Scheduler interface {
	// Post queues fn to run on the loop. Safe from any goroutine.
	Post(fn func())
	// After runs fn once on the loop after d.
	After(d time.Duration, fn func()) Timer
	// Every runs fn on the loop each d until the timer is stopped.
	Every(d time.Duration, fn func()) Timer
}

// PostFunc hands a closure to some loop for execution
type PostFunc func(fn func())

// Clock is a Scheduler backed by wall-clock timers and an arbitrary poster
type Clock struct {
	post PostFunc
}

// NewClock builds a Scheduler that fires timers through post
func NewClock(post PostFunc) *Clock {
	return &Clock{post: post}
}

// Post implements Scheduler
func (c *Clock) Post(fn func()) {
	c.post(fn)
}

// After implements Scheduler
func (c *Clock) After(d time.Duration, fn func()) Timer {
	t := &clockTimer{}
	t.arm(c, d, fn, false)
	return t
}

// Every implements Scheduler. The next tick is armed only after the current
// one has run, so a slow loop never accumulates a backlog of ticks.
func (c *Clock) Every(d time.Duration, fn func()) Timer {
	t := &clockTimer{}
	t.arm(c, d, fn, true)
	return t
}

type clockTimer struct {
	stopped atomic.Bool
	current atomic.Pointer[time.Timer]
}

func (t *clockTimer) arm(c *Clock, d time.Duration, fn func(), repeat bool) {
	tm := time.AfterFunc(d, func() {
		c.post(func() {
			if t.stopped.Load() {
				return
			}
			fn()
			if repeat && !t.stopped.Load() {
				t.arm(c, d, fn, true)
			}
		})
	})
	t.current.Store(tm)
}

func (t *clockTimer) Stop() {
	t.stopped.Store(true)
	if tm := t.current.Load(); tm != nil {
		tm.Stop()
	}
}
