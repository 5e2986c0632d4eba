package loop

import (
	"context"
	"sync"
)

// Loop is an unbounded FIFO of closures drained by a single goroutine.
// Post never blocks, so background producers can't stall on a busy loop.
type Loop struct {
	mu    sync.Mutex
	queue []func()
	wake  chan struct{}
}

// New creates an empty loop
func New() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Post queues fn. Safe from any goroutine.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// RunPending runs every closure queued before the call and returns how many ran.
// Closures posted while draining wait for the next cycle.
func (l *Loop) RunPending() int {
	l.mu.Lock()
	batch := l.queue
	l.queue = nil
	l.mu.Unlock()

	for _, fn := range batch {
		fn()
	}
	return len(batch)
}

// Ready receives after a Post. Front-ends that own their own event loop
// wait on it, then call RunPending from that loop.
func (l *Loop) Ready() <-chan struct{} {
	return l.wake
}

// Len returns the number of queued closures
func (l *Loop) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Run drains the queue until ctx is done
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.RunPending()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// Scheduler returns a wall-clock Scheduler that fires on this loop
func (l *Loop) Scheduler() *Clock {
	return NewClock(l.Post)
}
