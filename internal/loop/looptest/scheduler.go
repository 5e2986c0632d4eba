// Package looptest provides a manually driven loop.Scheduler for tests.
package looptest

import (
	"sort"
	"sync"
	"time"

	"github.com/ytget/media-toolkit/internal/loop"
)

// Scheduler is a fake loop with virtual time. Nothing runs until the test
// calls Flush or Advance, and callbacks run on the calling goroutine.
type Scheduler struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	posted []func()
	timers []*timer

	periodic int
}

var _ loop.Scheduler = (*Scheduler)(nil)

type timer struct {
	s       *Scheduler
	due     time.Duration
	every   time.Duration
	seq     int
	fn      func()
	stopped bool
}

// New creates a scheduler at virtual time zero
func New() *Scheduler {
	return &Scheduler{}
}

// Post implements loop.Scheduler
func (s *Scheduler) Post(fn func()) {
	s.mu.Lock()
	s.posted = append(s.posted, fn)
	s.mu.Unlock()
}

// After implements loop.Scheduler
func (s *Scheduler) After(d time.Duration, fn func()) loop.Timer {
	return s.add(d, 0, fn)
}

// Every implements loop.Scheduler
func (s *Scheduler) Every(d time.Duration, fn func()) loop.Timer {
	return s.add(d, d, fn)
}

func (s *Scheduler) add(d, every time.Duration, fn func()) *timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	if every > 0 {
		s.periodic++
	}
	t := &timer{s: s, due: s.now + d, every: every, seq: s.seq, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

func (t *timer) Stop() {
	t.s.mu.Lock()
	t.stopped = true
	t.s.mu.Unlock()
}

// Flush runs posted closures, including ones posted while flushing
func (s *Scheduler) Flush() {
	for {
		s.mu.Lock()
		batch := s.posted
		s.posted = nil
		s.mu.Unlock()
		if len(batch) == 0 {
			return
		}
		for _, fn := range batch {
			fn()
		}
	}
}

// Advance moves virtual time forward by d, firing due timers in order
func (s *Scheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	for {
		s.Flush()

		s.mu.Lock()
		next := s.nextDue(target)
		if next == nil {
			s.now = target
			s.mu.Unlock()
			break
		}
		s.now = next.due
		if next.every > 0 {
			next.due += next.every
			s.seq++
			next.seq = s.seq
		} else {
			next.stopped = true
		}
		s.mu.Unlock()

		next.fn()
	}
	s.Flush()
}

func (s *Scheduler) nextDue(limit time.Duration) *timer {
	live := s.timers[:0]
	for _, t := range s.timers {
		if !t.stopped {
			live = append(live, t)
		}
	}
	s.timers = live
	sort.SliceStable(s.timers, func(i, j int) bool {
		if s.timers[i].due != s.timers[j].due {
			return s.timers[i].due < s.timers[j].due
		}
		return s.timers[i].seq < s.timers[j].seq
	})
	if len(s.timers) == 0 || s.timers[0].due > limit {
		return nil
	}
	return s.timers[0]
}

// Now returns elapsed virtual time
func (s *Scheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// ArmedTimers returns how many timers are still armed
func (s *Scheduler) ArmedTimers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

// PeriodicCreated returns how many Every timers were ever armed
func (s *Scheduler) PeriodicCreated() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.periodic
}
