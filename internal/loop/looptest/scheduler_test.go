package looptest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduler_AdvanceFiresInOrder(t *testing.T) {
	s := New()
	var got []string

	s.After(2*time.Second, func() { got = append(got, "after2s") })
	s.After(time.Second, func() { got = append(got, "after1s") })
	tick := s.Every(700*time.Millisecond, func() { got = append(got, "tick") })

	s.Advance(1500 * time.Millisecond)
	assert.Equal(t, []string{"tick", "after1s", "tick"}, got)

	tick.Stop()
	s.Advance(time.Second)
	assert.Equal(t, []string{"tick", "after1s", "tick", "after2s"}, got)
	assert.Equal(t, 0, s.ArmedTimers())
	assert.Equal(t, 1, s.PeriodicCreated())
	assert.Equal(t, 2500*time.Millisecond, s.Now())
}

func TestScheduler_PostedRunsOnFlush(t *testing.T) {
	s := New()
	ran := 0
	s.Post(func() {
		ran++
		s.Post(func() { ran++ })
	})

	assert.Equal(t, 0, ran)
	s.Flush()
	assert.Equal(t, 2, ran)
}

func TestScheduler_StopInsideCallback(t *testing.T) {
	s := New()
	ticks := 0
	var timer interface{ Stop() }
	timer = s.Every(time.Second, func() {
		ticks++
		if ticks == 2 {
			timer.Stop()
		}
	})

	s.Advance(10 * time.Second)
	assert.Equal(t, 2, ticks)
	assert.Equal(t, 0, s.ArmedTimers())
}
