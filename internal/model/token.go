package model

import (
	"sync/atomic"
	"time"
)

// CancellationToken is a cooperative stop flag shared between a controller
// and the task it started. Cancel is written once; readers poll IsCancelled
// at every feedback boundary.
type CancellationToken struct {
	cancelled   atomic.Bool
	requestedAt atomic.Int64
	now         func() time.Time
}

// NewCancellationToken creates an unset token
func NewCancellationToken() *CancellationToken {
	return &CancellationToken{now: time.Now}
}

// NewCancellationTokenWithClock creates a token that stamps requests using now
func NewCancellationTokenWithClock(now func() time.Time) *CancellationToken {
	return &CancellationToken{now: now}
}

// Cancel sets the flag. Only the first call records a timestamp and returns true.
func (t *CancellationToken) Cancel() bool {
	if !t.cancelled.CompareAndSwap(false, true) {
		return false
	}
	now := time.Now
	if t.now != nil {
		now = t.now
	}
	t.requestedAt.Store(now().UnixNano())
	return true
}

// IsCancelled reports whether Cancel has been called
func (t *CancellationToken) IsCancelled() bool {
	return t.cancelled.Load()
}

// RequestedAt returns when Cancel first succeeded, or the zero time
func (t *CancellationToken) RequestedAt() time.Time {
	ns := t.requestedAt.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}
