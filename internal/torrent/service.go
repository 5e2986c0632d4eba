package torrent

import (
	"context"
	"errors"
	"time"
)

// ErrUnknownHandle means the service no longer tracks the handle
var ErrUnknownHandle = errors.New("torrent handle not found")

// Entry is one item in the service's active list
type Entry struct {
	Handle   string
	Name     string
	AddedAt  time.Time
	Progress float64 // 0.0 to 1.0
}

// Status is the result of a single-handle query
type Status struct {
	Name     string
	Progress float64 // 0.0 to 1.0
}

// Service is the backing torrent system. Submit does not return a handle;
// callers discover it through ListActive.
type Service interface {
	Submit(ctx context.Context, source, savePath string) error
	ListActive(ctx context.Context) ([]Entry, error)
	Query(ctx context.Context, handle string) (Status, error)
	StopTracking(ctx context.Context, handle string, deleteFiles bool) error
}

// newest returns the most recently added entry
func newest(entries []Entry) (Entry, bool) {
	if len(entries) == 0 {
		return Entry{}, false
	}
	best := entries[0]
	for _, e := range entries[1:] {
		if e.AddedAt.After(best.AddedAt) {
			best = e
		}
	}
	return best, true
}

// percentOf converts a fraction to a clamped whole percentage
func percentOf(fraction float64) int {
	pct := int(fraction * 100)
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
