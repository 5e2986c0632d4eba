package download

import (
	"context"
	"time"

	"github.com/ytget/media-toolkit/internal/model"
)

// Status tags a feedback payload
type Status string

const (
	StatusDownloading Status = "downloading"
	StatusFinished    Status = "finished"
)

// FetchProgress is one feedback payload from an engine. Any field may be zero.
type FetchProgress struct {
	Filename        string
	Status          Status
	DownloadedBytes int64
	TotalBytes      int64
	PercentString   string // literal like " 42.3%", may carry ANSI colour codes
	ETA             time.Duration
	Item            int // 1-based playlist position, 0 outside playlists
	Items           int // playlist length when known
}

// HookFunc receives engine feedback synchronously on the engine's goroutine.
// A non-nil return must abort the engine call and be returned from Fetch.
type HookFunc func(FetchProgress) error

// FetchRequest describes a single transfer
type FetchRequest struct {
	Source    string
	Format    model.Format
	OutputDir string
	Playlist  bool
}

// FetchEngine performs the actual network transfer. It blocks until the
// transfer completes, fails, or the hook aborts it.
type FetchEngine interface {
	Fetch(ctx context.Context, req FetchRequest, hook HookFunc) error
}

// RemoveFunc deletes a single path, treating a missing path as success
type RemoveFunc func(path string) (removed bool, err error)
