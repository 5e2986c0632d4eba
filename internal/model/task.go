package model

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// ServiceKind identifies which downloader tool a task belongs to
type ServiceKind string

const (
	ServiceYouTube ServiceKind = "youtube"
	ServiceTikTok  ServiceKind = "tiktok"
	ServiceTorrent ServiceKind = "torrent"
)

// Format is the requested output kind. Torrent tasks ignore it.
type Format string

const (
	FormatAudio     Format = "audio"
	FormatVideo     Format = "video"
	FormatVideoOnly Format = "video_only"
)

// Label returns the human readable name of the format
func (f Format) Label() string {
	switch f {
	case FormatAudio:
		return "Audio (mp3)"
	case FormatVideo:
		return "Video + Audio (mp4)"
	case FormatVideoOnly:
		return "Video Only (WebM)"
	default:
		return string(f)
	}
}

// FormatsFor returns the formats a service offers, in display order
func FormatsFor(kind ServiceKind) []Format {
	switch kind {
	case ServiceYouTube:
		return []Format{FormatAudio, FormatVideo, FormatVideoOnly}
	case ServiceTikTok:
		return []Format{FormatAudio, FormatVideo}
	default:
		return nil
	}
}

// DownloadTask represents one in-flight or finished download
type DownloadTask struct {
	ID                  string
	Service             ServiceKind
	Source              string // URL, magnet link, or .torrent path
	Format              Format
	OutputDir           string
	Playlist            bool // fetch every entry when Source is a playlist
	State               TaskState
	ProgressPercent     int    // 0 to 100
	StatusText          string // last human readable message
	PartialArtifactPath string // set only by the push worker, cleanup use
	TerminalError       string // present only when State is Failed
	StartedAt           time.Time
	FinishedAt          time.Time
}

// Apply folds an event into the record. It returns false when the event
// would move the task out of a terminal state.
func (dt *DownloadTask) Apply(ev ProgressEvent, now time.Time) bool {
	next := ev.State()
	if next != dt.State && !dt.State.CanTransition(next) {
		return false
	}
	dt.State = next

	if ev.Message != "" {
		dt.StatusText = ev.Message
	}

	switch ev.Kind {
	case EventProgress:
		dt.ProgressPercent = ClampPercent(ev.Percent)
		if ev.Artifact != "" {
			dt.PartialArtifactPath = ev.Artifact
		}
	case EventFinished:
		dt.ProgressPercent = 100
	case EventFailed:
		dt.TerminalError = ev.Message
	}

	if next.IsFinished() {
		dt.FinishedAt = now
	}
	return true
}

// GetElapsedString returns how long the task has been running as mm:ss or hh:mm:ss
func (dt *DownloadTask) GetElapsedString(now time.Time) string {
	if dt.StartedAt.IsZero() {
		return "—"
	}
	end := now
	if !dt.FinishedAt.IsZero() {
		end = dt.FinishedAt
	}
	sec := int(end.Sub(dt.StartedAt).Seconds())
	if sec < 0 {
		sec = 0
	}

	hours := sec / 3600
	minutes := (sec % 3600) / 60
	seconds := sec % 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// GetDisplayTitle returns the partial file name or the source in order of preference
func (dt *DownloadTask) GetDisplayTitle() string {
	if dt.PartialArtifactPath != "" {
		name := filepath.Base(dt.PartialArtifactPath)
		name = strings.TrimSuffix(name, PartialSuffix)
		if idx := strings.LastIndex(name, "."); idx > 0 {
			name = name[:idx]
		}
		return name
	}

	if dt.Service == ServiceTorrent && !strings.HasPrefix(dt.Source, "magnet:") {
		return filepath.Base(dt.Source)
	}
	return dt.Source
}

// PartialSuffix marks a file the engine has not finalized yet
const PartialSuffix = ".part"

// PartialPath returns the in-progress name of filename
func PartialPath(filename string) string {
	if filename == "" || strings.HasSuffix(filename, PartialSuffix) {
		return filename
	}
	return filename + PartialSuffix
}

// ClampPercent bounds p to [0, 100]
func ClampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
