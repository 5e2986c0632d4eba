package download

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/lrstanley/go-ytdlp"
	ytget "github.com/ytget/ytdlp/v2"

	"github.com/ytget/media-toolkit/internal/model"
	"github.com/ytget/media-toolkit/internal/platform"
)

// yt-dlp format selectors per output kind
const (
	FormatSelectorAudio     = "bestaudio/best"
	FormatSelectorVideo     = "bestvideo[ext=mp4][height<=1080]+bestaudio[ext=m4a]/mp4"
	FormatSelectorVideoOnly = "bestvideo[ext=webm]/bestvideo/best"

	AudioCodec   = "mp3"
	AudioQuality = "192K"
	MergeFormat  = "mp4"

	OutputTemplate = "%(title)s.%(ext)s"

	DefaultProgressInterval = 500 * time.Millisecond
	PlaylistLookupTimeout   = 30 * time.Second
)

// PlaylistSizeFunc returns the number of entries of a YouTube playlist
type PlaylistSizeFunc func(ctx context.Context, playlistID string) (int, error)

// YtDlpEngine is a FetchEngine backed by the yt-dlp executable
type YtDlpEngine struct {
	interval     time.Duration
	logger       *slog.Logger
	playlistSize PlaylistSizeFunc
}

// NewYtDlpEngine creates an engine reporting progress every interval
func NewYtDlpEngine(interval time.Duration, logger *slog.Logger) *YtDlpEngine {
	if interval <= 0 {
		interval = DefaultProgressInterval
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &YtDlpEngine{interval: interval, logger: logger, playlistSize: lookupPlaylistSize}
}

func lookupPlaylistSize(ctx context.Context, playlistID string) (int, error) {
	items, err := ytget.New().GetPlaylistItemsAll(ctx, playlistID, 0)
	if err != nil {
		return 0, fmt.Errorf("get playlist items: %w", err)
	}
	return len(items), nil
}

// playlistItems resolves the playlist length up front. Failures only cost
// the "item k/N" total, so they are logged and swallowed.
func (e *YtDlpEngine) playlistItems(ctx context.Context, req FetchRequest) int {
	if !req.Playlist || e.playlistSize == nil || !platform.IsPlaylistURL(req.Source) {
		return 0
	}
	id, err := platform.ExtractPlaylistID(req.Source)
	if err != nil {
		e.logger.Debug("playlist id not found", "source", req.Source, "error", err)
		return 0
	}

	ctx, cancel := context.WithTimeout(ctx, PlaylistLookupTimeout)
	defer cancel()
	n, err := e.playlistSize(ctx, id)
	if err != nil {
		e.logger.Warn("playlist lookup failed", "playlist_id", id, "error", err)
		return 0
	}
	e.logger.Debug("playlist resolved", "playlist_id", id, "items", n)
	return n
}

// Install makes sure a yt-dlp binary is available, downloading it if needed
func (e *YtDlpEngine) Install(ctx context.Context) error {
	if _, err := ytdlp.Install(ctx, nil); err != nil {
		return fmt.Errorf("install yt-dlp: %w", err)
	}
	return nil
}

// Fetch implements FetchEngine. A hook error kills the yt-dlp process and is
// returned wrapped, so callers can match model.ErrAborted.
func (e *YtDlpEngine) Fetch(ctx context.Context, req FetchRequest, hook HookFunc) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	dl := ytdlp.New().
		ForceOverwrites().
		Output(filepath.Join(req.OutputDir, OutputTemplate))
	applyFormat(dl, req.Format)
	if req.Playlist {
		dl.YesPlaylist()
	} else {
		dl.NoPlaylist()
	}

	items := e.playlistItems(ctx, req)

	var (
		once    sync.Once
		hookErr error
	)
	dl.ProgressFunc(e.interval, func(update ytdlp.ProgressUpdate) {
		p := progressFromUpdate(&update)
		if items > 0 {
			p.Items = items
		}
		if err := hook(p); err != nil {
			once.Do(func() {
				hookErr = err
				cancel()
			})
		}
	})

	_, err := dl.Run(ctx, req.Source)
	once.Do(func() {})
	if hookErr != nil {
		return fmt.Errorf("yt-dlp: %w", hookErr)
	}
	if err != nil {
		e.logger.Debug("yt-dlp run failed", "source", req.Source, "error", err)
		return &model.TransferError{Err: err}
	}
	return nil
}

func applyFormat(dl *ytdlp.Command, format model.Format) {
	switch format {
	case model.FormatAudio:
		dl.Format(FormatSelectorAudio).
			ExtractAudio().
			AudioFormat(AudioCodec).
			AudioQuality(AudioQuality)
	case model.FormatVideoOnly:
		dl.Format(FormatSelectorVideoOnly)
	default:
		dl.Format(FormatSelectorVideo).
			MergeOutputFormat(MergeFormat)
	}
}

// progressFromUpdate maps a go-ytdlp progress update onto the hook payload
func progressFromUpdate(update *ytdlp.ProgressUpdate) FetchProgress {
	p := FetchProgress{
		Filename:        update.Filename,
		Status:          StatusDownloading,
		DownloadedBytes: int64(update.DownloadedBytes),
		TotalBytes:      int64(update.TotalBytes),
	}
	if update.Status == ytdlp.ProgressStatusFinished {
		p.Status = StatusFinished
	}
	if p.TotalBytes == 0 && update.Percent() > 0 {
		p.PercentString = update.PercentString()
	}
	if eta := update.ETA(); eta > 0 {
		p.ETA = eta
	}
	if info := update.Info; info != nil {
		if info.PlaylistIndex != nil {
			p.Item = *info.PlaylistIndex
		}
		if info.PlaylistCount != nil {
			p.Items = *info.PlaylistCount
		}
	}
	return p
}
