package torrent

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	qbittorrent "github.com/autobrr/go-qbittorrent"

	"github.com/ytget/media-toolkit/internal/platform"
)

// QBittorrent talks to a running qBittorrent instance through its WebUI API
type QBittorrent struct {
	client *qbittorrent.Client
	host   string
	logger *slog.Logger

	mu       sync.Mutex
	loggedIn bool
}

var _ Service = (*QBittorrent)(nil)

// NewQBittorrent creates a client for the WebUI at endpoint
func NewQBittorrent(endpoint, username, password string, timeout time.Duration, logger *slog.Logger) (*QBittorrent, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse qbittorrent endpoint: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("parse qbittorrent endpoint: %q is not an absolute URL", endpoint)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	host := strings.TrimSuffix(u.String(), "/")
	seconds := int(timeout / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	return &QBittorrent{
		client: qbittorrent.NewClient(qbittorrent.Config{
			Host:     host,
			Username: username,
			Password: password,
			Timeout:  seconds,
		}),
		host:   host,
		logger: logger,
	}, nil
}

// login opens the session once. The client logs in again by itself when
// the WebUI answers 403 later on.
func (q *QBittorrent) login(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.loggedIn {
		return nil
	}
	if err := q.client.LoginCtx(ctx); err != nil {
		return fmt.Errorf("qbittorrent login: %w", err)
	}
	q.loggedIn = true
	q.logger.Debug("qbittorrent session opened", "endpoint", q.host)
	return nil
}

// Submit implements Service. Magnet links are sent as urls, .torrent files
// are uploaded.
func (q *QBittorrent) Submit(ctx context.Context, source, savePath string) error {
	if err := q.login(ctx); err != nil {
		return err
	}

	options := map[string]string{"savepath": savePath}
	var err error
	if platform.IsMagnetURI(source) {
		err = q.client.AddTorrentFromUrlCtx(ctx, source, options)
	} else {
		err = q.client.AddTorrentFromFileCtx(ctx, source, options)
	}
	if err != nil {
		return fmt.Errorf("qbittorrent add torrent: %w", err)
	}
	return nil
}

func (q *QBittorrent) torrents(ctx context.Context, hashes ...string) ([]qbittorrent.Torrent, error) {
	if err := q.login(ctx); err != nil {
		return nil, err
	}
	torrents, err := q.client.GetTorrentsCtx(ctx, qbittorrent.TorrentFilterOptions{Hashes: hashes})
	if err != nil {
		return nil, fmt.Errorf("qbittorrent list torrents: %w", err)
	}
	return torrents, nil
}

// ListActive implements Service
func (q *QBittorrent) ListActive(ctx context.Context) ([]Entry, error) {
	torrents, err := q.torrents(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(torrents))
	for _, t := range torrents {
		entries = append(entries, Entry{
			Handle:   t.Hash,
			Name:     t.Name,
			AddedAt:  time.Unix(t.AddedOn, 0),
			Progress: t.Progress,
		})
	}
	return entries, nil
}

// Query implements Service
func (q *QBittorrent) Query(ctx context.Context, handle string) (Status, error) {
	torrents, err := q.torrents(ctx, handle)
	if err != nil {
		return Status{}, err
	}
	for _, t := range torrents {
		if t.Hash == handle {
			return Status{Name: t.Name, Progress: t.Progress}, nil
		}
	}
	return Status{}, fmt.Errorf("%w: %s", ErrUnknownHandle, handle)
}

// StopTracking implements Service
func (q *QBittorrent) StopTracking(ctx context.Context, handle string, deleteFiles bool) error {
	if err := q.login(ctx); err != nil {
		return err
	}
	if err := q.client.DeleteTorrentsCtx(ctx, []string{handle}, deleteFiles); err != nil {
		return fmt.Errorf("qbittorrent delete torrent: %w", err)
	}
	q.logger.Info("torrent removed from client", "handle", handle, "delete_files", deleteFiles)
	return nil
}
