package torrent

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/anacrolix/torrent"
	"github.com/anacrolix/torrent/metainfo"
	"github.com/anacrolix/torrent/storage"
	"golang.org/x/time/rate"

	"github.com/ytget/media-toolkit/internal/platform"
)

// EmbeddedConfig tunes the in-process torrent client
type EmbeddedConfig struct {
	DataDir       string
	ListenPort    int
	UploadLimit   int64 // bytes per second, 0 for unlimited
	DownloadLimit int64 // bytes per second, 0 for unlimited
	NoUpload      bool
	NoDHT         bool
}

// Embedded runs an anacrolix/torrent client inside the process and exposes
// it through the same Service contract as an external client
type Embedded struct {
	client *torrent.Client
	logger *slog.Logger
	now    func() time.Time

	mu      sync.Mutex
	tracked map[string]*embeddedItem
}

var _ Service = (*Embedded)(nil)

type embeddedItem struct {
	t        *torrent.Torrent
	addedAt  time.Time
	savePath string
}

// NewEmbedded starts the client
func NewEmbedded(cfg EmbeddedConfig, logger *slog.Logger) (*Embedded, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	tc := torrent.NewDefaultClientConfig()
	if cfg.DataDir != "" {
		tc.DataDir = cfg.DataDir
	}
	tc.ListenPort = cfg.ListenPort
	tc.NoUpload = cfg.NoUpload
	tc.NoDHT = cfg.NoDHT
	if cfg.UploadLimit > 0 {
		tc.UploadRateLimiter = rate.NewLimiter(rate.Limit(cfg.UploadLimit), int(cfg.UploadLimit))
	}
	if cfg.DownloadLimit > 0 {
		tc.DownloadRateLimiter = rate.NewLimiter(rate.Limit(cfg.DownloadLimit), int(cfg.DownloadLimit))
	}

	client, err := torrent.NewClient(tc)
	if err != nil {
		return nil, fmt.Errorf("failed to create torrent client: %w", err)
	}
	logger.Info("embedded torrent client started", "data_dir", tc.DataDir)

	return &Embedded{
		client:  client,
		logger:  logger,
		now:     time.Now,
		tracked: make(map[string]*embeddedItem),
	}, nil
}

// Close stops the client and every torrent it holds
func (e *Embedded) Close() {
	e.client.Close()
}

func specFor(source string) (*torrent.TorrentSpec, error) {
	if platform.IsMagnetURI(source) {
		spec, err := torrent.TorrentSpecFromMagnetUri(source)
		if err != nil {
			return nil, fmt.Errorf("parse magnet link: %w", err)
		}
		return spec, nil
	}

	mi, err := metainfo.LoadFromFile(source)
	if err != nil {
		return nil, fmt.Errorf("load torrent file: %w", err)
	}
	spec, err := torrent.TorrentSpecFromMetaInfoErr(mi)
	if err != nil {
		return nil, fmt.Errorf("read torrent metainfo: %w", err)
	}
	return spec, nil
}

// Submit implements Service. Pieces are written under savePath and the
// whole torrent is selected once metadata arrives.
func (e *Embedded) Submit(_ context.Context, source, savePath string) error {
	spec, err := specFor(source)
	if err != nil {
		return err
	}
	spec.Storage = storage.NewFile(savePath)

	t, _, err := e.client.AddTorrentSpec(spec)
	if err != nil {
		return fmt.Errorf("add torrent: %w", err)
	}

	handle := t.InfoHash().HexString()
	e.mu.Lock()
	e.tracked[handle] = &embeddedItem{t: t, addedAt: e.now(), savePath: savePath}
	e.mu.Unlock()

	go func() {
		select {
		case <-t.GotInfo():
			t.DownloadAll()
		case <-t.Closed():
		}
	}()

	e.logger.Info("torrent added", "handle", handle, "save_path", savePath)
	return nil
}

func progressOf(t *torrent.Torrent) float64 {
	info := t.Info()
	if info == nil {
		return 0
	}
	total := info.TotalLength()
	if total <= 0 {
		return 0
	}
	return float64(t.BytesCompleted()) / float64(total)
}

// ListActive implements Service
func (e *Embedded) ListActive(context.Context) ([]Entry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	entries := make([]Entry, 0, len(e.tracked))
	for handle, item := range e.tracked {
		entries = append(entries, Entry{
			Handle:   handle,
			Name:     item.t.Name(),
			AddedAt:  item.addedAt,
			Progress: progressOf(item.t),
		})
	}
	return entries, nil
}

// Query implements Service
func (e *Embedded) Query(_ context.Context, handle string) (Status, error) {
	e.mu.Lock()
	item, ok := e.tracked[handle]
	e.mu.Unlock()
	if !ok {
		return Status{}, fmt.Errorf("%w: %s", ErrUnknownHandle, handle)
	}
	return Status{Name: item.t.Name(), Progress: progressOf(item.t)}, nil
}

// StopTracking implements Service. With deleteFiles the torrent's files are
// removed from its save path once the client lets go of them.
func (e *Embedded) StopTracking(_ context.Context, handle string, deleteFiles bool) error {
	e.mu.Lock()
	item, ok := e.tracked[handle]
	delete(e.tracked, handle)
	e.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownHandle, handle)
	}

	name := ""
	if item.t.Info() != nil {
		name = item.t.Name()
	}
	item.t.Drop()
	e.logger.Info("torrent dropped", "handle", handle, "delete_files", deleteFiles)

	if !deleteFiles || name == "" {
		return nil
	}
	target := filepath.Join(item.savePath, name)
	if err := os.RemoveAll(target); err != nil {
		return fmt.Errorf("remove torrent data %s: %w", target, err)
	}
	return nil
}
