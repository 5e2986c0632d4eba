package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/media-toolkit/internal/config"
	"github.com/ytget/media-toolkit/internal/download"
	"github.com/ytget/media-toolkit/internal/loop/looptest"
	"github.com/ytget/media-toolkit/internal/model"
	"github.com/ytget/media-toolkit/internal/torrent"
)

type halfwayEngine struct{}

func (halfwayEngine) Fetch(_ context.Context, _ download.FetchRequest, hook download.HookFunc) error {
	if err := hook(download.FetchProgress{Status: download.StatusDownloading, DownloadedBytes: 50, TotalBytes: 100}); err != nil {
		return err
	}
	return errors.New("NetworkTimeout")
}

type emptyTorrents struct {
	mu        sync.Mutex
	submitted []string
}

func (e *emptyTorrents) Submit(_ context.Context, source, savePath string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.submitted = append(e.submitted, savePath)
	return nil
}
func (e *emptyTorrents) ListActive(context.Context) ([]torrent.Entry, error) { return nil, nil }
func (e *emptyTorrents) Query(context.Context, string) (torrent.Status, error) {
	return torrent.Status{}, torrent.ErrUnknownHandle
}
func (e *emptyTorrents) StopTracking(context.Context, string, bool) error { return nil }

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	return &config.Config{
		OutputRoot:       root,
		YouTubeDir:       "Downloads From YouTube",
		TikTokDir:        "Downloads From TikTok",
		TorrentDir:       "MyTorrents",
		CompressDir:      "Compressed",
		TorrentBackend:   config.BackendQBittorrent,
		TorrentEndpoint:  "http://localhost:8080/",
		PollInterval:     1200 * time.Millisecond,
		DiscoveryDelay:   1600 * time.Millisecond,
		QueryTimeout:     time.Second,
		ProgressInterval: 500 * time.Millisecond,
		CompressWorkers:  1,
		DataDir:          t.TempDir(),
	}
}

func newTestToolkit(t *testing.T, sched *looptest.Scheduler, svc torrent.Service) *Toolkit {
	t.Helper()
	cfg := testConfig(t)
	require.NoError(t, config.EnsureDirs(cfg))
	tk, err := New(cfg, sched, slog.New(slog.NewTextHandler(io.Discard, nil)), Options{
		Torrent: svc,
		Fetch:   halfwayEngine{},
	})
	require.NoError(t, err)
	t.Cleanup(func() { tk.Close() })
	return tk
}

func TestNew_BuildsEveryController(t *testing.T) {
	tk := newTestToolkit(t, looptest.New(), &emptyTorrents{})

	for _, kind := range []model.ServiceKind{model.ServiceYouTube, model.ServiceTikTok, model.ServiceTorrent} {
		c := tk.Controller(kind)
		require.NotNil(t, c, kind)
		assert.Equal(t, kind, c.Service())
		assert.False(t, c.Busy())
	}
	assert.Nil(t, tk.Engine)
	assert.NotNil(t, tk.History)
}

func TestToolkit_YouTubeFailureRecorded(t *testing.T) {
	sched := looptest.New()
	tk := newTestToolkit(t, sched, &emptyTorrents{})
	c := tk.Controller(model.ServiceYouTube)

	id, err := c.Start(tk.Request(model.ServiceYouTube, "https://www.youtube.com/watch?v=abc123", model.FormatAudio, false))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		sched.Flush()
		return !c.Busy()
	}, 5*time.Second, time.Millisecond)

	task, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, model.TaskStateFailed, task.State)
	assert.Equal(t, "NetworkTimeout", task.TerminalError)

	stored, err := tk.History.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.TaskStateFailed, stored.State)
	assert.Equal(t, tk.Config.ServiceDir(model.ServiceYouTube), stored.OutputDir)

	assert.Equal(t, 1.0, testutil.ToFloat64(tk.Metrics.TasksFinished.WithLabelValues("youtube", "Failed")))
}

func TestToolkit_TorrentNoEntries(t *testing.T) {
	sched := looptest.New()
	svc := &emptyTorrents{}
	tk := newTestToolkit(t, sched, svc)
	c := tk.Controller(model.ServiceTorrent)

	_, err := c.Start(tk.Request(model.ServiceTorrent, "magnet:?xt=urn:btih:0123456789abcdef0123456789abcdef01234567", "", false))
	require.NoError(t, err)

	sched.Flush()
	sched.Advance(torrent.DefaultDiscoveryDelay)
	require.Eventually(t, func() bool {
		sched.Flush()
		return !c.Busy()
	}, 5*time.Second, time.Millisecond)

	task, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, model.TaskStateFailed, task.State)
	assert.Equal(t, torrent.MsgNoTorrents, task.TerminalError)
	assert.Equal(t, []string{tk.Config.ServiceDir(model.ServiceTorrent)}, svc.submitted)
	assert.Equal(t, 0, sched.PeriodicCreated())
}

func TestToolkit_ServeMetricsDisabled(t *testing.T) {
	tk := newTestToolkit(t, looptest.New(), &emptyTorrents{})
	assert.NoError(t, tk.ServeMetrics(context.Background()))
}

func TestToolkit_CloseIsIdempotent(t *testing.T) {
	tk := newTestToolkit(t, looptest.New(), &emptyTorrents{})
	assert.NoError(t, tk.Close())
	assert.NoError(t, tk.Close())
}
