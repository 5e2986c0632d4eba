package controller

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/media-toolkit/internal/download"
	"github.com/ytget/media-toolkit/internal/loop/looptest"
	"github.com/ytget/media-toolkit/internal/model"
	"github.com/ytget/media-toolkit/internal/torrent"
)

type manualRunner struct {
	mu     sync.Mutex
	starts []model.DownloadTask
	tokens []*model.CancellationToken
	chans  []chan model.ProgressEvent
}

func (r *manualRunner) Start(task model.DownloadTask, token *model.CancellationToken) <-chan model.ProgressEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch := make(chan model.ProgressEvent, 8)
	r.starts = append(r.starts, task)
	r.tokens = append(r.tokens, token)
	r.chans = append(r.chans, ch)
	return ch
}

func (r *manualRunner) last() (chan model.ProgressEvent, *model.CancellationToken) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.chans[len(r.chans)-1], r.tokens[len(r.tokens)-1]
}

type recorder struct {
	mu     sync.Mutex
	events []model.ProgressEvent
	states []model.TaskState
}

func (r *recorder) OnEvent(task model.DownloadTask, ev model.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	r.states = append(r.states, task.State)
}

func (r *recorder) snapshot() ([]model.ProgressEvent, []model.TaskState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.ProgressEvent(nil), r.events...), append([]model.TaskState(nil), r.states...)
}

func waitEvents(t *testing.T, sched *looptest.Scheduler, rec *recorder, n int) []model.ProgressEvent {
	t.Helper()
	require.Eventually(t, func() bool {
		sched.Flush()
		events, _ := rec.snapshot()
		return len(events) >= n
	}, 5*time.Second, time.Millisecond)
	events, _ := rec.snapshot()
	return events
}

func youtubeRequest(dir string) Request {
	return Request{Source: "https://www.youtube.com/watch?v=dQw4w9WgXcQ", Format: model.FormatAudio, OutputDir: dir}
}

func TestController_RejectsInvalidRequests(t *testing.T) {
	dir := t.TempDir()
	torrentFile := filepath.Join(dir, "a.torrent")
	require.NoError(t, os.WriteFile(torrentFile, []byte("d4:infoe"), 0644))

	tests := []struct {
		name  string
		kind  model.ServiceKind
		req   Request
		field string
	}{
		{"empty source", model.ServiceYouTube, Request{OutputDir: dir}, "source"},
		{"missing dir", model.ServiceYouTube, Request{Source: "https://youtu.be/x", OutputDir: filepath.Join(dir, "nope")}, "output directory"},
		{"wrong domain for youtube", model.ServiceYouTube, Request{Source: "https://www.tiktok.com/@a/video/1", OutputDir: dir}, "source"},
		{"wrong domain for tiktok", model.ServiceTikTok, Request{Source: "https://www.youtube.com/watch?v=x", OutputDir: dir}, "source"},
		{"format not offered", model.ServiceTikTok, Request{Source: "https://www.tiktok.com/@a/video/1", Format: model.FormatVideoOnly, OutputDir: dir}, "format"},
		{"unknown format", model.ServiceYouTube, Request{Source: "https://youtu.be/x", Format: "flac", OutputDir: dir}, "format"},
		{"torrent url", model.ServiceTorrent, Request{Source: "https://example.com/a.torrent", OutputDir: dir}, "source"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			runner := &manualRunner{}
			c := New(test.kind, runner, looptest.New())

			id, err := c.Start(test.req)
			require.Error(t, err)
			assert.Empty(t, id)
			assert.True(t, errors.Is(err, model.ErrValidation))

			var verr *model.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, test.field, verr.Field)
			assert.Empty(t, runner.starts)
			assert.False(t, c.Busy())
		})
	}

	ok := New(model.ServiceTorrent, &manualRunner{}, looptest.New())
	_, err := ok.Start(Request{Source: torrentFile, OutputDir: dir})
	assert.NoError(t, err)
}

func TestController_RejectsReadOnlyOutputDir(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permission bits")
	}
	dir := filepath.Join(t.TempDir(), "locked")
	require.NoError(t, os.Mkdir(dir, 0555))
	t.Cleanup(func() { _ = os.Chmod(dir, 0755) })

	runner := &manualRunner{}
	c := New(model.ServiceYouTube, runner, looptest.New())

	_, err := c.Start(youtubeRequest(dir))
	require.ErrorIs(t, err, model.ErrValidation)

	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "output directory", verr.Field)
	assert.Equal(t, "is not writable", verr.Reason)
	assert.Empty(t, runner.starts)
}

func TestController_SingleActiveTask(t *testing.T) {
	dir := t.TempDir()
	runner := &manualRunner{}
	sched := looptest.New()
	c := New(model.ServiceYouTube, runner, sched)
	rec := &recorder{}
	c.Subscribe(rec)

	id, err := c.Start(youtubeRequest(dir))
	require.NoError(t, err)
	task, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, model.TaskStatePending, task.State)
	assert.Equal(t, MsgStarting, task.StatusText)

	_, err = c.Start(youtubeRequest(dir))
	assert.ErrorIs(t, err, model.ErrBusy)
	assert.Len(t, runner.starts, 1)

	task, _ = c.Current()
	assert.Equal(t, id, task.ID)

	ch, _ := runner.last()
	ch <- model.Progress(40, "Downloading...")
	waitEvents(t, sched, rec, 1)

	_, err = c.Start(youtubeRequest(dir))
	assert.ErrorIs(t, err, model.ErrBusy)

	ch <- model.Finished("Download finished!")
	close(ch)
	waitEvents(t, sched, rec, 2)

	assert.False(t, c.Busy())
	_, err = c.Start(youtubeRequest(dir))
	assert.NoError(t, err)
	assert.Len(t, runner.starts, 2)
}

func TestController_RelaysInOrder(t *testing.T) {
	runner := &manualRunner{}
	sched := looptest.New()
	c := New(model.ServiceYouTube, runner, sched)
	rec := &recorder{}
	c.Subscribe(rec)

	_, err := c.Start(youtubeRequest(t.TempDir()))
	require.NoError(t, err)

	ch, _ := runner.last()
	go func() {
		for p := 1; p <= 50; p++ {
			ch <- model.Progress(p, "")
		}
		ch <- model.Finished("done")
		close(ch)
	}()

	events := waitEvents(t, sched, rec, 51)
	for i := 0; i < 50; i++ {
		assert.Equal(t, i+1, events[i].Percent)
	}
	assert.Equal(t, model.EventFinished, events[50].Kind)

	_, states := rec.snapshot()
	assert.Equal(t, model.TaskStateRunning, states[0])
	assert.Equal(t, model.TaskStateSucceeded, states[50])

	task, _ := c.Current()
	assert.Equal(t, 100, task.ProgressPercent)
	assert.False(t, task.FinishedAt.IsZero())
}

func TestController_Cancel(t *testing.T) {
	runner := &manualRunner{}
	sched := looptest.New()
	c := New(model.ServiceYouTube, runner, sched)
	rec := &recorder{}
	c.Subscribe(rec)

	assert.False(t, c.Cancel(), "idle controller has nothing to cancel")

	_, err := c.Start(youtubeRequest(t.TempDir()))
	require.NoError(t, err)
	ch, token := runner.last()

	assert.True(t, c.Cancel())
	assert.True(t, token.IsCancelled())
	assert.False(t, c.Cancel(), "second cancel is a no-op")

	task, _ := c.Current()
	assert.Equal(t, model.TaskStatePending, task.State, "state changes only through events")

	ch <- model.Cancelled("Cancelled.")
	close(ch)
	waitEvents(t, sched, rec, 1)

	task, _ = c.Current()
	assert.Equal(t, model.TaskStateCancelled, task.State)
	assert.False(t, c.Cancel(), "terminal task cannot be cancelled")
}

func TestController_EventsAfterTerminalAreDropped(t *testing.T) {
	runner := &manualRunner{}
	sched := looptest.New()
	c := New(model.ServiceYouTube, runner, sched)
	rec := &recorder{}
	c.Subscribe(rec)

	_, err := c.Start(youtubeRequest(t.TempDir()))
	require.NoError(t, err)
	ch, _ := runner.last()
	ch <- model.Failed("boom")
	ch <- model.Progress(90, "late")
	close(ch)

	waitEvents(t, sched, rec, 1)
	time.Sleep(20 * time.Millisecond)
	sched.Flush()

	events, _ := rec.snapshot()
	assert.Equal(t, []model.ProgressEvent{model.Failed("boom")}, events)
}

func TestController_PlaylistRewrite(t *testing.T) {
	dir := t.TempDir()
	playlist := "https://www.youtube.com/watch?v=dQw4w9WgXcQ&list=PL123"

	runner := &manualRunner{}
	c := New(model.ServiceYouTube, runner, looptest.New())
	_, err := c.Start(Request{Source: playlist, OutputDir: dir})
	require.NoError(t, err)
	assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", runner.starts[0].Source)
	assert.False(t, runner.starts[0].Playlist)
	assert.Equal(t, model.FormatVideo, runner.starts[0].Format)

	runner2 := &manualRunner{}
	c2 := New(model.ServiceYouTube, runner2, looptest.New())
	_, err = c2.Start(Request{Source: playlist, OutputDir: dir, WholePlaylist: true})
	require.NoError(t, err)
	assert.Equal(t, playlist, runner2.starts[0].Source)
	assert.True(t, runner2.starts[0].Playlist)
}

type timeoutEngine struct{}

func (timeoutEngine) Fetch(_ context.Context, _ download.FetchRequest, hook download.HookFunc) error {
	if err := hook(download.FetchProgress{DownloadedBytes: 50, TotalBytes: 100}); err != nil {
		return err
	}
	return errors.New("NetworkTimeout")
}

func TestController_WithWorkerFailure(t *testing.T) {
	sched := looptest.New()
	w := download.NewWorker(timeoutEngine{})
	c := New(model.ServiceYouTube, w, sched)
	rec := &recorder{}
	c.Subscribe(rec)

	_, err := c.Start(youtubeRequest(t.TempDir()))
	require.NoError(t, err)

	events := waitEvents(t, sched, rec, 2)
	require.Len(t, events, 2)
	assert.Equal(t, model.EventProgress, events[0].Kind)
	assert.Equal(t, 50, events[0].Percent)
	assert.Equal(t, model.Failed("NetworkTimeout"), events[1])

	task, _ := c.Current()
	assert.Equal(t, model.TaskStateFailed, task.State)
	assert.Equal(t, "NetworkTimeout", task.TerminalError)
	assert.False(t, c.Busy())
}

type emptyTorrentService struct{}

func (emptyTorrentService) Submit(context.Context, string, string) error { return nil }
func (emptyTorrentService) ListActive(context.Context) ([]torrent.Entry, error) {
	return nil, nil
}
func (emptyTorrentService) Query(context.Context, string) (torrent.Status, error) {
	return torrent.Status{}, torrent.ErrUnknownHandle
}
func (emptyTorrentService) StopTracking(context.Context, string, bool) error { return nil }

func TestController_WithCoordinatorNoTorrents(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "file.torrent")
	require.NoError(t, os.WriteFile(source, []byte("d4:infoe"), 0644))

	sched := looptest.New()
	coord := torrent.NewCoordinator(emptyTorrentService{}, sched, torrent.Config{}, nil)
	c := New(model.ServiceTorrent, coord, sched)
	rec := &recorder{}
	c.Subscribe(rec)

	_, err := c.Start(Request{Source: source, OutputDir: dir})
	require.NoError(t, err)

	sched.Flush()
	sched.Advance(torrent.DefaultDiscoveryDelay)
	events := waitEvents(t, sched, rec, 1)

	assert.Equal(t, []model.ProgressEvent{model.Failed(torrent.MsgNoTorrents)}, events)
	assert.Zero(t, sched.PeriodicCreated())
	assert.False(t, c.Busy())
}
