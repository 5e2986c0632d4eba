package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/media-toolkit/internal/model"
)

func TestRecorder_WritesFirstAndTerminal(t *testing.T) {
	store := openTestStore(t)
	rec := NewRecorder(store, nil)
	ctx := context.Background()
	now := time.UnixMilli(1_700_000_000_000)

	task := sampleTask("youtube-1", now)
	task.State = model.TaskStatePending

	ev := model.Progress(10, "Downloading...")
	task.Apply(ev, now)
	rec.OnEvent(task, ev)

	got, err := store.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.ProgressPercent)

	// intermediate progress is not persisted
	ev = model.Progress(60, "Downloading...")
	task.Apply(ev, now)
	rec.OnEvent(task, ev)

	got, err = store.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.ProgressPercent)

	ev = model.Finished("Download finished!")
	task.Apply(ev, now.Add(time.Second))
	rec.OnEvent(task, ev)

	got, err = store.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TaskStateSucceeded, got.State)
	assert.Equal(t, 100, got.ProgressPercent)
	assert.Empty(t, rec.seen)
}

func TestRecorder_TerminalOnly(t *testing.T) {
	store := openTestStore(t)
	rec := NewRecorder(store, nil)
	now := time.UnixMilli(1_700_000_000_000)

	task := sampleTask("torrent-1", now)
	task.Service = model.ServiceTorrent
	ev := model.Failed("No torrents found")
	task.Apply(ev, now)
	rec.OnEvent(task, ev)

	got, err := store.Get(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TaskStateFailed, got.State)
	assert.Equal(t, "No torrents found", got.TerminalError)
}
