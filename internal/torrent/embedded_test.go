package torrent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEmbedded(t *testing.T) *Embedded {
	t.Helper()
	e, err := NewEmbedded(EmbeddedConfig{DataDir: t.TempDir(), NoUpload: true, NoDHT: true}, nil)
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

func TestEmbedded_MagnetLifecycle(t *testing.T) {
	e := newEmbedded(t)
	ctx := context.Background()
	const hash = "c9e15763f722f23e98a29decdfae341b98d53056"

	require.NoError(t, e.Submit(ctx, "magnet:?xt=urn:btih:"+hash+"&dn=test", t.TempDir()))

	entries, err := e.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, hash, entries[0].Handle)
	assert.Zero(t, entries[0].Progress)

	st, err := e.Query(ctx, hash)
	require.NoError(t, err)
	assert.Zero(t, st.Progress)

	require.NoError(t, e.StopTracking(ctx, hash, true))

	_, err = e.Query(ctx, hash)
	assert.True(t, errors.Is(err, ErrUnknownHandle))
	assert.True(t, errors.Is(e.StopTracking(ctx, hash, false), ErrUnknownHandle))
}

func TestEmbedded_RejectsMissingTorrentFile(t *testing.T) {
	e := newEmbedded(t)
	ctx := context.Background()

	assert.Error(t, e.Submit(ctx, "/does/not/exist.torrent", t.TempDir()))
}
