package download

import (
	"context"
	"errors"
	"testing"

	"github.com/lrstanley/go-ytdlp"
)

func TestProgressFromUpdate(t *testing.T) {
	update := ytdlp.ProgressUpdate{
		Status:          ytdlp.ProgressStatusDownloading,
		TotalBytes:      200,
		DownloadedBytes: 50,
		Filename:        "/d/clip.mp4",
	}

	p := progressFromUpdate(&update)
	if p.Status != StatusDownloading {
		t.Errorf("Expected downloading status, got %s", p.Status)
	}
	if p.TotalBytes != 200 || p.DownloadedBytes != 50 {
		t.Errorf("Unexpected byte counts %d/%d", p.DownloadedBytes, p.TotalBytes)
	}
	if p.Filename != "/d/clip.mp4" {
		t.Errorf("Expected filename to be carried, got %s", p.Filename)
	}
	if p.PercentString != "" {
		t.Errorf("Percent string should be empty when byte totals are known, got %q", p.PercentString)
	}

	finished := ytdlp.ProgressUpdate{Status: ytdlp.ProgressStatusFinished}
	if got := progressFromUpdate(&finished).Status; got != StatusFinished {
		t.Errorf("Expected finished status, got %s", got)
	}
}

func TestNewYtDlpEngineDefaults(t *testing.T) {
	e := NewYtDlpEngine(0, nil)
	if e.interval != DefaultProgressInterval {
		t.Errorf("Expected default interval %v, got %v", DefaultProgressInterval, e.interval)
	}
	if e.logger == nil {
		t.Error("Logger should default to a discard logger")
	}
}

func TestProgressFromUpdatePlaylistPosition(t *testing.T) {
	index, count := 4, 9
	update := ytdlp.ProgressUpdate{
		Status: ytdlp.ProgressStatusDownloading,
		Info:   &ytdlp.ExtractedInfo{PlaylistIndex: &index, PlaylistCount: &count},
	}

	p := progressFromUpdate(&update)
	if p.Item != 4 || p.Items != 9 {
		t.Errorf("Expected item 4/9, got %d/%d", p.Item, p.Items)
	}
}

func TestPlaylistItems(t *testing.T) {
	const playlistURL = "https://www.youtube.com/playlist?list=PL123"

	tests := []struct {
		name     string
		req      FetchRequest
		size     int
		sizeErr  error
		expected int
		lookedUp string
	}{
		{"single video", FetchRequest{Source: playlistURL}, 7, nil, 0, ""},
		{"no list parameter", FetchRequest{Source: "https://youtu.be/abc", Playlist: true}, 7, nil, 0, ""},
		{"empty list id", FetchRequest{Source: "https://www.youtube.com/watch?v=a&list=", Playlist: true}, 7, nil, 0, ""},
		{"lookup failure", FetchRequest{Source: playlistURL, Playlist: true}, 0, errors.New("quota"), 0, "PL123"},
		{"resolved", FetchRequest{Source: playlistURL + "&index=2", Playlist: true}, 7, nil, 7, "PL123"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var asked string
			e := NewYtDlpEngine(0, nil)
			e.playlistSize = func(_ context.Context, id string) (int, error) {
				asked = id
				return test.size, test.sizeErr
			}

			if got := e.playlistItems(context.Background(), test.req); got != test.expected {
				t.Errorf("playlistItems() = %d, expected %d", got, test.expected)
			}
			if asked != test.lookedUp {
				t.Errorf("Looked up playlist %q, expected %q", asked, test.lookedUp)
			}
		})
	}
}
