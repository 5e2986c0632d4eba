package model

import (
	"testing"
	"time"
)

func TestDownloadTask_Apply(t *testing.T) {
	now := time.Now()
	task := &DownloadTask{ID: "task-1", State: TaskStatePending}

	if !task.Apply(Progress(40, "Downloading..."), now) {
		t.Fatal("Expected first progress event to be applied")
	}
	if task.State != TaskStateRunning {
		t.Errorf("Expected state Running, got %s", task.State)
	}
	if task.ProgressPercent != 40 {
		t.Errorf("Expected percent 40, got %d", task.ProgressPercent)
	}

	ev := Progress(55, "Downloading...")
	ev.Artifact = "/tmp/out/song.webm.part"
	task.Apply(ev, now)
	if task.PartialArtifactPath != ev.Artifact {
		t.Errorf("Expected artifact %s, got %s", ev.Artifact, task.PartialArtifactPath)
	}

	if !task.Apply(Failed("NetworkTimeout"), now) {
		t.Fatal("Expected failure to be applied")
	}
	if task.State != TaskStateFailed || task.TerminalError != "NetworkTimeout" {
		t.Errorf("Expected Failed/NetworkTimeout, got %s/%s", task.State, task.TerminalError)
	}
	if task.FinishedAt.IsZero() {
		t.Error("FinishedAt should be set on terminal event")
	}

	if task.Apply(Finished("done"), now) {
		t.Error("Terminal state must not accept another event")
	}
	if task.State != TaskStateFailed {
		t.Errorf("State changed after terminal event: %s", task.State)
	}
}

func TestDownloadTask_ApplyFinishedSetsFullPercent(t *testing.T) {
	task := &DownloadTask{State: TaskStateRunning, ProgressPercent: 97}
	task.Apply(Finished("Download finished and stopped seeding."), time.Now())

	if task.ProgressPercent != 100 {
		t.Errorf("Expected percent 100, got %d", task.ProgressPercent)
	}
	if task.TerminalError != "" {
		t.Errorf("Succeeded task should have no terminal error, got %q", task.TerminalError)
	}
}

func TestDownloadTask_GetElapsedString(t *testing.T) {
	start := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		elapsed  time.Duration
		expected string
	}{
		{30 * time.Second, "00:30"},
		{90 * time.Second, "01:30"},
		{time.Hour, "01:00:00"},
		{time.Hour + time.Minute + time.Second, "01:01:01"},
	}

	for _, test := range tests {
		task := &DownloadTask{StartedAt: start}
		result := task.GetElapsedString(start.Add(test.elapsed))
		if result != test.expected {
			t.Errorf("GetElapsedString() after %v = %s, expected %s", test.elapsed, result, test.expected)
		}
	}

	empty := &DownloadTask{}
	if got := empty.GetElapsedString(start); got != "—" {
		t.Errorf("Expected placeholder for unstarted task, got %s", got)
	}
}

func TestDownloadTask_GetDisplayTitle(t *testing.T) {
	tests := []struct {
		task     DownloadTask
		expected string
	}{
		{DownloadTask{Source: "https://youtube.com/watch?v=123"}, "https://youtube.com/watch?v=123"},
		{DownloadTask{Source: "https://youtube.com/watch?v=123", PartialArtifactPath: "/d/My_Song.webm.part"}, "My_Song"},
		{DownloadTask{Service: ServiceTorrent, Source: "/home/u/ubuntu.torrent"}, "ubuntu.torrent"},
		{DownloadTask{Service: ServiceTorrent, Source: "magnet:?xt=urn:btih:abc"}, "magnet:?xt=urn:btih:abc"},
	}

	for _, test := range tests {
		result := test.task.GetDisplayTitle()
		if result != test.expected {
			t.Errorf("GetDisplayTitle() = '%s', expected '%s'", result, test.expected)
		}
	}
}

func TestPartialPath(t *testing.T) {
	tests := []struct {
		in, expected string
	}{
		{"/d/video.mp4", "/d/video.mp4.part"},
		{"/d/video.mp4.part", "/d/video.mp4.part"},
		{"", ""},
	}

	for _, test := range tests {
		if got := PartialPath(test.in); got != test.expected {
			t.Errorf("PartialPath(%q) = %q, expected %q", test.in, got, test.expected)
		}
	}
}

func TestFormatsFor(t *testing.T) {
	if got := len(FormatsFor(ServiceYouTube)); got != 3 {
		t.Errorf("Expected 3 YouTube formats, got %d", got)
	}
	if got := len(FormatsFor(ServiceTikTok)); got != 2 {
		t.Errorf("Expected 2 TikTok formats, got %d", got)
	}
	if FormatsFor(ServiceTorrent) != nil {
		t.Error("Torrent tasks have no format choice")
	}
	if FormatAudio.Label() != "Audio (mp3)" {
		t.Errorf("Unexpected label %s", FormatAudio.Label())
	}
}
