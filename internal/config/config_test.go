package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/media-toolkit/internal/model"
)

func TestLoad_Defaults(t *testing.T) {
	root := t.TempDir()
	t.Setenv("MTK_OUTPUT_ROOT", root)
	t.Setenv("MTK_DATA_DIR", filepath.Join(root, "data"))

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, BackendQBittorrent, cfg.TorrentBackend)
	assert.Equal(t, "http://localhost:8080/", cfg.TorrentEndpoint)
	assert.Equal(t, 1200*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, 1600*time.Millisecond, cfg.DiscoveryDelay)
	assert.Equal(t, filepath.Join(root, "Downloads From YouTube"), cfg.ServiceDir(model.ServiceYouTube))
	assert.Equal(t, filepath.Join(root, "Downloads From TikTok"), cfg.ServiceDir(model.ServiceTikTok))
	assert.Equal(t, filepath.Join(root, "MyTorrents"), cfg.ServiceDir(model.ServiceTorrent))
	assert.Equal(t, filepath.Join(root, "data", "history.db"), cfg.HistoryPath())
}

func TestLoad_EnvFile(t *testing.T) {
	root := t.TempDir()
	envFile := filepath.Join(t.TempDir(), "test.env")
	content := strings.Join([]string{
		"MTK_OUTPUT_ROOT=" + root,
		"MTK_DATA_DIR=" + root,
		"MTK_TORRENT_BACKEND=embedded",
		"MTK_POLL_INTERVAL=2s",
		"MTK_TORRENT_DIR=/srv/torrents",
	}, "\n")
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0644))
	for _, k := range []string{"MTK_OUTPUT_ROOT", "MTK_DATA_DIR", "MTK_TORRENT_BACKEND", "MTK_POLL_INTERVAL", "MTK_TORRENT_DIR"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := Load(envFile)
	require.NoError(t, err)

	assert.Equal(t, BackendEmbedded, cfg.TorrentBackend)
	assert.Equal(t, 2*time.Second, cfg.PollInterval)
	assert.Equal(t, "/srv/torrents", cfg.ServiceDir(model.ServiceTorrent))
}

func TestLoad_InvalidBackend(t *testing.T) {
	t.Setenv("MTK_OUTPUT_ROOT", t.TempDir())
	t.Setenv("MTK_DATA_DIR", t.TempDir())
	t.Setenv("MTK_TORRENT_BACKEND", "transmission")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown torrent backend")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			OutputRoot: "/home/u/Downloads", YouTubeDir: "yt", TikTokDir: "tt", TorrentDir: "tor", CompressDir: "c",
			TorrentBackend: BackendQBittorrent, TorrentEndpoint: "http://localhost:8080/",
			PollInterval: time.Second, DiscoveryDelay: time.Second, QueryTimeout: time.Second, CompressWorkers: 1,
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"relative root", func(c *Config) { c.OutputRoot = "downloads" }},
		{"empty root", func(c *Config) { c.OutputRoot = "" }},
		{"empty endpoint", func(c *Config) { c.TorrentEndpoint = "" }},
		{"zero poll", func(c *Config) { c.PollInterval = 0 }},
		{"negative limit", func(c *Config) { c.UploadLimit = -1 }},
		{"no workers", func(c *Config) { c.CompressWorkers = 0 }},
		{"empty tiktok dir", func(c *Config) { c.TikTokDir = "" }},
	}

	base := valid()
	require.NoError(t, base.Validate())

	for _, test := range tests {
		cfg := valid()
		test.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", test.name)
		}
	}
}

func TestEnsureDirs(t *testing.T) {
	root := t.TempDir()
	cfg := &Config{OutputRoot: root, YouTubeDir: "yt", TikTokDir: "tt", TorrentDir: "tor", CompressDir: "c", DataDir: filepath.Join(root, "data")}

	require.NoError(t, EnsureDirs(cfg))
	for _, dir := range append(cfg.OutputDirs(), cfg.DataDir) {
		assert.DirExists(t, dir)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{LogLevel: "warn", LogFormat: "json"}, &buf)

	logger.Info("hidden")
	logger.Warn("shown", "task_id", "youtube-1")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"task_id":"youtube-1"`)
	assert.Contains(t, out, `"level":"WARN"`)
}
