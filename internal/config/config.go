package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/ytget/media-toolkit/internal/model"
)

// TorrentBackend selects the torrent Service implementation
type TorrentBackend string

const (
	BackendQBittorrent TorrentBackend = "qbittorrent"
	BackendEmbedded    TorrentBackend = "embedded"
)

// Config is the explicit configuration handed to every controller at
// construction. Nothing in the download core computes paths on its own.
type Config struct {
	OutputRoot  string `envconfig:"OUTPUT_ROOT"`
	YouTubeDir  string `envconfig:"YOUTUBE_DIR" default:"Downloads From YouTube"`
	TikTokDir   string `envconfig:"TIKTOK_DIR" default:"Downloads From TikTok"`
	TorrentDir  string `envconfig:"TORRENT_DIR" default:"MyTorrents"`
	CompressDir string `envconfig:"COMPRESS_DIR" default:"Compressed"`

	TorrentBackend    TorrentBackend `envconfig:"TORRENT_BACKEND" default:"qbittorrent"`
	TorrentEndpoint   string         `envconfig:"TORRENT_ENDPOINT" default:"http://localhost:8080/"`
	TorrentUsername   string         `envconfig:"TORRENT_USERNAME" default:"admin"`
	TorrentPassword   string         `envconfig:"TORRENT_PASSWORD" default:"adminadmin"`
	TorrentListenPort int            `envconfig:"TORRENT_LISTEN_PORT" default:"42069"`
	UploadLimit       int64          `envconfig:"TORRENT_UPLOAD_LIMIT" default:"0"`
	DownloadLimit     int64          `envconfig:"TORRENT_DOWNLOAD_LIMIT" default:"0"`

	PollInterval     time.Duration `envconfig:"POLL_INTERVAL" default:"1200ms"`
	DiscoveryDelay   time.Duration `envconfig:"DISCOVERY_DELAY" default:"1600ms"`
	QueryTimeout     time.Duration `envconfig:"QUERY_TIMEOUT" default:"5s"`
	ProgressInterval time.Duration `envconfig:"PROGRESS_INTERVAL" default:"500ms"`

	CompressWorkers int `envconfig:"COMPRESS_WORKERS" default:"2"`

	DataDir     string `envconfig:"DATA_DIR"`
	MetricsAddr string `envconfig:"METRICS_ADDR"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
}

// Validate checks the configuration for invalid or missing values.
// Returns an error describing the first invalid setting found.
func (c *Config) Validate() error {
	if c.OutputRoot == "" {
		return fmt.Errorf("output root cannot be empty")
	}
	if !filepath.IsAbs(c.OutputRoot) {
		return fmt.Errorf("output root must be absolute: %s", c.OutputRoot)
	}
	for name, dir := range map[string]string{
		"youtube": c.YouTubeDir, "tiktok": c.TikTokDir, "torrent": c.TorrentDir, "compress": c.CompressDir,
	} {
		if dir == "" {
			return fmt.Errorf("%s directory cannot be empty", name)
		}
	}

	switch c.TorrentBackend {
	case BackendQBittorrent:
		if c.TorrentEndpoint == "" {
			return fmt.Errorf("torrent endpoint cannot be empty")
		}
	case BackendEmbedded:
	default:
		return fmt.Errorf("unknown torrent backend: %q", c.TorrentBackend)
	}

	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive: %s", c.PollInterval)
	}
	if c.DiscoveryDelay <= 0 {
		return fmt.Errorf("discovery delay must be positive: %s", c.DiscoveryDelay)
	}
	if c.QueryTimeout <= 0 {
		return fmt.Errorf("query timeout must be positive: %s", c.QueryTimeout)
	}
	if c.CompressWorkers <= 0 {
		return fmt.Errorf("compress workers must be positive: %d", c.CompressWorkers)
	}
	if c.UploadLimit < 0 || c.DownloadLimit < 0 {
		return fmt.Errorf("rate limits cannot be negative")
	}
	return nil
}

// ServiceDir returns the output directory for a downloader tool
func (c *Config) ServiceDir(kind model.ServiceKind) string {
	switch kind {
	case model.ServiceYouTube:
		return c.resolve(c.YouTubeDir)
	case model.ServiceTikTok:
		return c.resolve(c.TikTokDir)
	case model.ServiceTorrent:
		return c.resolve(c.TorrentDir)
	default:
		return c.OutputRoot
	}
}

// CompressOutputDir returns where compressed files are written
func (c *Config) CompressOutputDir() string {
	return c.resolve(c.CompressDir)
}

// OutputDirs lists every directory the entry points create at startup
func (c *Config) OutputDirs() []string {
	return []string{
		c.ServiceDir(model.ServiceYouTube),
		c.ServiceDir(model.ServiceTikTok),
		c.ServiceDir(model.ServiceTorrent),
		c.CompressOutputDir(),
	}
}

// HistoryPath is the SQLite database holding task history
func (c *Config) HistoryPath() string {
	return filepath.Join(c.DataDir, "history.db")
}

// TorrentStateDir is where the embedded client keeps its metadata
func (c *Config) TorrentStateDir() string {
	return filepath.Join(c.DataDir, "torrent")
}

func (c *Config) resolve(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(c.OutputRoot, dir)
}
