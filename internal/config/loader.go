package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/ytget/media-toolkit/internal/platform"
)

// EnvPrefix prefixes every environment variable, e.g. MTK_OUTPUT_ROOT
const EnvPrefix = "MTK"

// AppDirName names the per-user data directory
const AppDirName = "media-toolkit"

// Load reads an optional .env file, then environment variables, fills
// platform defaults and validates the result
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read env file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := fillDefaults(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func fillDefaults(cfg *Config) error {
	if cfg.OutputRoot == "" {
		dir, err := platform.GetHomeDownloadsDir()
		if err != nil {
			return fmt.Errorf("resolve output root: %w", err)
		}
		cfg.OutputRoot = dir
	}
	if cfg.DataDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return fmt.Errorf("resolve data dir: %w", err)
		}
		cfg.DataDir = filepath.Join(base, AppDirName)
	}
	return nil
}

// EnsureDirs creates the output and data directories. Entry points call it
// before starting any controller.
func EnsureDirs(cfg *Config) error {
	dirs := append(cfg.OutputDirs(), cfg.DataDir)
	for _, dir := range dirs {
		if err := platform.CreateDirectoryIfNotExists(dir); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Debug("directory created or verified", "path", dir)
	}
	return nil
}

// SetupLogger builds the process logger on stderr and installs it as the
// slog default
func SetupLogger(cfg *Config) *slog.Logger {
	logger := NewLogger(cfg, os.Stderr)
	slog.SetDefault(logger)
	return logger
}

// NewLogger builds a logger writing to w. Supports "json" or "text" formats
// and levels debug, info, warn, error.
func NewLogger(cfg *Config, w io.Writer) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}
