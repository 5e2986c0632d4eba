package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/ytget/media-toolkit/internal/config"
	"github.com/ytget/media-toolkit/internal/controller"
	"github.com/ytget/media-toolkit/internal/convert"
	"github.com/ytget/media-toolkit/internal/download"
	"github.com/ytget/media-toolkit/internal/history"
	"github.com/ytget/media-toolkit/internal/loop"
	"github.com/ytget/media-toolkit/internal/metrics"
	"github.com/ytget/media-toolkit/internal/model"
	"github.com/ytget/media-toolkit/internal/torrent"
)

// Toolkit holds one controller per downloader tool plus the shared services
type Toolkit struct {
	Config      *config.Config
	Controllers map[model.ServiceKind]*controller.Controller
	History     *history.Store
	Metrics     *metrics.Collector
	Registry    *prometheus.Registry
	Engine      *download.YtDlpEngine

	logger  *slog.Logger
	closers []func() error
}

// Options tweaks how the Toolkit is assembled
type Options struct {
	// Torrent overrides the backend selected by Config
	Torrent torrent.Service
	// Fetch overrides the yt-dlp engine
	Fetch download.FetchEngine
	// NoHistory skips opening the history database
	NoHistory bool
}

// New builds the Toolkit. Every controller posts its events through sched.
func New(cfg *config.Config, sched loop.Scheduler, logger *slog.Logger, opts Options) (*Toolkit, error) {
	if logger == nil {
		logger = slog.Default()
	}

	tk := &Toolkit{
		Config:      cfg,
		Controllers: make(map[model.ServiceKind]*controller.Controller),
		Registry:    prometheus.NewRegistry(),
		logger:      logger,
	}
	tk.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	tk.Metrics = metrics.NewCollector(tk.Registry)

	fetch := opts.Fetch
	if fetch == nil {
		tk.Engine = download.NewYtDlpEngine(cfg.ProgressInterval, logger.With("component", "ytdlp"))
		fetch = tk.Engine
	}

	service := opts.Torrent
	if service == nil {
		var err error
		service, err = tk.torrentBackend()
		if err != nil {
			tk.Close()
			return nil, err
		}
	}

	if !opts.NoHistory {
		store, err := history.Open(cfg.HistoryPath())
		if err != nil {
			tk.Close()
			return nil, fmt.Errorf("open history: %w", err)
		}
		tk.History = store
		tk.closers = append(tk.closers, store.Close)
	}

	worker := download.NewWorker(fetch, download.WithLogger(logger.With("component", "worker")))
	coordinator := torrent.NewCoordinator(service, sched, torrent.Config{
		DiscoveryDelay: cfg.DiscoveryDelay,
		PollInterval:   cfg.PollInterval,
		QueryTimeout:   cfg.QueryTimeout,
	}, logger.With("component", "coordinator"))

	runners := map[model.ServiceKind]controller.Runner{
		model.ServiceYouTube: worker,
		model.ServiceTikTok:  worker,
		model.ServiceTorrent: coordinator,
	}
	for kind, runner := range runners {
		c := controller.New(kind, runner, sched, controller.WithLogger(logger))
		c.Subscribe(tk.Metrics)
		if tk.History != nil {
			c.Subscribe(history.NewRecorder(tk.History, logger))
		}
		tk.Controllers[kind] = c
	}

	return tk, nil
}

func (tk *Toolkit) torrentBackend() (torrent.Service, error) {
	cfg := tk.Config
	switch cfg.TorrentBackend {
	case config.BackendEmbedded:
		e, err := torrent.NewEmbedded(torrent.EmbeddedConfig{
			DataDir:       cfg.TorrentStateDir(),
			ListenPort:    cfg.TorrentListenPort,
			UploadLimit:   cfg.UploadLimit,
			DownloadLimit: cfg.DownloadLimit,
		}, tk.logger.With("component", "torrent"))
		if err != nil {
			return nil, fmt.Errorf("start embedded torrent client: %w", err)
		}
		tk.closers = append(tk.closers, func() error { e.Close(); return nil })
		return e, nil
	default:
		q, err := torrent.NewQBittorrent(cfg.TorrentEndpoint, cfg.TorrentUsername, cfg.TorrentPassword,
			cfg.QueryTimeout, tk.logger.With("component", "qbittorrent"))
		if err != nil {
			return nil, fmt.Errorf("create qbittorrent client: %w", err)
		}
		return q, nil
	}
}

// Controller returns the controller for kind
func (tk *Toolkit) Controller(kind model.ServiceKind) *controller.Controller {
	return tk.Controllers[kind]
}

// Request builds a start request targeting the configured directory for kind
func (tk *Toolkit) Request(kind model.ServiceKind, source string, format model.Format, wholePlaylist bool) controller.Request {
	return controller.Request{
		Source:        source,
		Format:        format,
		OutputDir:     tk.Config.ServiceDir(kind),
		WholePlaylist: wholePlaylist,
	}
}

// Compressor returns the video compression utility
func (tk *Toolkit) Compressor(onProgress convert.ProgressFunc) *convert.Compressor {
	opts := []convert.CompressorOption{convert.WithLogger(tk.logger.With("component", "compress"))}
	if onProgress != nil {
		opts = append(opts, convert.WithProgress(onProgress))
	}
	return convert.NewCompressor(convert.NewFFmpeg(), tk.Config.CompressWorkers, opts...)
}

// InstallEngine makes sure the yt-dlp binary is available
func (tk *Toolkit) InstallEngine(ctx context.Context) error {
	if tk.Engine == nil {
		return nil
	}
	return tk.Engine.Install(ctx)
}

// ServeMetrics runs the metrics endpoint until ctx ends. It returns nil
// immediately when no address is configured.
func (tk *Toolkit) ServeMetrics(ctx context.Context) error {
	if tk.Config.MetricsAddr == "" {
		return nil
	}
	var source metrics.HistorySource
	if tk.History != nil {
		source = tk.History
	}
	router := metrics.NewRouter(tk.Registry, source, tk.logger)
	return metrics.Serve(ctx, tk.Config.MetricsAddr, router, tk.logger)
}

// CancelAll requests cancellation on every busy controller
func (tk *Toolkit) CancelAll() {
	for kind, c := range tk.Controllers {
		if c.Cancel() {
			tk.logger.Info("cancel requested on shutdown", "service", kind)
		}
	}
}

// Close releases the history database and torrent client
func (tk *Toolkit) Close() error {
	var errs []error
	for i := len(tk.closers) - 1; i >= 0; i-- {
		if err := tk.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	tk.closers = nil
	return errors.Join(errs...)
}
