package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/ytget/media-toolkit/internal/app"
	"github.com/ytget/media-toolkit/internal/config"
	"github.com/ytget/media-toolkit/internal/controller"
	"github.com/ytget/media-toolkit/internal/convert"
	"github.com/ytget/media-toolkit/internal/history"
	"github.com/ytget/media-toolkit/internal/loop"
	"github.com/ytget/media-toolkit/internal/model"
	"github.com/ytget/media-toolkit/internal/tui"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const (
	exitOK        = 0
	exitFailed    = 1
	exitUsage     = 2
	exitCancelled = 130

	logFileName  = "mtk.log"
	shutdownWait = 10 * time.Second
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(exitUsage)
	}

	var code int
	switch os.Args[1] {
	case "youtube":
		code = handleDownload(model.ServiceYouTube, os.Args[2:])
	case "tiktok":
		code = handleDownload(model.ServiceTikTok, os.Args[2:])
	case "torrent":
		code = handleDownload(model.ServiceTorrent, os.Args[2:])
	case "compress":
		code = handleCompress(os.Args[2:])
	case "history":
		code = handleHistory(os.Args[2:])
	case "serve":
		code = handleServe(os.Args[2:])
	case "install":
		code = handleInstall()
	case "version":
		fmt.Printf("mtk %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		code = exitUsage
	}
	os.Exit(code)
}

func printUsage() {
	fmt.Println(`Media Toolkit (mtk) ` + version + `

Usage: mtk <command> [options] [args]

Commands:
  youtube [options] <url>        Download a YouTube video or playlist
  tiktok [options] <url>         Download a TikTok video
  torrent [options] <magnet|file> Download a torrent through the configured backend
  compress [options] <files...>  Compress local videos to H.264 MP4
  history [options]              List recent tasks
  serve [options]                Serve /metrics and /tasks until interrupted
  install                        Download the yt-dlp binary
  version                        Show version
  help                           Show this help

Download options:
  -format <audio|video|video_only>  Output format (youtube, tiktok)
  -playlist                         Download the whole playlist (youtube)
  -out <dir>                        Override the output directory
  -plain                            Print events instead of the progress bar

Examples:
  mtk youtube -format audio https://www.youtube.com/watch?v=xxx
  mtk youtube -playlist "https://www.youtube.com/watch?v=xxx&list=yyy"
  mtk torrent "magnet:?xt=urn:btih:..."
  mtk compress -out ~/Videos/small *.mov
  mtk history -limit 10`)
}

// loadConfig reads the configuration and creates the output directories
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := config.EnsureDirs(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func handleDownload(kind model.ServiceKind, args []string) int {
	fs := flag.NewFlagSet(string(kind), flag.ExitOnError)
	format := fs.String("format", string(config.DefaultFormat), "Output format")
	playlist := fs.Bool("playlist", false, "Download the whole playlist")
	out := fs.String("out", "", "Output directory (default from configuration)")
	plain := fs.Bool("plain", false, "Print events instead of the progress bar")
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Error: %s expects exactly one source\n", kind)
		return exitUsage
	}
	source := fs.Arg(0)
	if kind == model.ServiceTorrent {
		*format = ""
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitFailed
	}

	// the progress bar owns the terminal, logs go to a file instead
	var logger *slog.Logger
	if *plain {
		logger = config.SetupLogger(cfg)
	} else {
		f, err := os.OpenFile(filepath.Join(cfg.DataDir, logFileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: open log file: %v\n", err)
			return exitFailed
		}
		defer f.Close()
		logger = config.NewLogger(cfg, f)
		slog.SetDefault(logger)
	}

	ctx, stop := signalContext()
	defer stop()

	l := loop.New()
	tk, err := app.New(cfg, l.Scheduler(), logger, app.Options{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitFailed
	}
	defer tk.Close()

	if kind != model.ServiceTorrent {
		if err := tk.InstallEngine(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: yt-dlp is not available: %v\n", err)
			return exitFailed
		}
	}
	go func() {
		if err := tk.ServeMetrics(ctx); err != nil {
			logger.Error("metrics server failed", "error", err)
		}
	}()

	ctrl := tk.Controller(kind)
	req := tk.Request(kind, source, model.Format(*format), *playlist)
	if *out != "" {
		abs, err := filepath.Abs(*out)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return exitUsage
		}
		req.OutputDir = abs
	}

	if *plain {
		return runPlain(ctx, stop, ctrl, l, req)
	}
	return runInteractive(ctx, stop, ctrl, l, req)
}

func start(ctrl *controller.Controller, req controller.Request) (string, bool) {
	id, err := ctrl.Start(req)
	if err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			fmt.Fprintf(os.Stderr, "Invalid request: %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return "", false
	}
	return id, true
}

// cancelOnSignal cancels the task on the first signal. Default signal
// handling is restored first, so a second Ctrl+C kills the process.
func cancelOnSignal(sigCtx context.Context, restore func(), cancel func() bool, done <-chan struct{}) {
	select {
	case <-sigCtx.Done():
		restore()
		fmt.Fprintln(os.Stderr, "Stopping, waiting for cleanup... (press Ctrl+C again to quit)")
		cancel()
	case <-done:
	}
}

// runPlain drives the loop on the main goroutine and prints every event
func runPlain(ctx context.Context, stop context.CancelFunc, ctrl *controller.Controller, l *loop.Loop, req controller.Request) int {
	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()

	var final model.DownloadTask
	ctrl.Subscribe(controller.ObserverFunc(func(task model.DownloadTask, ev model.ProgressEvent) {
		fmt.Printf("[%s] %3d%% %s\n", task.GetElapsedString(time.Now()), task.ProgressPercent, ev.Message)
		if ev.IsTerminal() {
			final = task
			stopLoop()
		}
	}))

	id, ok := start(ctrl, req)
	if !ok {
		return exitUsage
	}
	fmt.Printf("%s %s\n", id, controller.MsgStarting)

	go cancelOnSignal(ctx, stop, ctrl.Cancel, loopCtx.Done())

	_ = l.Run(loopCtx)
	return exitCode(final.State)
}

// runInteractive renders the task with the progress bar model
func runInteractive(ctx context.Context, stop context.CancelFunc, ctrl *controller.Controller, l *loop.Loop, req controller.Request) int {
	if _, ok := start(ctrl, req); !ok {
		return exitUsage
	}

	p := tea.NewProgram(tui.NewModel(ctrl, l), tea.WithContext(ctx))
	result, err := p.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}

	m, ok := result.(tui.Model)
	if ok && m.Task().State.IsFinished() {
		return exitCode(m.Task().State)
	}

	// left before the task ended, let the cleanup finish before exiting
	stop()
	if ok && m.Interrupted() {
		fmt.Fprintln(os.Stderr, "Stopping, waiting for cleanup... (press Ctrl+C again to quit)")
	}
	ctrl.Cancel()
	if task, ok := waitTerminal(ctrl, l); ok {
		return exitCode(task.State)
	}
	return exitCancelled
}

// waitTerminal pumps the loop until the controller frees its slot
func waitTerminal(ctrl *controller.Controller, l *loop.Loop) (model.DownloadTask, bool) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	deadline := time.After(shutdownWait)

	for ctrl.Busy() {
		select {
		case <-l.Ready():
		case <-ticker.C:
		case <-deadline:
			return model.DownloadTask{}, false
		}
		l.RunPending()
	}
	return ctrl.Current()
}

func exitCode(state model.TaskState) int {
	switch state {
	case model.TaskStateSucceeded:
		return exitOK
	case model.TaskStateCancelled:
		return exitCancelled
	default:
		return exitFailed
	}
}

func handleCompress(args []string) int {
	fs := flag.NewFlagSet("compress", flag.ExitOnError)
	out := fs.String("out", "", "Output directory (default from configuration)")
	workers := fs.Int("workers", 0, "Parallel ffmpeg processes (default from configuration)")
	_ = fs.Parse(args)

	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one input file is required")
		return exitUsage
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitFailed
	}
	logger := config.SetupLogger(cfg)

	outputDir := cfg.CompressOutputDir()
	if *out != "" {
		outputDir = *out
	}
	n := cfg.CompressWorkers
	if *workers > 0 {
		n = *workers
	}

	ctx, stop := signalContext()
	defer stop()

	c := convert.NewCompressor(convert.NewFFmpeg(), n,
		convert.WithLogger(logger.With("component", "compress")),
		convert.WithProgress(func(input string, percent int) {
			fmt.Printf("%3d%% %s\n", percent, filepath.Base(input))
		}),
	)

	result, err := c.Process(ctx, fs.Args(), outputDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, context.Canceled) {
			return exitCancelled
		}
		return exitFailed
	}

	for _, output := range result.Outputs {
		fmt.Printf("ok   %s\n", output)
	}
	for input, err := range result.Errors {
		fmt.Printf("fail %s: %v\n", input, err)
	}
	fmt.Printf("Compressed: %d, failed: %d\n", result.Succeeded, result.Failed)
	if result.Failed > 0 {
		return exitFailed
	}
	return exitOK
}

func handleHistory(args []string) int {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	limit := fs.Int("limit", 20, "Number of tasks to show")
	prune := fs.Duration("prune", 0, "Delete tasks started longer ago than this, e.g. 720h")
	_ = fs.Parse(args)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitFailed
	}

	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitFailed
	}
	defer store.Close()

	ctx, stop := signalContext()
	defer stop()

	if *prune > 0 {
		n, err := store.Prune(ctx, time.Now().Add(-*prune))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return exitFailed
		}
		fmt.Printf("Removed %d tasks\n", n)
		return exitOK
	}

	tasks, err := store.Recent(ctx, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitFailed
	}
	if len(tasks) == 0 {
		fmt.Println("No tasks recorded yet")
		return exitOK
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tSERVICE\tSTATE\tPROGRESS\tSOURCE")
	for _, task := range tasks {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d%%\t%s\n",
			humanize.Time(task.StartedAt), task.Service, task.State, task.ProgressPercent, task.GetDisplayTitle())
	}
	_ = w.Flush()
	return exitOK
}

func handleServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", "", "Listen address (default from configuration, or :9090)")
	_ = fs.Parse(args)

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitFailed
	}
	switch {
	case *addr != "":
		cfg.MetricsAddr = *addr
	case cfg.MetricsAddr == "":
		cfg.MetricsAddr = ":9090"
	}
	logger := config.SetupLogger(cfg)

	ctx, stop := signalContext()
	defer stop()

	l := loop.New()
	tk, err := app.New(cfg, l.Scheduler(), logger, app.Options{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitFailed
	}
	defer tk.Close()

	logger.Info("serving", "addr", cfg.MetricsAddr)
	if err := tk.ServeMetrics(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitFailed
	}
	return exitOK
}

func handleInstall() int {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitFailed
	}
	logger := config.SetupLogger(cfg)

	ctx, stop := signalContext()
	defer stop()

	l := loop.New()
	tk, err := app.New(cfg, l.Scheduler(), logger, app.Options{NoHistory: true})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitFailed
	}
	defer tk.Close()

	if err := tk.InstallEngine(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitFailed
	}
	fmt.Println("yt-dlp is ready")
	return exitOK
}
