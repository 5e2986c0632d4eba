package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"

	"github.com/ytget/media-toolkit/internal/app"
	"github.com/ytget/media-toolkit/internal/config"
	"github.com/ytget/media-toolkit/internal/loop"
	"github.com/ytget/media-toolkit/internal/ui"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const (
	AppID   = "com.ytget.media-toolkit"
	AppName = "Media Toolkit"

	WindowWidth  = 820
	WindowHeight = 560
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	myApp := fyneapp.NewWithID(AppID)
	myApp.Settings().SetTheme(ui.NewCompactTheme())

	// user choices from the settings dialog win over env defaults
	config.NewSettings(myApp).Apply(cfg)

	logger := config.SetupLogger(cfg)
	logger.Info("starting", "app", AppName, "version", version)

	if err := config.EnsureDirs(cfg); err != nil {
		logger.Error("failed to create directories", "error", err)
		os.Exit(1)
	}

	// every controller callback runs on the Fyne thread
	sched := loop.NewClock(fyne.Do)

	tk, err := app.New(cfg, sched, logger, app.Options{})
	if err != nil {
		logger.Error("failed to initialize toolkit", "error", err)
		os.Exit(1)
	}
	defer tk.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := tk.InstallEngine(ctx); err != nil {
			logger.Warn("yt-dlp install failed", "error", err)
		}
	}()
	go func() {
		if err := tk.ServeMetrics(ctx); err != nil {
			logger.Error("metrics server failed", "error", err)
		}
	}()

	myWindow := myApp.NewWindow(fmt.Sprintf("%s v%s", AppName, version))
	myWindow.Resize(fyne.NewSize(WindowWidth, WindowHeight))

	root := ui.NewRootUI(myWindow, myApp, tk, sched, logger)
	myWindow.SetOnClosed(root.Shutdown)

	myWindow.ShowAndRun()
}
