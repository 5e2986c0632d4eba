package ui

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/media-toolkit/internal/config"
	"github.com/ytget/media-toolkit/internal/controller"
	"github.com/ytget/media-toolkit/internal/loop"
	"github.com/ytget/media-toolkit/internal/model"
	"github.com/ytget/media-toolkit/internal/platform"
)

// ToolPanel is the tab of one downloader tool. It submits requests to the
// tool's controller and renders the controller's events.
type ToolPanel struct {
	kind     model.ServiceKind
	ctrl     *controller.Controller
	cfg      *config.Config
	settings *config.Settings
	loc      *Localization
	window   fyne.Window
	sched    loop.Scheduler
	logger   *slog.Logger
	now      func() time.Time
	reveal   func(path string) error

	sourceEntry   *widget.Entry
	formatGroup   *widget.RadioGroup
	playlistCheck *widget.Check
	browseBtn     *widget.Button
	startBtn      *widget.Button
	stopBtn       *widget.Button
	openBtn       *widget.Button
	statusLabel   *widget.Label

	progress binding.Float
	status   binding.String
	elapsed  binding.String

	formats []model.Format
	ticker  loop.Timer
	content fyne.CanvasObject
}

// NewToolPanel builds the tab for ctrl and subscribes it to the controller
func NewToolPanel(ctrl *controller.Controller, cfg *config.Config, settings *config.Settings, loc *Localization,
	window fyne.Window, sched loop.Scheduler, logger *slog.Logger) *ToolPanel {
	p := &ToolPanel{
		kind:     ctrl.Service(),
		ctrl:     ctrl,
		cfg:      cfg,
		settings: settings,
		loc:      loc,
		window:   window,
		sched:    sched,
		logger:   logger,
		now:      time.Now,
		reveal:   platform.OpenFileInManager,
		progress: binding.NewFloat(),
		status:   binding.NewString(),
		elapsed:  binding.NewString(),
		formats:  model.FormatsFor(ctrl.Service()),
	}
	p.createUI()
	ctrl.Subscribe(p)
	return p
}

// Content returns the panel's root object
func (p *ToolPanel) Content() fyne.CanvasObject {
	return p.content
}

func (p *ToolPanel) createUI() {
	p.sourceEntry = widget.NewEntry()
	p.sourceEntry.OnSubmitted = func(string) { p.onStart() }

	p.startBtn = widget.NewButton("", p.onStart)
	p.startBtn.Importance = widget.HighImportance
	p.stopBtn = widget.NewButton("", p.onStop)
	p.stopBtn.Disable()
	p.openBtn = widget.NewButton("", p.onOpenFolder)

	var right fyne.CanvasObject = p.startBtn
	if p.kind == model.ServiceTorrent {
		p.browseBtn = widget.NewButton("", p.onBrowseTorrent)
		right = container.NewHBox(p.browseBtn, p.startBtn)
	}
	sourceRow := container.NewBorder(nil, nil, nil, right, p.sourceEntry)

	rows := []fyne.CanvasObject{sourceRow}
	if len(p.formats) > 0 {
		labels := make([]string, 0, len(p.formats))
		for _, f := range p.formats {
			labels = append(labels, f.Label())
		}
		p.formatGroup = widget.NewRadioGroup(labels, nil)
		p.formatGroup.Horizontal = true
		p.formatGroup.Required = true
		p.formatGroup.SetSelected(p.settings.GetFormat(p.kind).Label())
		rows = append(rows, p.formatGroup)
	}
	if p.kind == model.ServiceYouTube {
		p.playlistCheck = widget.NewCheck("", nil)
		rows = append(rows, p.playlistCheck)
	}

	p.statusLabel = widget.NewLabelWithData(p.status)
	p.statusLabel.Wrapping = fyne.TextWrapWord
	progressBar := widget.NewProgressBarWithData(p.progress)
	progressBar.Min, progressBar.Max = 0, 1

	elapsedLabel := widget.NewLabelWithData(p.elapsed)
	elapsedLabel.Importance = widget.LowImportance

	rows = append(rows,
		widget.NewSeparator(),
		progressBar,
		p.statusLabel,
		container.NewHBox(elapsedLabel, layout.NewSpacer(), p.stopBtn, p.openBtn),
	)

	p.content = container.NewPadded(container.NewVBox(rows...))
	_ = p.status.Set(p.loc.GetText(KeyIdle))
	p.refreshTexts()
}

// refreshTexts re-applies localized strings
func (p *ToolPanel) refreshTexts() {
	switch p.kind {
	case model.ServiceYouTube:
		p.sourceEntry.SetPlaceHolder(p.loc.GetText(KeyEnterYouTubeURL))
	case model.ServiceTikTok:
		p.sourceEntry.SetPlaceHolder(p.loc.GetText(KeyEnterTikTokURL))
	default:
		p.sourceEntry.SetPlaceHolder(p.loc.GetText(KeyEnterTorrent))
	}
	p.startBtn.SetText(p.loc.GetText(KeyDownload))
	p.stopBtn.SetText(IconStop + " " + p.loc.GetText(KeyStop))
	p.openBtn.SetText(IconFolder + " " + p.loc.GetText(KeyOpenFolder))
	if p.browseBtn != nil {
		p.browseBtn.SetText(p.loc.GetText(KeyBrowse))
	}
	if p.playlistCheck != nil {
		p.playlistCheck.SetText(p.loc.GetText(KeyWholePlaylist))
	}
	if !p.ctrl.Busy() {
		if _, ok := p.ctrl.Current(); !ok {
			_ = p.status.Set(p.loc.GetText(KeyIdle))
		}
	}
}

func (p *ToolPanel) selectedFormat() model.Format {
	if p.formatGroup == nil {
		return ""
	}
	for _, f := range p.formats {
		if f.Label() == p.formatGroup.Selected {
			return f
		}
	}
	return ""
}

func (p *ToolPanel) onStart() {
	req := controller.Request{
		Source:    strings.TrimSpace(p.sourceEntry.Text),
		Format:    p.selectedFormat(),
		OutputDir: p.cfg.ServiceDir(p.kind),
	}
	if p.playlistCheck != nil {
		req.WholePlaylist = p.playlistCheck.Checked
	}

	id, err := p.ctrl.Start(req)
	if err != nil {
		if errors.Is(err, model.ErrBusy) {
			dialog.ShowInformation(p.loc.GetText(KeyTabTitle(p.kind)), p.loc.GetText(KeyTaskBusy), p.window)
			return
		}
		dialog.ShowError(fmt.Errorf("%s: %w", p.loc.GetText(KeyInvalidRequest), err), p.window)
		return
	}

	p.logger.Debug("task submitted from ui", "task_id", id, "service", p.kind)
	if req.Format != "" {
		p.settings.SetFormat(p.kind, req.Format)
	}
	_ = p.progress.Set(0)
	_ = p.status.Set(controller.MsgStarting)
	p.statusLabel.Importance = widget.MediumImportance
	p.setBusy(true)
}

func (p *ToolPanel) onStop() {
	if p.ctrl.Cancel() {
		p.stopBtn.Disable()
	}
}

func (p *ToolPanel) onOpenFolder() {
	dir := p.cfg.ServiceDir(p.kind)
	if err := p.reveal(dir); err != nil {
		dialog.ShowError(err, p.window)
	}
}

func (p *ToolPanel) onBrowseTorrent() {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		defer reader.Close()
		p.sourceEntry.SetText(reader.URI().Path())
	}, p.window)
	d.SetFilter(storage.NewExtensionFileFilter(TorrentFileFilter))
	d.Show()
}

func (p *ToolPanel) setBusy(busy bool) {
	if busy {
		p.startBtn.Disable()
		p.stopBtn.Enable()
		if p.ticker != nil {
			p.ticker.Stop()
		}
		p.ticker = p.sched.Every(ElapsedRefresh, p.tick)
		return
	}
	p.startBtn.Enable()
	p.stopBtn.Disable()
	if p.ticker != nil {
		p.ticker.Stop()
		p.ticker = nil
	}
}

func (p *ToolPanel) tick() {
	if task, ok := p.ctrl.Current(); ok {
		_ = p.elapsed.Set(p.elapsedText(task))
	}
}

func (p *ToolPanel) elapsedText(task model.DownloadTask) string {
	return p.loc.GetText(KeyElapsed) + ": " + task.GetElapsedString(p.now()) +
		MiddleDotSeparator + fmt.Sprintf(ProgressLabelFormat, task.ProgressPercent)
}

// OnEvent implements controller.Observer. It runs on the scheduler.
func (p *ToolPanel) OnEvent(task model.DownloadTask, ev model.ProgressEvent) {
	importance, icon := stateStyle(task.State)
	_ = p.progress.Set(float64(task.ProgressPercent) / 100)
	_ = p.status.Set(icon + " " + task.StatusText)
	_ = p.elapsed.Set(p.elapsedText(task))

	p.statusLabel.Importance = importance
	p.statusLabel.Refresh()

	if !ev.IsTerminal() {
		return
	}
	p.setBusy(false)
	if task.State == model.TaskStateSucceeded {
		p.sourceEntry.SetText("")
		if p.settings.GetAutoRevealOnComplete() {
			if err := p.reveal(task.OutputDir); err != nil {
				p.logger.Warn("failed to reveal output", "task_id", task.ID, "error", err)
			}
		}
	}
}

// KeyTabTitle returns the localization key of a tool's tab
func KeyTabTitle(kind model.ServiceKind) string {
	switch kind {
	case model.ServiceYouTube:
		return KeyTabYouTube
	case model.ServiceTikTok:
		return KeyTabTikTok
	default:
		return KeyTabTorrent
	}
}
