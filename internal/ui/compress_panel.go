package ui

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/media-toolkit/internal/convert"
	"github.com/ytget/media-toolkit/internal/loop"
)

// CollaboratorFactory builds a convert utility reporting progress to fn
type CollaboratorFactory func(fn convert.ProgressFunc) convert.Collaborator

// CompressPanel collects video files and runs them through the compressor
type CompressPanel struct {
	loc       *Localization
	window    fyne.Window
	sched     loop.Scheduler
	logger    *slog.Logger
	collab    convert.Collaborator
	outputDir func() string

	files    binding.StringList
	progress binding.Float
	status   binding.String

	mu      sync.Mutex
	percent map[string]int
	cancel  context.CancelFunc

	addBtn   *widget.Button
	clearBtn *widget.Button
	startBtn *widget.Button
	stopBtn  *widget.Button
	content  fyne.CanvasObject
}

// NewCompressPanel creates the compress tab
func NewCompressPanel(factory CollaboratorFactory, outputDir func() string, loc *Localization,
	window fyne.Window, sched loop.Scheduler, logger *slog.Logger) *CompressPanel {
	p := &CompressPanel{
		loc:       loc,
		window:    window,
		sched:     sched,
		logger:    logger,
		outputDir: outputDir,
		files:     binding.NewStringList(),
		progress:  binding.NewFloat(),
		status:    binding.NewString(),
		percent:   make(map[string]int),
	}
	p.collab = factory(p.onProgress)
	p.createUI()
	return p
}

// Content returns the panel's root object
func (p *CompressPanel) Content() fyne.CanvasObject {
	return p.content
}

func (p *CompressPanel) createUI() {
	list := widget.NewListWithData(p.files,
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(item binding.DataItem, obj fyne.CanvasObject) {
			s, _ := item.(binding.String).Get()
			obj.(*widget.Label).SetText(filepath.Base(s))
		})
	scroll := container.NewVScroll(list)
	scroll.SetMinSize(fyne.NewSize(0, CompressListHeight))

	p.addBtn = widget.NewButton("", p.onAddFiles)
	p.clearBtn = widget.NewButton("", func() { _ = p.files.Set(nil) })
	p.startBtn = widget.NewButton("", p.onStart)
	p.startBtn.Importance = widget.HighImportance
	p.stopBtn = widget.NewButton("", p.onStop)
	p.stopBtn.Disable()

	bar := widget.NewProgressBarWithData(p.progress)
	bar.Min, bar.Max = 0, 1

	p.content = container.NewPadded(container.NewBorder(
		container.NewHBox(p.addBtn, p.clearBtn),
		container.NewVBox(bar, widget.NewLabelWithData(p.status), container.NewHBox(p.startBtn, p.stopBtn)),
		nil, nil,
		scroll,
	))
	_ = p.status.Set(p.loc.GetText(KeyIdle))
	p.refreshTexts()
}

func (p *CompressPanel) refreshTexts() {
	p.addBtn.SetText(p.loc.GetText(KeyAddFiles))
	p.clearBtn.SetText(p.loc.GetText(KeyClear))
	p.startBtn.SetText(p.loc.GetText(KeyCompress))
	p.stopBtn.SetText(IconStop + " " + p.loc.GetText(KeyStop))
}

func (p *CompressPanel) onAddFiles() {
	d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		defer reader.Close()
		p.AddFile(reader.URI().Path())
	}, p.window)
	d.SetFilter(storage.NewExtensionFileFilter(VideoFileFilter))
	d.Show()
}

// AddFile queues a file unless it is already listed
func (p *CompressPanel) AddFile(path string) {
	existing, _ := p.files.Get()
	for _, f := range existing {
		if f == path {
			return
		}
	}
	_ = p.files.Append(path)
}

func (p *CompressPanel) onStart() {
	inputs, _ := p.files.Get()
	if len(inputs) == 0 {
		dialog.ShowInformation(p.loc.GetText(KeyTabCompress), p.loc.GetText(KeyNoFilesSelected), p.window)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.mu.Lock()
	p.cancel = cancel
	p.percent = make(map[string]int, len(inputs))
	p.mu.Unlock()

	p.setRunning(true)
	_ = p.progress.Set(0)
	_ = p.status.Set(fmt.Sprintf(ProgressLabelFormat, 0))
	outDir := p.outputDir()

	go func() {
		defer cancel()
		res, err := p.collab.Process(ctx, inputs, outDir)
		p.sched.Post(func() { p.finish(res, err) })
	}()
}

func (p *CompressPanel) onStop() {
	p.mu.Lock()
	cancel := p.cancel
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// onProgress runs on the compressor's goroutines
func (p *CompressPanel) onProgress(input string, percent int) {
	inputs, _ := p.files.Get()

	p.mu.Lock()
	p.percent[input] = percent
	total := 0
	for _, v := range p.percent {
		total += v
	}
	p.mu.Unlock()

	if len(inputs) == 0 {
		return
	}
	overall := float64(total) / float64(len(inputs)*100)
	_ = p.progress.Set(overall)
	_ = p.status.Set(fmt.Sprintf(ProgressLabelFormat, int(overall*100)))
}

func (p *CompressPanel) finish(res convert.Result, err error) {
	p.mu.Lock()
	p.cancel = nil
	p.mu.Unlock()
	p.setRunning(false)

	summary := fmt.Sprintf(p.loc.GetText(KeyCompressResult), res.Succeeded, res.Failed)
	_ = p.status.Set(summary)
	if res.Failed == 0 && err == nil {
		_ = p.progress.Set(1)
	}
	p.logger.Info("compress batch done", "succeeded", res.Succeeded, "failed", res.Failed, "error", err)

	if err != nil {
		dialog.ShowError(err, p.window)
		return
	}
	dialog.ShowInformation(p.loc.GetText(KeyTabCompress), summary, p.window)
}

func (p *CompressPanel) setRunning(running bool) {
	if running {
		p.startBtn.Disable()
		p.addBtn.Disable()
		p.clearBtn.Disable()
		p.stopBtn.Enable()
		return
	}
	p.startBtn.Enable()
	p.addBtn.Enable()
	p.clearBtn.Enable()
	p.stopBtn.Disable()
}
