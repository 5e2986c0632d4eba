package torrent

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ytget/media-toolkit/internal/loop"
	"github.com/ytget/media-toolkit/internal/model"
)

// Timing defaults
const (
	DefaultDiscoveryDelay = 1600 * time.Millisecond
	DefaultPollInterval   = 1200 * time.Millisecond
	DefaultQueryTimeout   = 5 * time.Second
)

// Messages carried by events
const (
	MsgNoTorrents     = "No torrents found"
	MsgFinished       = "Download finished and stopped seeding."
	MsgCancelled      = "Cancelled."
	MsgDataRemoved    = "Downloaded data removed."
	DisplayNameLength = 28
)

// Config tunes a Coordinator
type Config struct {
	DiscoveryDelay time.Duration
	PollInterval   time.Duration
	QueryTimeout   time.Duration
	EventBuffer    int
}

// Coordinator is the pull-model driver. All of its work happens in
// callbacks on the scheduler; it owns no goroutine.
type Coordinator struct {
	service Service
	sched   loop.Scheduler
	logger  *slog.Logger
	cfg     Config
}

// NewCoordinator creates a coordinator polling service through sched
func NewCoordinator(service Service, sched loop.Scheduler, cfg Config, logger *slog.Logger) *Coordinator {
	if cfg.DiscoveryDelay <= 0 {
		cfg.DiscoveryDelay = DefaultDiscoveryDelay
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = DefaultQueryTimeout
	}
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = 64
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Coordinator{service: service, sched: sched, logger: logger, cfg: cfg}
}

// Start submits the task's source and returns its event stream. Nothing
// runs until the scheduler executes the posted submit step. The caller must
// drain the channel; it closes after the terminal event.
func (c *Coordinator) Start(task model.DownloadTask, token *model.CancellationToken) <-chan model.ProgressEvent {
	out := make(chan model.ProgressEvent, c.cfg.EventBuffer)
	p := &poll{
		c:      c,
		token:  token,
		source: task.Source,
		dir:    task.OutputDir,
		out:    out,
		logger: c.logger.With("task_id", task.ID),
	}
	c.sched.Post(p.submit)
	return out
}

// poll is the state of one tracked item. Only scheduler callbacks touch it.
type poll struct {
	c      *Coordinator
	token  *model.CancellationToken
	source string
	dir    string
	out    chan model.ProgressEvent
	logger *slog.Logger

	handle string
	name   string
	timer  loop.Timer
	done   bool
}

func (p *poll) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), p.c.cfg.QueryTimeout)
}

func (p *poll) emit(ev model.ProgressEvent) {
	if p.done {
		return
	}
	p.out <- ev
	if ev.IsTerminal() {
		p.done = true
		if p.timer != nil {
			p.timer.Stop()
		}
		close(p.out)
	}
}

func (p *poll) submit() {
	if p.token.IsCancelled() {
		p.emit(model.Cancelled(MsgCancelled))
		return
	}

	ctx, cancel := p.ctx()
	defer cancel()
	if err := p.c.service.Submit(ctx, p.source, p.dir); err != nil {
		p.logger.Error("torrent submit failed", "source", p.source, "error", err)
		p.emit(model.Failed(fmt.Sprintf("Error: %v", err)))
		return
	}
	p.logger.Info("torrent submitted", "source", p.source, "save_path", p.dir)
	p.c.sched.After(p.c.cfg.DiscoveryDelay, p.discover)
}

func (p *poll) discover() {
	ctx, cancel := p.ctx()
	defer cancel()

	entries, err := p.c.service.ListActive(ctx)
	if err != nil {
		if p.token.IsCancelled() {
			p.emit(model.Cancelled(MsgCancelled))
			return
		}
		p.logger.Error("torrent discovery failed", "error", err)
		p.emit(model.Failed(fmt.Sprintf("Error: %v", err)))
		return
	}
	entry, ok := newest(entries)
	if !ok {
		// nothing was tracked, so there is nothing to remove
		if p.token.IsCancelled() {
			p.emit(model.Cancelled(MsgCancelled))
			return
		}
		p.logger.Warn("no torrents after submit")
		p.emit(model.Failed(MsgNoTorrents))
		return
	}
	p.handle = entry.Handle
	p.name = entry.Name
	p.logger.Info("torrent discovered", "handle", p.handle, "name", p.name)

	if p.token.IsCancelled() {
		p.stopCancelled()
		return
	}

	p.emit(model.Progress(percentOf(entry.Progress), "Downloading: "+p.name))
	p.timer = p.c.sched.Every(p.c.cfg.PollInterval, p.tick)
}

func (p *poll) tick() {
	if p.done {
		return
	}
	if p.token.IsCancelled() {
		p.stopCancelled()
		return
	}

	ctx, cancel := p.ctx()
	defer cancel()

	st, err := p.c.service.Query(ctx, p.handle)
	if err != nil {
		p.logger.Error("torrent query failed", "handle", p.handle, "error", err)
		p.emit(model.Failed(fmt.Sprintf("Error: %v", err)))
		return
	}
	if st.Name != "" {
		p.name = st.Name
	}

	pct := percentOf(st.Progress)
	if pct < 100 {
		p.emit(model.Progress(pct, fmt.Sprintf("%s...  %d%%", truncateName(p.name), pct)))
		return
	}

	p.timer.Stop()
	msg := MsgFinished
	if err := p.c.service.StopTracking(ctx, p.handle, false); err != nil {
		p.logger.Warn("stop seeding failed", "handle", p.handle, "error", err)
		msg = fmt.Sprintf("Download finished, but seeding could not be stopped: %v", err)
	}
	p.logger.Info("torrent finished", "handle", p.handle)
	p.emit(model.Finished(msg))
}

// stopCancelled removes the item together with its partial data
func (p *poll) stopCancelled() {
	ctx, cancel := p.ctx()
	defer cancel()

	msg := MsgCancelled + " " + MsgDataRemoved
	if err := p.c.service.StopTracking(ctx, p.handle, true); err != nil {
		p.logger.Warn("cancel cleanup failed", "handle", p.handle, "error", err)
		warn := &model.CleanupWarning{Path: p.dir, Err: err}
		msg = MsgCancelled + "\n" + warn.Error()
	}
	p.emit(model.Cancelled(msg))
}

func truncateName(name string) string {
	r := []rune(name)
	if len(r) > DisplayNameLength {
		r = r[:DisplayNameLength]
	}
	return string(r)
}
