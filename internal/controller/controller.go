package controller

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ytget/media-toolkit/internal/loop"
	"github.com/ytget/media-toolkit/internal/model"
	"github.com/ytget/media-toolkit/internal/platform"
)

// MsgStarting is the status shown between Start and the first event
const MsgStarting = "Starting download..."

// Runner executes one task and streams its events. Both the push worker and
// the polling coordinator satisfy it.
type Runner interface {
	Start(task model.DownloadTask, token *model.CancellationToken) <-chan model.ProgressEvent
}

// Observer receives every delivered event together with the updated task
// snapshot. It is called on the scheduler's loop.
type Observer interface {
	OnEvent(task model.DownloadTask, ev model.ProgressEvent)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(task model.DownloadTask, ev model.ProgressEvent)

// OnEvent implements Observer
func (f ObserverFunc) OnEvent(task model.DownloadTask, ev model.ProgressEvent) {
	f(task, ev)
}

// Controller owns at most one active task for one service
type Controller struct {
	kind   model.ServiceKind
	runner Runner
	sched  loop.Scheduler
	logger *slog.Logger
	now    func() time.Time

	mu        sync.Mutex
	task      *model.DownloadTask
	token     *model.CancellationToken
	active    bool
	observers []Observer
}

// Option configures a Controller
type Option func(*Controller)

// WithLogger sets the controller logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// WithClock overrides the time source used for task timestamps
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// New creates a controller for kind, relaying events through sched
func New(kind model.ServiceKind, runner Runner, sched loop.Scheduler, opts ...Option) *Controller {
	c := &Controller{
		kind:   kind,
		runner: runner,
		sched:  sched,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("service", string(kind))
	return c
}

// Service returns the service this controller drives
func (c *Controller) Service() model.ServiceKind {
	return c.kind
}

// Subscribe registers an observer. Observers are called in registration order.
func (c *Controller) Subscribe(o Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, o)
}

// Start validates req and launches a task. It returns the new task id, or a
// model.ErrValidation error without starting anything.
func (c *Controller) Start(req Request) (string, error) {
	if err := ValidateRequest(c.kind, req); err != nil {
		c.logger.Warn("request rejected", "source", req.Source, "error", err)
		return "", err
	}

	source := req.Source
	if c.kind == model.ServiceYouTube && platform.IsPlaylistURL(source) && !req.WholePlaylist {
		source = platform.VideoOnlyURL(source)
	}
	format := req.Format
	if format == "" && c.kind != model.ServiceTorrent {
		format = model.FormatVideo
	}

	c.mu.Lock()
	if c.active {
		c.mu.Unlock()
		return "", model.ErrBusy
	}

	id, err := newTaskID(c.kind)
	if err != nil {
		c.mu.Unlock()
		return "", fmt.Errorf("generate task id: %w", err)
	}
	task := &model.DownloadTask{
		ID:         id,
		Service:    c.kind,
		Source:     source,
		Format:     format,
		OutputDir:  req.OutputDir,
		Playlist:   req.WholePlaylist && c.kind == model.ServiceYouTube,
		State:      model.TaskStatePending,
		StatusText: MsgStarting,
		StartedAt:  c.now(),
	}
	token := model.NewCancellationToken()
	c.task = task
	c.token = token
	c.active = true
	snapshot := *task
	c.mu.Unlock()

	c.logger.Info("task started", "task_id", id, "source", source, "format", format)
	events := c.runner.Start(snapshot, token)
	go c.relay(id, events)
	return id, nil
}

// relay moves events from the runner's goroutine onto the loop, one post
// per event, preserving order
func (c *Controller) relay(id string, events <-chan model.ProgressEvent) {
	for ev := range events {
		c.sched.Post(func() { c.deliver(id, ev) })
	}
}

func (c *Controller) deliver(id string, ev model.ProgressEvent) {
	c.mu.Lock()
	if c.task == nil || c.task.ID != id {
		c.mu.Unlock()
		return
	}
	if !c.task.Apply(ev, c.now()) {
		c.mu.Unlock()
		c.logger.Warn("event after terminal state dropped", "task_id", id, "event", ev.String())
		return
	}
	if ev.IsTerminal() {
		c.active = false
	}
	snapshot := *c.task
	observers := append([]Observer(nil), c.observers...)
	c.mu.Unlock()

	if ev.IsTerminal() {
		c.logger.Info("task ended", "task_id", id, "state", snapshot.State.String(), "message", ev.Message)
	}
	for _, o := range observers {
		o.OnEvent(snapshot, ev)
	}
}

// Cancel requests cooperative cancellation of the active task. It reports
// whether a request was actually made.
func (c *Controller) Cancel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.active || c.task == nil || c.task.State.IsFinished() {
		return false
	}
	if !c.token.Cancel() {
		return false
	}
	c.logger.Info("cancel requested", "task_id", c.task.ID)
	return true
}

// Busy reports whether a task occupies the controller
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Current returns a snapshot of the latest task, if any
func (c *Controller) Current() (model.DownloadTask, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.task == nil {
		return model.DownloadTask{}, false
	}
	return *c.task, true
}

func newTaskID(kind model.ServiceKind) (string, error) {
	u, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s", kind, u.String()), nil
}
