package download

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/ytget/media-toolkit/internal/model"
	"github.com/ytget/media-toolkit/internal/platform"
)

// Messages carried by terminal events
const (
	MsgFinished       = "Download finished!"
	MsgFinalizing     = "Finalizing file..."
	MsgCancelled      = "Cancelled."
	MsgPartialDeleted = "Partial file deleted."
)

// DefaultEventBuffer is the channel capacity of a task's event stream
const DefaultEventBuffer = 16

// Worker runs one engine invocation per Start call, each on its own goroutine
type Worker struct {
	engine FetchEngine
	remove RemoveFunc
	logger *slog.Logger
	buffer int
}

// Option configures a Worker
type Option func(*Worker)

// WithRemover replaces the filesystem cleanup function
func WithRemover(fn RemoveFunc) Option {
	return func(w *Worker) { w.remove = fn }
}

// WithLogger sets the worker logger
func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) { w.logger = logger }
}

// WithEventBuffer sets the event channel capacity
func WithEventBuffer(n int) Option {
	return func(w *Worker) {
		if n >= 0 {
			w.buffer = n
		}
	}
}

// NewWorker creates a worker driving engine
func NewWorker(engine FetchEngine, opts ...Option) *Worker {
	w := &Worker{
		engine: engine,
		remove: platform.RemoveIfExists,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		buffer: DefaultEventBuffer,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start launches the task and returns immediately. The returned channel
// yields progress events followed by exactly one terminal event, then closes.
// The caller must drain it.
func (w *Worker) Start(task model.DownloadTask, token *model.CancellationToken) <-chan model.ProgressEvent {
	out := make(chan model.ProgressEvent, w.buffer)
	r := &taskRun{
		worker: w,
		token:  token,
		out:    out,
		logger: w.logger.With("task_id", task.ID, "service", task.Service),
	}
	req := FetchRequest{
		Source:    task.Source,
		Format:    task.Format,
		OutputDir: task.OutputDir,
		Playlist:  task.Playlist,
	}
	go r.run(req)
	return out
}

// taskRun is the state of one invocation. Only the worker goroutine touches it.
type taskRun struct {
	worker  *Worker
	token   *model.CancellationToken
	out     chan<- model.ProgressEvent
	logger  *slog.Logger
	percent int
	partial string
}

func (r *taskRun) run(req FetchRequest) {
	defer close(r.out)

	if r.token.IsCancelled() {
		r.logger.Info("cancelled before start")
		r.out <- model.Cancelled(MsgCancelled)
		return
	}

	r.logger.Info("download started", "source", req.Source, "format", req.Format)
	err := r.invoke(req)
	ev := r.outcome(err)
	r.logger.Info("download ended", "outcome", ev.Kind.String(), "percent", r.percent)
	r.out <- ev
}

func (r *taskRun) invoke(req FetchRequest) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &model.TransferError{Err: fmt.Errorf("engine panic: %v", p)}
		}
	}()
	return r.worker.engine.Fetch(context.Background(), req, r.hook)
}

func (r *taskRun) hook(p FetchProgress) error {
	if r.token.IsCancelled() {
		return model.ErrAborted
	}

	if p.Filename != "" {
		r.partial = model.PartialPath(p.Filename)
	}
	r.percent = normalizePercent(p, r.percent)

	msg := statusText(p)
	if p.Status == StatusFinished {
		msg = MsgFinalizing
	}

	ev := model.Progress(r.percent, msg)
	ev.Artifact = r.partial
	r.out <- ev
	return nil
}

// outcome decides the terminal event. A token set while the engine was
// running wins over whatever the engine returned.
func (r *taskRun) outcome(err error) model.ProgressEvent {
	if model.IsAbort(err) || r.token.IsCancelled() {
		switch removed, warn := r.cleanup(); {
		case warn != nil:
			return model.Cancelled(MsgCancelled + "\n" + warn.Error())
		case removed:
			return model.Cancelled(MsgCancelled + " " + MsgPartialDeleted)
		default:
			return model.Cancelled(MsgCancelled)
		}
	}

	if err != nil {
		r.logger.Error("download failed", "error", err)
		msg := err.Error()
		switch removed, warn := r.cleanup(); {
		case warn != nil:
			msg += "\n" + warn.Error()
		case removed:
			msg += "\n" + MsgPartialDeleted
		}
		return model.Failed(msg)
	}

	return model.Finished(MsgFinished)
}

// cleanup makes the single deletion attempt for the partial file. Nothing
// is attempted when the engine never revealed a file name.
func (r *taskRun) cleanup() (bool, *model.CleanupWarning) {
	if r.partial == "" {
		return false, nil
	}

	removed, err := r.worker.remove(r.partial)
	if err != nil {
		r.logger.Warn("partial file cleanup failed", "path", r.partial, "error", err)
		return false, &model.CleanupWarning{Path: r.partial, Err: err}
	}
	if removed {
		r.logger.Info("partial file removed", "path", r.partial)
	}
	return removed, nil
}
