package history

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ytget/media-toolkit/internal/model"
)

// DefaultWriteTimeout bounds a single history write
const DefaultWriteTimeout = 2 * time.Second

// Recorder persists the first and the terminal event of every task.
// Intermediate progress is not written.
type Recorder struct {
	store   *Store
	logger  *slog.Logger
	timeout time.Duration

	mu   sync.Mutex
	seen map[string]struct{}
}

// NewRecorder creates a Recorder writing to store
func NewRecorder(store *Store, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		store:   store,
		logger:  logger,
		timeout: DefaultWriteTimeout,
		seen:    make(map[string]struct{}),
	}
}

// OnEvent implements controller.Observer
func (r *Recorder) OnEvent(task model.DownloadTask, ev model.ProgressEvent) {
	if !r.shouldWrite(task.ID, ev) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.store.Record(ctx, task); err != nil {
		r.logger.Error("failed to record task", "task_id", task.ID, "state", task.State, "error", err)
	}
}

func (r *Recorder) shouldWrite(id string, ev model.ProgressEvent) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ev.IsTerminal() {
		delete(r.seen, id)
		return true
	}
	if _, ok := r.seen[id]; ok {
		return false
	}
	r.seen[id] = struct{}{}
	return true
}
