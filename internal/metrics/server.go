package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ytget/media-toolkit/internal/model"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 500
	shutdownTimeout     = 5 * time.Second
)

// HistorySource lists recently recorded tasks
type HistorySource interface {
	Recent(ctx context.Context, limit int) ([]model.DownloadTask, error)
}

type taskView struct {
	ID        string     `json:"id"`
	Service   string     `json:"service"`
	Source    string     `json:"source"`
	State     string     `json:"state"`
	Progress  int        `json:"progress"`
	Status    string     `json:"status"`
	Error     string     `json:"error,omitempty"`
	StartedAt time.Time  `json:"started_at"`
	Finished  *time.Time `json:"finished_at,omitempty"`
}

// NewRouter builds the metrics router. history may be nil.
func NewRouter(gatherer prometheus.Gatherer, history HistorySource, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, logger, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	if history != nil {
		r.Get("/tasks", func(w http.ResponseWriter, r *http.Request) {
			limit := defaultHistoryLimit
			if raw := r.URL.Query().Get("limit"); raw != "" {
				n, err := strconv.Atoi(raw)
				if err != nil || n <= 0 || n > maxHistoryLimit {
					writeJSON(w, logger, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
					return
				}
				limit = n
			}

			tasks, err := history.Recent(r.Context(), limit)
			if err != nil {
				logger.Error("failed to list history", "error", err)
				writeJSON(w, logger, http.StatusInternalServerError, map[string]string{"error": "history unavailable"})
				return
			}

			views := make([]taskView, 0, len(tasks))
			for _, t := range tasks {
				v := taskView{
					ID:        t.ID,
					Service:   string(t.Service),
					Source:    t.Source,
					State:     t.State.String(),
					Progress:  t.ProgressPercent,
					Status:    t.StatusText,
					Error:     t.TerminalError,
					StartedAt: t.StartedAt,
				}
				if !t.FinishedAt.IsZero() {
					finished := t.FinishedAt
					v.Finished = &finished
				}
				views = append(views, v)
			}
			writeJSON(w, logger, http.StatusOK, views)
		})
	}

	return r
}

// Serve runs handler on addr until ctx is cancelled
func Serve(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics server starting", "address", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("metrics server: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("metrics server shutdown: %w", err)
	}
	logger.Info("metrics server stopped")
	return nil
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}
