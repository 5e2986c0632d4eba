package history

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ytget/media-toolkit/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrNotFound is returned by Get when no task has the requested id
var ErrNotFound = errors.New("task not found in history")

// Store persists task snapshots
type Store struct {
	db *sqlx.DB
}

type taskRow struct {
	ID           string         `db:"id"`
	Service      string         `db:"service"`
	Source       string         `db:"source"`
	Format       string         `db:"format"`
	OutputDir    string         `db:"output_dir"`
	Playlist     bool           `db:"playlist"`
	State        string         `db:"state"`
	Progress     int            `db:"progress"`
	StatusText   string         `db:"status_text"`
	ErrorMessage sql.NullString `db:"error_message"`
	StartedAt    int64          `db:"started_at"`
	FinishedAt   sql.NullInt64  `db:"finished_at"`
}

// Open opens (or creates) the database at path and applies migrations
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := runMigrations(sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db := sqlx.NewDb(sqlDB, "sqlite3")
	// single writer
	db.SetMaxOpenConns(1)

	return &Store{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts the task or replaces the stored snapshot with the same id
func (s *Store) Record(ctx context.Context, task model.DownloadTask) error {
	query := `
		INSERT INTO tasks (id, service, source, format, output_dir, playlist, state,
		                   progress, status_text, error_message, started_at, finished_at)
		VALUES (:id, :service, :source, :format, :output_dir, :playlist, :state,
		        :progress, :status_text, :error_message, :started_at, :finished_at)
		ON CONFLICT(id) DO UPDATE SET
		    state = excluded.state,
		    progress = excluded.progress,
		    status_text = excluded.status_text,
		    error_message = excluded.error_message,
		    finished_at = excluded.finished_at
	`
	if _, err := s.db.NamedExecContext(ctx, query, toRow(task)); err != nil {
		return fmt.Errorf("record task %s: %w", task.ID, err)
	}
	return nil
}

// Get returns the stored snapshot for id
func (s *Store) Get(ctx context.Context, id string) (model.DownloadTask, error) {
	var row taskRow
	if err := s.db.GetContext(ctx, &row, `SELECT * FROM tasks WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.DownloadTask{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return model.DownloadTask{}, fmt.Errorf("get task: %w", err)
	}
	return row.toTask(), nil
}

// Recent returns up to limit tasks, newest first
func (s *Store) Recent(ctx context.Context, limit int) ([]model.DownloadTask, error) {
	var rows []taskRow
	query := `SELECT * FROM tasks ORDER BY started_at DESC, id DESC LIMIT ?`
	if err := s.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("get recent tasks: %w", err)
	}

	tasks := make([]model.DownloadTask, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, row.toTask())
	}
	return tasks, nil
}

// Prune deletes finished tasks older than cutoff and returns how many were removed
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE finished_at IS NOT NULL AND finished_at < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("prune tasks: %w", err)
	}
	return res.RowsAffected()
}

func toRow(task model.DownloadTask) taskRow {
	row := taskRow{
		ID:         task.ID,
		Service:    string(task.Service),
		Source:     task.Source,
		Format:     string(task.Format),
		OutputDir:  task.OutputDir,
		Playlist:   task.Playlist,
		State:      string(task.State),
		Progress:   task.ProgressPercent,
		StatusText: task.StatusText,
		StartedAt:  task.StartedAt.UnixMilli(),
	}
	if task.TerminalError != "" {
		row.ErrorMessage = sql.NullString{String: task.TerminalError, Valid: true}
	}
	if !task.FinishedAt.IsZero() {
		row.FinishedAt = sql.NullInt64{Int64: task.FinishedAt.UnixMilli(), Valid: true}
	}
	return row
}

func (r taskRow) toTask() model.DownloadTask {
	task := model.DownloadTask{
		ID:              r.ID,
		Service:         model.ServiceKind(r.Service),
		Source:          r.Source,
		Format:          model.Format(r.Format),
		OutputDir:       r.OutputDir,
		Playlist:        r.Playlist,
		State:           model.TaskState(r.State),
		ProgressPercent: r.Progress,
		StatusText:      r.StatusText,
		TerminalError:   r.ErrorMessage.String,
		StartedAt:       time.UnixMilli(r.StartedAt),
	}
	if r.FinishedAt.Valid {
		task.FinishedAt = time.UnixMilli(r.FinishedAt.Int64)
	}
	return task
}
