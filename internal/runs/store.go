package runs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"nightsweep/internal/config"
	"nightsweep/internal/services"
)

// Store persists run history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Record is one row of run history.
type Record struct {
	ID         string
	StartedAt  time.Time
	FinishedAt *time.Time
	Total      int
	Succeeded  int
	Failed     int
	Skipped    int
}

// Open initializes or connects to the history database in the log
// directory.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.LogDir, "history.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path reports the database file location.
func (s *Store) Path() string {
	return s.path
}

// BeginRun inserts the run row when the driver starts iterating.
func (s *Store) BeginRun(ctx context.Context, runID string, startedAt time.Time, total int) error {
	return s.execWithRetry(ctx,
		"INSERT INTO runs (id, started_at, total) VALUES (?, ?, ?)",
		runID, startedAt.UTC().Format(time.RFC3339), total,
	)
}

// RecordOutcome appends one night's outcome to the run.
func (s *Store) RecordOutcome(ctx context.Context, runID string, outcome Outcome, at time.Time) error {
	return s.execWithRetry(ctx,
		"INSERT INTO run_nights (run_id, night, status, exit_code, log_path, message, recorded_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		runID, outcome.Night, string(outcome.Status), outcome.ExitCode,
		outcome.LogPath, outcome.Message, at.UTC().Format(time.RFC3339),
	)
}

// FinishRun stamps the completion time and final counters.
func (s *Store) FinishRun(ctx context.Context, runID string, finishedAt time.Time, summary Summary) error {
	return s.execWithRetry(ctx,
		"UPDATE runs SET finished_at = ?, succeeded = ?, failed = ?, skipped = ? WHERE id = ?",
		finishedAt.UTC().Format(time.RFC3339),
		summary.Succeeded, summary.Failed, summary.Skipped, runID,
	)
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ensureContext(ctx),
		"SELECT id, started_at, finished_at, total, succeeded, failed, skipped FROM runs ORDER BY started_at DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

// GetRun returns one run with its ordered per-night outcomes.
func (s *Store) GetRun(ctx context.Context, runID string) (Record, []Outcome, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		"SELECT id, started_at, finished_at, total, succeeded, failed, skipped FROM runs WHERE id = ?",
		runID,
	)
	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, nil, services.Wrap(services.ErrNotFound, "runs", "get", runID, nil)
		}
		return Record{}, nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT night, status, exit_code, log_path, message FROM run_nights WHERE run_id = ? ORDER BY id",
		runID,
	)
	if err != nil {
		return Record{}, nil, fmt.Errorf("list run nights: %w", err)
	}
	defer rows.Close()

	var outcomes []Outcome
	for rows.Next() {
		var outcome Outcome
		var status string
		if err := rows.Scan(&outcome.Night, &status, &outcome.ExitCode, &outcome.LogPath, &outcome.Message); err != nil {
			return Record{}, nil, fmt.Errorf("scan run night: %w", err)
		}
		outcome.Status = Status(status)
		outcomes = append(outcomes, outcome)
	}
	return record, outcomes, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var record Record
	var started string
	var finished sql.NullString
	if err := row.Scan(&record.ID, &started, &finished, &record.Total, &record.Succeeded, &record.Failed, &record.Skipped); err != nil {
		return Record{}, err
	}
	startedAt, err := time.Parse(time.RFC3339, started)
	if err != nil {
		return Record{}, fmt.Errorf("parse started_at %q: %w", started, err)
	}
	record.StartedAt = startedAt
	if finished.Valid && finished.String != "" {
		finishedAt, err := time.Parse(time.RFC3339, finished.String)
		if err != nil {
			return Record{}, fmt.Errorf("parse finished_at %q: %w", finished.String, err)
		}
		record.FinishedAt = &finishedAt
	}
	return record, nil
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) error {
	ctx = ensureContext(ctx)
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		_, lastErr = s.db.ExecContext(ctx, query, args...)
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
