package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; users then delete the history database.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the
// expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

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

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
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

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) error {
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}

// Open initializes or connects to the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
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

	store := &Store{db: db, path: path}
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

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	err = s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// StartRun records the beginning of a batch run.
func (s *Store) StartRun(ctx context.Context, run Run) error {
	return s.execWithRetry(ctx,
		"INSERT INTO runs (id, started_at) VALUES (?, ?)",
		run.ID, run.StartedAt.UTC().Format(time.RFC3339Nano))
}

// FinishRun records the final tallies of a batch run.
func (s *Store) FinishRun(ctx context.Context, run Run) error {
	return s.execWithRetry(ctx,
		`UPDATE runs SET finished_at = ?, jobs = ?, succeeded = ?, succeeded_with_skips = ?, failed = ?
		 WHERE id = ?`,
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
		run.Jobs, run.Succeeded, run.SucceededWithSkips, run.Failed, run.ID)
}

// RecordJob appends one finished job outcome to its run.
func (s *Store) RecordJob(ctx context.Context, job Job) error {
	return s.execWithRetry(ctx,
		`INSERT INTO jobs (run_id, job_id, base, output, status, tracks, skipped_clips, error, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.RunID, job.JobID, job.Base, job.Output, string(job.Status),
		job.Tracks, job.SkippedClips, job.Error,
		job.FinishedAt.UTC().Format(time.RFC3339Nano))
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, jobs, succeeded, succeeded_with_skips, failed
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var startedAt, finished string
		if err := rows.Scan(&run.ID, &startedAt, &finished, &run.Jobs,
			&run.Succeeded, &run.SucceededWithSkips, &run.Failed); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
		if finished != "" {
			run.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RunJobs returns the recorded jobs of one run in completion order.
func (s *Store) RunJobs(ctx context.Context, runID string) ([]Job, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, job_id, base, output, status, tracks, skipped_clips, error, finished_at
		 FROM jobs WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		var (
			job      Job
			status   string
			finished string
		)
		if err := rows.Scan(&job.RunID, &job.JobID, &job.Base, &job.Output, &status,
			&job.Tracks, &job.SkippedClips, &job.Error, &finished); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		job.Status = Status(status)
		job.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}
