package ledger

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped whenever schema.sql changes shape.
const schemaVersion = 1

// ErrSchemaMismatch indicates the ledger database was written by an
// incompatible version.
var ErrSchemaMismatch = errors.New("ledger schema version mismatch")

// Book outcome states.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
)

// Outcome is one book directory's result within a run.
type Outcome struct {
	RunID      string
	SourcePath string
	Author     string
	Title      string
	OutputPath string
	Status     string
	Reason     string
	UpdatedAt  time.Time
}

// Summary aggregates a run's outcomes by status.
type Summary struct {
	Completed int
	Failed    int
	Skipped   int
}

// Total returns the number of book directories the run touched.
func (s Summary) Total() int { return s.Completed + s.Failed + s.Skipped }

// Store is the SQLite-backed run ledger.
type Store struct {
	db   *sql.DB
	path string
}

// Open connects to (or creates) the ledger database under stateDir.
func Open(stateDir string) (*Store, error) {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure state directory: %w", err)
	}
	dbPath := filepath.Join(stateDir, "ledger.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open ledger db: %w", err)
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

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

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
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete the ledger to reset)",
			ErrSchemaMismatch, version, schemaVersion)
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
	return tx.Commit()
}

// Record upserts a book outcome keyed by source path. Later runs over the
// same directory replace the previous row.
func (s *Store) Record(ctx context.Context, outcome Outcome) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO book_outcomes (
            run_id, source_path, author, title, output_path, status, reason, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(source_path) DO UPDATE SET
            run_id = excluded.run_id,
            author = excluded.author,
            title = excluded.title,
            output_path = excluded.output_path,
            status = excluded.status,
            reason = excluded.reason,
            updated_at = excluded.updated_at`,
		outcome.RunID,
		outcome.SourcePath,
		outcome.Author,
		outcome.Title,
		outcome.OutputPath,
		outcome.Status,
		outcome.Reason,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("record outcome: %w", err)
	}
	return nil
}

// IsCompleted reports whether a directory already converted successfully
// in any previous run.
func (s *Store) IsCompleted(ctx context.Context, sourcePath string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM book_outcomes WHERE source_path = ? AND status = ?",
		sourcePath, StatusCompleted,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("query completion: %w", err)
	}
	return count > 0, nil
}

// RunSummary counts a run's outcomes by status.
func (s *Store) RunSummary(ctx context.Context, runID string) (Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT status, COUNT(1) FROM book_outcomes WHERE run_id = ? GROUP BY status", runID)
	if err != nil {
		return Summary{}, fmt.Errorf("query summary: %w", err)
	}
	defer rows.Close()

	var summary Summary
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return Summary{}, fmt.Errorf("scan summary row: %w", err)
		}
		switch status {
		case StatusCompleted:
			summary.Completed = count
		case StatusFailed:
			summary.Failed = count
		case StatusSkipped:
			summary.Skipped = count
		}
	}
	return summary, rows.Err()
}

// ListRun returns a run's outcomes ordered by source path.
func (s *Store) ListRun(ctx context.Context, runID string) ([]Outcome, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, source_path, author, title, output_path, status, reason, updated_at
         FROM book_outcomes WHERE run_id = ? ORDER BY source_path`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []Outcome
	for rows.Next() {
		var o Outcome
		var updated string
		if err := rows.Scan(&o.RunID, &o.SourcePath, &o.Author, &o.Title, &o.OutputPath, &o.Status, &o.Reason, &updated); err != nil {
			return nil, fmt.Errorf("scan outcome row: %w", err)
		}
		if ts, parseErr := time.Parse(time.RFC3339Nano, updated); parseErr == nil {
			o.UpdatedAt = ts
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}
