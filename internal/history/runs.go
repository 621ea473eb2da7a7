package history

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// Run statuses.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Run is one journal entry.
type Run struct {
	ID           string
	MediaSource  string
	Language     string
	Status       string
	Sentences    int
	WrittenPaths []string
	Error        string
	StartedAt    time.Time
	FinishedAt   *time.Time
}

// RunRepository is the data access layer for the run journal.
type RunRepository struct {
	db *DB
}

// NewRunRepository creates a repository over an open journal database.
func NewRunRepository(db *DB) *RunRepository {
	return &RunRepository{db: db}
}

// Start records the beginning of a run.
func (r *RunRepository) Start(ctx context.Context, id, mediaSource string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO runs (id, media_source, status, started_at) VALUES (?, ?, ?, ?)`,
		id, mediaSource, RunStatusRunning, time.Now().UTC())
	return err
}

// Complete marks a run as finished successfully.
func (r *RunRepository) Complete(ctx context.Context, id, language string, sentences int, writtenPaths []string) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, language = ?, sentences = ?, written_paths = ?, finished_at = ? WHERE id = ?`,
		RunStatusCompleted, language, sentences, strings.Join(writtenPaths, "\n"), now, id)
	return err
}

// Fail marks a run as failed with the fatal error text.
func (r *RunRepository) Fail(ctx context.Context, id, errMsg string) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, error = ?, finished_at = ? WHERE id = ?`,
		RunStatusFailed, errMsg, now, id)
	return err
}

// GetByID returns one run, or nil when it does not exist.
func (r *RunRepository) GetByID(ctx context.Context, id string) (*Run, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, media_source, language, status, sentences, written_paths, error, started_at, finished_at
		 FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return run, err
}

// ListRecent returns the most recent runs, newest first.
func (r *RunRepository) ListRecent(ctx context.Context, limit int) ([]Run, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, media_source, language, status, sentences, written_paths, error, started_at, finished_at
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var run Run
	var paths string
	if err := s.Scan(&run.ID, &run.MediaSource, &run.Language, &run.Status, &run.Sentences,
		&paths, &run.Error, &run.StartedAt, &run.FinishedAt); err != nil {
		return nil, err
	}
	if paths != "" {
		run.WrittenPaths = strings.Split(paths, "\n")
	}
	return &run, nil
}
