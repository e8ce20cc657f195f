package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run kinds recorded in scrape_runs
const (
	RunKindImport    = "import"
	RunKindTranslate = "translate"
)

// Run is one import or translation pass
type Run struct {
	ID           uuid.UUID
	Kind         string
	Version      string
	StartedAt    time.Time
	FinishedAt   *time.Time
	Total        int
	Created      int
	Updated      int
	Failed       int
	Placeholders int
	Conflicts    int
	Error        *string
}

// RunStore handles database operations for scrape_runs
type RunStore struct {
	db *DB
}

// NewRunStore creates a new RunStore
func NewRunStore(db *DB) *RunStore {
	return &RunStore{db: db}
}

// StartRun records the beginning of a run and returns it
func (s *RunStore) StartRun(ctx context.Context, kind, version string) (*Run, error) {
	run := &Run{
		ID:        uuid.New(),
		Kind:      kind,
		Version:   version,
		StartedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	query := s.db.rebind(`INSERT INTO scrape_runs (id, kind, version, started_at) VALUES (?, ?, ?, ?)`)
	if _, err := s.db.ExecContext(ctx, query, run.ID, run.Kind, run.Version, run.StartedAt); err != nil {
		return nil, fmt.Errorf("failed to start run: %w", err)
	}
	return run, nil
}

// FinishRun stores the final counters of a run. runErr, if non-nil, is
// recorded as the reason the run stopped.
func (s *RunStore) FinishRun(ctx context.Context, run *Run, runErr error) error {
	finished := time.Now().UTC().Truncate(time.Microsecond)
	run.FinishedAt = &finished
	if runErr != nil {
		msg := runErr.Error()
		run.Error = &msg
	}

	query := s.db.rebind(`
		UPDATE scrape_runs SET
			finished_at = ?,
			total = ?,
			created = ?,
			updated = ?,
			failed = ?,
			placeholders = ?,
			conflicts = ?,
			error = ?
		WHERE id = ?
	`)
	_, err := s.db.ExecContext(ctx, query,
		run.FinishedAt,
		run.Total,
		run.Created,
		run.Updated,
		run.Failed,
		run.Placeholders,
		run.Conflicts,
		run.Error,
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run %s: %w", run.ID, err)
	}
	return nil
}

// LatestRuns returns up to limit runs, newest first
func (s *RunStore) LatestRuns(ctx context.Context, limit int) ([]Run, error) {
	query := s.db.rebind(`
		SELECT id, kind, version, started_at, finished_at, total, created, updated,
		       failed, placeholders, conflicts, error
		FROM scrape_runs
		ORDER BY started_at DESC
		LIMIT ?
	`)

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		err := rows.Scan(
			&r.ID,
			&r.Kind,
			&r.Version,
			&r.StartedAt,
			&r.FinishedAt,
			&r.Total,
			&r.Created,
			&r.Updated,
			&r.Failed,
			&r.Placeholders,
			&r.Conflicts,
			&r.Error,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}

	return runs, rows.Err()
}
