package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_run_store.go -package=mocks anchornorm/internal/storage RunStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// RunStore defines the interface for run journal operations.
type RunStore interface {
	// Start records the beginning of a run. run.ID must be set.
	// StartedAt is filled in when zero.
	Start(ctx context.Context, run *RunRecord) error
	// Finish stores the final counters of a run and stamps FinishedAt.
	Finish(ctx context.Context, run *RunRecord) error
}

// RunRepo provides methods for run operations.
// It implements the RunStore interface.
type RunRepo struct {
	db *sql.DB
}

// NewRunRepo creates a new RunRepo.
func NewRunRepo(db *sql.DB) *RunRepo {
	return &RunRepo{db: db}
}

// Start inserts a new run row.
func (r *RunRepo) Start(ctx context.Context, run *RunRecord) error {
	if run.ID == "" {
		return fmt.Errorf("run ID is required")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO runs (id, root, dry_run, started_at) VALUES (?, ?, ?, ?)",
		run.ID, run.Root, run.DryRun, run.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// Finish updates the counters of an existing run and stamps FinishedAt.
// Returns ErrNotFound if the run was never started.
func (r *RunRepo) Finish(ctx context.Context, run *RunRecord) error {
	run.FinishedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, files = ?, changed = ?, rewritten = ?, errors = ?
		 WHERE id = ?`,
		run.FinishedAt, run.Files, run.Changed, run.Rewritten, run.Errors, run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID gets a run by its ID. Returns ErrNotFound if not found.
func (r *RunRepo) GetByID(ctx context.Context, id string) (*RunRecord, error) {
	var run RunRecord
	var finishedAt sql.NullTime

	err := r.db.QueryRowContext(ctx,
		`SELECT id, root, dry_run, started_at, finished_at, files, changed, rewritten, errors
		 FROM runs WHERE id = ?`,
		id,
	).Scan(&run.ID, &run.Root, &run.DryRun, &run.StartedAt, &finishedAt,
		&run.Files, &run.Changed, &run.Rewritten, &run.Errors)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	if finishedAt.Valid {
		run.FinishedAt = finishedAt.Time
	}

	return &run, nil
}
