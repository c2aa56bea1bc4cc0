package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_file_store.go -package=mocks anchornorm/internal/storage FileStore

import (
	"context"
	"database/sql"
	"fmt"
)

// FileStore defines the interface for per-file journal operations.
type FileStore interface {
	// Insert records the outcome for one file. The run must already exist.
	Insert(ctx context.Context, rec *FileRecord) error
	// ListByRun returns all file outcomes for a run, ordered by rel_path.
	ListByRun(ctx context.Context, runID string) ([]*FileRecord, error)
}

// FileRepo provides methods for file result operations.
// It implements the FileStore interface.
type FileRepo struct {
	db *sql.DB
}

// NewFileRepo creates a new FileRepo.
func NewFileRepo(db *sql.DB) *FileRepo {
	return &FileRepo{db: db}
}

// Insert records the outcome for one file.
func (r *FileRepo) Insert(ctx context.Context, rec *FileRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO file_results (run_id, rel_path, hash_before, hash_after, rewritten, unmatched, changed, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.RelPath, rec.HashBefore, rec.HashAfter, rec.Rewritten, rec.Unmatched, rec.Changed, rec.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to insert file result: %w", err)
	}
	return nil
}

// ListByRun returns all file outcomes for a run, ordered by rel_path.
// Returns an empty slice if the run recorded no files (not an error).
func (r *FileRepo) ListByRun(ctx context.Context, runID string) ([]*FileRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT run_id, rel_path, hash_before, hash_after, rewritten, unmatched, changed, error
		 FROM file_results WHERE run_id = ? ORDER BY rel_path`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query file results: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	records := []*FileRecord{}
	for rows.Next() {
		var rec FileRecord
		if err := rows.Scan(&rec.RunID, &rec.RelPath, &rec.HashBefore, &rec.HashAfter,
			&rec.Rewritten, &rec.Unmatched, &rec.Changed, &rec.Error); err != nil {
			return nil, fmt.Errorf("failed to scan file result: %w", err)
		}
		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}
