package normalizer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"anchornorm/internal/contextutil"
	"anchornorm/internal/scan"
	"anchornorm/internal/storage"
)

// FileProcessor normalizes a single file. *Processor implements it.
type FileProcessor interface {
	ProcessFile(ctx context.Context, path string) (Result, error)
	DryRun() bool
}

// Pipeline walks a directory tree and normalizes every Markdown file in it,
// one file at a time.
type Pipeline struct {
	scanner   *scan.Scanner
	processor FileProcessor
	keepGoing bool
	runs      storage.RunStore
	files     storage.FileStore
}

// NewPipeline creates a new normalizer pipeline. With keepGoing unset the
// first file error stops the run; otherwise failures are logged and counted.
func NewPipeline(scanner *scan.Scanner, processor FileProcessor, keepGoing bool) *Pipeline {
	return &Pipeline{
		scanner:   scanner,
		processor: processor,
		keepGoing: keepGoing,
	}
}

// WithJournal records every run and file outcome in the given stores.
func (p *Pipeline) WithJournal(runs storage.RunStore, files storage.FileStore) *Pipeline {
	p.runs = runs
	p.files = files
	return p
}

// Run normalizes every Markdown file under root.
// The returned summary is populated even when an error is returned.
func (p *Pipeline) Run(ctx context.Context, root string) (*Summary, error) {
	summary := &Summary{
		RunID:  uuid.New().String(),
		Root:   root,
		DryRun: p.processor.DryRun(),
	}

	logger := contextutil.LoggerFromContext(ctx).With("run_id", summary.RunID, "root", root)
	ctx = contextutil.WithLogger(ctx, logger)

	run := p.startRun(ctx, logger, summary)
	defer p.finishRun(ctx, logger, run, summary)

	scannedFiles, err := p.scanner.Scan(ctx, root)
	if err != nil {
		return summary, fmt.Errorf("failed to scan tree: %w", err)
	}

	logger.InfoContext(ctx, "starting normalization", "total_files", len(scannedFiles), "dry_run", summary.DryRun)

	for _, file := range scannedFiles {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		res, err := p.processor.ProcessFile(ctx, file.AbsPath)
		summary.Add(res, err)
		if !res.Skipped {
			p.recordFile(ctx, logger, run, file.RelPath, res, err)
		}

		if err != nil {
			if !p.keepGoing {
				return summary, err
			}
			logger.ErrorContext(ctx, "failed to normalize file", "rel_path", file.RelPath, "error", err)
			continue
		}
	}

	logger.InfoContext(ctx, "normalization completed",
		"files", summary.FilesProcessed,
		"skipped", summary.FilesSkipped,
		"changed", summary.FilesChanged,
		"rewritten", summary.AnchorsRewritten,
		"unmatched", summary.AnchorsUnmatched,
		"errors", summary.Errors,
	)

	if summary.Errors > 0 {
		return summary, fmt.Errorf("normalization completed with %d errors", summary.Errors)
	}

	return summary, nil
}

// startRun opens a journal run. Journal failures are logged and disable the
// journal for this run; they never stop rewriting.
func (p *Pipeline) startRun(ctx context.Context, logger *slog.Logger, summary *Summary) *storage.RunRecord {
	if p.runs == nil {
		return nil
	}

	run := &storage.RunRecord{
		ID:     summary.RunID,
		Root:   summary.Root,
		DryRun: summary.DryRun,
	}
	if err := p.runs.Start(ctx, run); err != nil {
		logger.WarnContext(ctx, "failed to start journal run", "error", err)
		return nil
	}
	return run
}

func (p *Pipeline) finishRun(ctx context.Context, logger *slog.Logger, run *storage.RunRecord, summary *Summary) {
	if run == nil {
		return
	}

	run.Files = summary.FilesProcessed
	run.Changed = summary.FilesChanged
	run.Rewritten = summary.AnchorsRewritten
	run.Errors = summary.Errors

	// The run's own context may already be cancelled.
	if err := p.runs.Finish(context.WithoutCancel(ctx), run); err != nil {
		logger.WarnContext(ctx, "failed to finish journal run", "error", err)
	}
}

func (p *Pipeline) recordFile(ctx context.Context, logger *slog.Logger, run *storage.RunRecord, relPath string, res Result, fileErr error) {
	if run == nil || p.files == nil {
		return
	}

	rec := &storage.FileRecord{
		RunID:      run.ID,
		RelPath:    relPath,
		HashBefore: res.HashBefore,
		HashAfter:  res.HashAfter,
		Rewritten:  res.Rewritten,
		Unmatched:  res.Unmatched,
		Changed:    res.Changed,
	}
	if fileErr != nil {
		rec.Error = fileErr.Error()
	}

	if err := p.files.Insert(ctx, rec); err != nil {
		logger.WarnContext(ctx, "failed to record file result", "rel_path", relPath, "error", err)
	}
}
