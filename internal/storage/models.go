package storage

import "time"

// RunRecord represents one normalizer run over a directory tree.
type RunRecord struct {
	ID         string // UUID
	Root       string // Root directory passed on the command line
	DryRun     bool
	StartedAt  time.Time
	FinishedAt time.Time // Zero until Finish is called
	Files      int       // Markdown files processed
	Changed    int       // Files whose content changed (or would change in a dry run)
	Rewritten  int       // Anchor references rewritten
	Errors     int
}

// FileRecord represents the outcome for a single Markdown file within a run.
type FileRecord struct {
	RunID      string // Foreign key to runs.id
	RelPath    string // Path relative to the run root
	HashBefore string // SHA256 hex of the original content
	HashAfter  string // SHA256 hex of the rewritten content
	Rewritten  int
	Unmatched  int
	Changed    bool
	Error      string // Empty on success
}
