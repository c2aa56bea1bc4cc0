package normalizer

// Summary contains statistics about a normalizer run.
type Summary struct {
	// RunID identifies the run in logs and in the journal.
	RunID string `json:"run_id"`
	// Root is the directory that was walked.
	Root string `json:"root"`
	// DryRun is true when no file was written.
	DryRun bool `json:"dry_run"`
	// FilesSeen is the number of regular files found under Root.
	FilesSeen int `json:"files_seen"`
	// FilesSkipped is the number of files without the Markdown extension.
	FilesSkipped int `json:"files_skipped"`
	// FilesProcessed is the number of Markdown files processed without error.
	FilesProcessed int `json:"files_processed"`
	// FilesChanged is the number of files whose content changed (or would change).
	FilesChanged int `json:"files_changed"`
	// AnchorsRewritten is the number of references pointed at a header slug.
	AnchorsRewritten int `json:"anchors_rewritten"`
	// AnchorsUnmatched is the number of references naming no header in their file.
	AnchorsUnmatched int `json:"anchors_unmatched"`
	// Errors is the number of files that failed.
	Errors int `json:"errors"`
}

// Add folds the outcome of one file into the summary.
func (s *Summary) Add(res Result, err error) {
	s.FilesSeen++
	switch {
	case err != nil:
		s.Errors++
	case res.Skipped:
		s.FilesSkipped++
	default:
		s.FilesProcessed++
		s.AnchorsRewritten += res.Rewritten
		s.AnchorsUnmatched += res.Unmatched
		if res.Changed {
			s.FilesChanged++
		}
	}
}
