package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"anchornorm/internal/config"
	"anchornorm/internal/normalizer"
	"anchornorm/internal/scan"
	"anchornorm/internal/storage"
)

func runNormalize(cmd *cobra.Command, args []string) error {
	if err := applyColorMode(cmd); err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	root := args[0]
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("failed to open root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root %s is not a directory", root)
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	check, _ := cmd.Flags().GetBool("check")

	processor := normalizer.NewProcessor(cfg.Extension, dryRun || check)
	pipeline := normalizer.NewPipeline(scan.NewScanner(cfg.SkipDirs...), processor, cfg.KeepGoing)

	if cfg.JournalPath != "" {
		db, err := storage.New(cfg.JournalPath)
		if err != nil {
			return fmt.Errorf("failed to open journal: %w", err)
		}
		defer func() {
			_ = db.Close()
		}()

		if err := storage.Migrate(db); err != nil {
			return fmt.Errorf("failed to migrate journal: %w", err)
		}
		pipeline.WithJournal(storage.NewRunRepo(db), storage.NewFileRepo(db))
		slog.Info("Journal enabled", "path", cfg.JournalPath)
	}

	summary, runErr := pipeline.Run(cmd.Context(), root)
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		if err := writeSummaryJSON(cmd.OutOrStdout(), summary); err != nil {
			return err
		}
	} else {
		printSummary(cmd.OutOrStdout(), summary)
	}
	if runErr != nil {
		return runErr
	}

	if check && summary.FilesChanged > 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), color.YellowString("%d file(s) need normalizing; run without --check to fix", summary.FilesChanged))
		return errCheckFailed
	}

	return nil
}

// loadConfig loads the environment configuration and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		value, _ := flags.GetString("log-level")
		if cfg.LogLevel, err = config.ParseLevel(value); err != nil {
			return nil, err
		}
	}
	if flags.Changed("log-format") {
		cfg.LogFormat, _ = flags.GetString("log-format")
	}
	if flags.Changed("ext") {
		cfg.Extension, _ = flags.GetString("ext")
	}
	if flags.Changed("keep-going") {
		cfg.KeepGoing, _ = flags.GetBool("keep-going")
	}
	if flags.Changed("journal") {
		cfg.JournalPath, _ = flags.GetString("journal")
		if err := cfg.EnsureJournalDir(); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func printSummary(w io.Writer, s *normalizer.Summary) {
	if s == nil {
		return
	}

	verb := "changed"
	if s.DryRun {
		verb = "would change"
	}

	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(w, "%s Markdown files, %s %s, %s anchors rewritten, %s unmatched",
		bold(s.FilesProcessed),
		bold(s.FilesChanged), verb,
		color.GreenString("%d", s.AnchorsRewritten),
		color.YellowString("%d", s.AnchorsUnmatched),
	)
	if s.Errors > 0 {
		fmt.Fprintf(w, ", %s", color.RedString("%d errors", s.Errors))
	}
	fmt.Fprintln(w)
}

func writeSummaryJSON(w io.Writer, s *normalizer.Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	return nil
}
