package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// errCheckFailed is returned by --check when at least one file would change.
var errCheckFailed = errors.New("some files are not normalized")

// newRootCmd builds the command tree: the normalizer itself plus subcommands.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "anchornorm [flags] <root>",
		Short: "Normalize in-page Hugo ref anchors in Markdown files",
		Long: `anchornorm walks a directory tree and rewrites in-page ref links such as

  [Getting Started]({{< ref "#getting-started-guide" >}})

so that the anchor matches the slug of the section header with the same text.
Files are rewritten in place; no backup is kept.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runNormalize,
	}

	rootCmd.AddCommand(newOutlineCmd())

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug|info|warn|error); overrides LOG_LEVEL")
	rootCmd.PersistentFlags().String("log-format", "", "log format (text|json); overrides LOG_FORMAT")

	rootCmd.Flags().Bool("dry-run", false, "report what would change without writing files")
	rootCmd.Flags().Bool("check", false, "like --dry-run, but exit with status 1 if any file would change")
	rootCmd.Flags().Bool("keep-going", false, "continue with other files after a failure")
	rootCmd.Flags().String("journal", "", "record the run in this SQLite database")
	rootCmd.Flags().String("ext", "", "file name suffix of Markdown files (default .md)")
	rootCmd.Flags().Bool("json", false, "print the run summary as JSON")

	return rootCmd
}

func main() {
	// Interrupts are honoured between files; a file in flight is finished.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errCheckFailed) {
			fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		}
		stop()
		os.Exit(1)
	}
}

// applyColorMode sets the global color switch from the --color flag.
func applyColorMode(cmd *cobra.Command) error {
	mode, _ := cmd.Flags().GetString("color")
	switch mode {
	case "auto":
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		return fmt.Errorf("invalid --color value %q (want auto, on or off)", mode)
	}
	return nil
}
