package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"anchornorm/internal/anchor"
)

func newOutlineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "outline <file>",
		Short: "Print the headings of a Markdown file with their anchor slugs",
		Long: `outline parses a Markdown file and lists every heading together with the
slug that in-page ref links should use. Headings that repeat an earlier slug
are flagged: a GitHub-style renderer suffixes them with -1, -2, ... and
anchornorm does not.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := applyColorMode(cmd); err != nil {
				return err
			}

			content, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			printOutline(cmd.OutOrStdout(), anchor.Outline(content))
			return nil
		},
	}
}

func printOutline(w io.Writer, headings []anchor.Heading) {
	if len(headings) == 0 {
		fmt.Fprintln(w, color.YellowString("no headings"))
		return
	}

	slug := color.New(color.FgCyan).SprintFunc()
	for _, h := range headings {
		indent := strings.Repeat("  ", h.Level-1)
		fmt.Fprintf(w, "%s%s %s  #%s", indent, strings.Repeat("#", h.Level), h.Text, slug(h.Slug))
		if h.Duplicate {
			fmt.Fprintf(w, "  %s", color.YellowString("(duplicate)"))
		}
		fmt.Fprintln(w)
	}
}
