package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"linemark/internal/grammar"
	"linemark/internal/linediff"
	"linemark/internal/preview"
	"linemark/internal/render"
)

var diffCmd = &cobra.Command{
	Use:   "diff <old-file> <new-file>",
	Short: "Show the edit script between two renderings",
	Long: `Renders both files through the same grammar and prints the edit
script that transforms the first rendering into the second: retained
line runs, and replaced regions with their new content. Single-line
replacements additionally show which intra-line runs changed.`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

func init() {
	diffCmd.Flags().Bool("json", false, "emit the edit script as JSON")
	rootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	oldLines, err := readLines(args[:1])
	if err != nil {
		return err
	}
	newLines, err := readLines(args[1:])
	if err != nil {
		return err
	}

	doc, err := render.New(cfg.DocumentOptions()...)
	if err != nil {
		return fmt.Errorf("building grammar: %w", err)
	}
	oldRendered := doc.Parse(oldLines)
	script := doc.Update(newLines)

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(script)
	}
	printScript(cmd.OutOrStdout(), oldRendered, script)
	return nil
}

func printScript(w io.Writer, oldRendered []grammar.RenderedLine, script linediff.EditScript) {
	if script.Unchanged() {
		fmt.Fprintln(w, "no changes")
		return
	}
	for _, op := range script.Ops {
		switch op.Kind {
		case linediff.OpRetain:
			fmt.Fprintf(w, "retain %d\n", op.Count)
		case linediff.OpReplace:
			fmt.Fprintf(w, "replace %d lines at %d with %d lines\n", op.Old, op.Start, len(op.Lines))
			if op.Old == 1 && len(op.Lines) == 1 {
				before := preview.Unescape(oldRendered[op.Start].PlainText())
				after := preview.Unescape(op.Lines[0].PlainText())
				for _, seg := range linediff.RefineLinePair(before, after).New {
					if seg.Type == linediff.SegmentAdded {
						fmt.Fprintf(w, "  + %q\n", seg.Text)
					}
				}
			}
		}
	}
}
