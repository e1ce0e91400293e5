package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/wikicorpus/internal/corpus"
)

// NewVerifyCmd creates the verify command.
func NewVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <corpus.json> <stat.json>",
		Short: "Check a corpus file against its statistics file",
		Long: `Verify streams the corpus file and checks that it is a single JSON
object of non-empty, unique titles mapped to non-empty texts, and that the
recomputed count and byte sizes equal the statistics file.

Examples:
  wikicorpus verify corpus.json stat.json`,
		Args: cobra.ExactArgs(2),
		RunE: runVerifyCmd,
	}
}

// runVerifyCmd executes the verify command.
func runVerifyCmd(cmd *cobra.Command, args []string) error {
	sum, err := corpus.Verify(args[0], args[1])
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "OK: %s\n", args[0])
	fmt.Fprintf(out, "  articles:     %d\n", sum.Stats.Count)
	fmt.Fprintf(out, "  title bytes:  %d\n", sum.Stats.TitleSize)
	fmt.Fprintf(out, "  text bytes:   %d\n", sum.Stats.TextSize)
	if sum.Stats.Count > 0 {
		fmt.Fprintf(out, "  longest text: %d bytes (%s)\n", sum.MaxTextSize, sum.MaxTextTitle)
	}
	return nil
}
