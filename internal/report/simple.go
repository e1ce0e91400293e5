package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/wikicorpus/internal/model"
)

// SimpleWriter outputs a plain-text summary for terminal display.
type SimpleWriter struct {
	baseWriter
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer) *SimpleWriter {
	return &SimpleWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the run summary in plain text.
func (w *SimpleWriter) Write(run *model.Run) (int, error) {
	var sb strings.Builder

	rule := strings.Repeat("-", 60)
	fmt.Fprintln(&sb, rule)
	fmt.Fprintf(&sb, "Category:             %s\n", run.Category)
	fmt.Fprintf(&sb, "Run ID:               %d\n", run.ID)
	fmt.Fprintf(&sb, "Status:               %s\n", status(run))
	fmt.Fprintln(&sb, rule)
	fmt.Fprintf(&sb, "Categories completed: %d\n", run.CategoriesCompleted)
	fmt.Fprintf(&sb, "Titles listed:        %d\n", len(run.Titles))
	fmt.Fprintf(&sb, "Articles written:     %d\n", run.Stats.Count)
	fmt.Fprintf(&sb, "Titles skipped:       %d\n", run.Skipped)
	fmt.Fprintf(&sb, "Title bytes:          %d\n", run.Stats.TitleSize)
	fmt.Fprintf(&sb, "Text bytes:           %d\n", run.Stats.TextSize)
	if len(run.StepTimings) > 0 {
		fmt.Fprintln(&sb, rule)
		for _, st := range run.StepTimings {
			fmt.Fprintf(&sb, "  %-20s%s\n", st.Step, st.Duration.Round(time.Millisecond))
		}
	}
	fmt.Fprintln(&sb, rule)

	return io.WriteString(w.output, sb.String())
}
