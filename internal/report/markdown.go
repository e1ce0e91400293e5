package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/wikicorpus/internal/model"
)

// MarkdownWriter outputs the run summary as GitHub Flavored Markdown.
type MarkdownWriter struct {
	baseWriter

	version string
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, version string) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		version:    version,
	}
}

// Write outputs the run summary in Markdown format.
func (w *MarkdownWriter) Write(run *model.Run) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, run)
	w.writeCorpus(md, run)
	w.writeTimings(md, run)
	w.writeArtifacts(md, run)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, run *model.Run) {
	md.H1("wikicorpus Run")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Category", "`" + run.Category + "`"},
			{"Run ID", strconv.FormatInt(int64(run.ID), 10)},
			{"Started", run.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Status", status(run)},
		},
	})
	md.PlainText("")

	switch {
	case run.ErrorMessage != "":
		md.Cautionf("The run stopped early: %s", run.ErrorMessage)
	case run.Skipped > 0:
		md.Note(fmt.Sprintf("%d title(s) had no extractable text and were skipped.", run.Skipped))
	default:
		md.Tip("Every listed title was harvested.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeCorpus(md *markdown.Markdown, run *model.Run) {
	md.H2("Corpus")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Categories completed", strconv.FormatInt(run.CategoriesCompleted, 10)},
			{"Titles listed", strconv.Itoa(len(run.Titles))},
			{"Articles written", strconv.FormatInt(run.Stats.Count, 10)},
			{"Titles skipped", strconv.FormatInt(run.Skipped, 10)},
			{"Title bytes", strconv.FormatInt(run.Stats.TitleSize, 10)},
			{"Text bytes", strconv.FormatInt(run.Stats.TextSize, 10)},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeTimings(md *markdown.Markdown, run *model.Run) {
	if len(run.StepTimings) == 0 {
		return
	}

	md.H2("Steps")
	md.PlainText("")

	rows := make([][]string, len(run.StepTimings))
	for i, st := range run.StepTimings {
		rows[i] = []string{st.Step, st.Duration.Round(time.Millisecond).String()}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Step", "Duration"},
		Rows:   rows,
	})
	md.PlainText("")

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Time per step (ms)"),
		piechart.WithShowData(true),
	)
	for _, st := range run.StepTimings {
		if ms := st.Duration.Milliseconds(); ms > 0 {
			chart.LabelAndIntValue(st.Step, uint64(ms))
		}
	}
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeArtifacts(md *markdown.Markdown, run *model.Run) {
	md.H2("Artifacts")
	md.PlainText("")
	md.BulletList(
		"Titles: `"+run.TitlesFile+"`",
		"Corpus: `"+run.CorpusFile+"`",
		"Statistics: `"+run.StatsFile+"`",
	)
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	if w.version != "" {
		md.PlainTextf("*Generated by [wikicorpus](https://github.com/nao1215/wikicorpus) %s*", w.version)
		return
	}
	md.PlainText("*Generated by [wikicorpus](https://github.com/nao1215/wikicorpus)*")
}
