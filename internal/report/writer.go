package report

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/nao1215/wikicorpus/internal/model"
)

// Writer renders a run summary.
type Writer interface {
	// Write outputs the summary and returns the number of bytes written.
	Write(run *model.Run) (int, error)
}

// MultiWriter writes to multiple Writers in order and stops on the first
// error.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the summary to all configured Writers.
func (m *MultiWriter) Write(run *model.Run) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(run)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// ForPath picks the writer matching the extension of path: JSON for
// ".json", plain text for ".txt", Markdown otherwise. version is recorded
// by the formats that carry it.
func ForPath(path string, output io.Writer, version string) Writer {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return NewJSONWriter(output, WithPrettyPrint(), WithVersion(version))
	case ".txt":
		return NewSimpleWriter(output)
	default:
		return NewMarkdownWriter(output, version)
	}
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// status returns a short status text of the run.
func status(run *model.Run) string {
	if run.ErrorMessage != "" {
		return "Error - " + run.ErrorMessage
	}
	return "Complete"
}
