package corpus

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"

	"github.com/nao1215/wikicorpus/internal/model"
)

// defaultBufferSize is the write buffer of the corpus stream.
const defaultBufferSize = 1 << 16

// ErrWriterClosed is returned when writing to a closed Writer.
var ErrWriterClosed = errors.New("corpus writer is closed")

// Writer streams pairs as a single JSON object whose keys are titles and
// whose values are texts. Pairs are encoded as they arrive.
type Writer struct {
	out *bufio.Writer

	// scratch holds one encoded string at a time.
	scratch bytes.Buffer
	enc     *json.Encoder

	stats  model.Stats
	opened bool
	closed bool
}

// NewWriter creates a Writer on top of w. Nothing is written until the
// first pair or Close.
func NewWriter(w io.Writer) *Writer {
	cw := &Writer{out: bufio.NewWriterSize(w, defaultBufferSize)}
	cw.enc = json.NewEncoder(&cw.scratch)
	cw.enc.SetEscapeHTML(false)
	return cw
}

// WritePair appends one member to the object.
func (w *Writer) WritePair(p model.Pair) error {
	if w.closed {
		return ErrWriterClosed
	}

	sep := byte(',')
	if !w.opened {
		sep = '{'
		w.opened = true
	}
	if err := w.out.WriteByte(sep); err != nil {
		return fmt.Errorf("failed to write separator: %w", err)
	}
	if err := w.writeString(p.Title); err != nil {
		return err
	}
	if err := w.out.WriteByte(':'); err != nil {
		return fmt.Errorf("failed to write separator: %w", err)
	}
	if err := w.writeString(p.Text); err != nil {
		return err
	}

	w.stats.Add(p)
	return nil
}

// writeString writes s as a JSON string literal.
func (w *Writer) writeString(s string) error {
	w.scratch.Reset()
	if err := w.enc.Encode(s); err != nil {
		return fmt.Errorf("failed to encode string: %w", err)
	}
	// Encode terminates every value with a newline.
	if _, err := w.out.Write(bytes.TrimSuffix(w.scratch.Bytes(), []byte{'\n'})); err != nil {
		return fmt.Errorf("failed to write string: %w", err)
	}
	return nil
}

// Close terminates the object and flushes the buffer. It does not close the
// underlying writer.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if !w.opened {
		if err := w.out.WriteByte('{'); err != nil {
			return fmt.Errorf("failed to write corpus: %w", err)
		}
	}
	if err := w.out.WriteByte('}'); err != nil {
		return fmt.Errorf("failed to write corpus: %w", err)
	}
	if err := w.out.Flush(); err != nil {
		return fmt.Errorf("failed to flush corpus: %w", err)
	}
	return nil
}

// Stats returns the statistics of the pairs written so far.
func (w *Writer) Stats() model.Stats {
	return w.stats
}

// Write drains pairs into a corpus file at path and returns its statistics.
// The first error from pairs stops the stream and is returned together with
// the statistics of what was written before it. The file is then left
// without its closing brace.
func Write(pairs iter.Seq2[model.Pair, error], path string) (stats model.Stats, err error) {
	f, err := os.Create(path) //nolint:gosec // path is an explicit CLI argument
	if err != nil {
		return model.Stats{}, fmt.Errorf("failed to create corpus file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close corpus file: %w", cerr)
		}
	}()

	w := NewWriter(f)
	for pair, perr := range pairs {
		if perr != nil {
			// Keep what was already encoded on disk.
			_ = w.out.Flush() //nolint:errcheck // the stream error takes precedence
			return w.Stats(), perr
		}
		if err := w.WritePair(pair); err != nil {
			return w.Stats(), err
		}
	}

	if err := w.Close(); err != nil {
		return w.Stats(), err
	}
	return w.Stats(), nil
}
