package corpus

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/nao1215/wikicorpus/internal/model"
)

var (
	// ErrMalformedCorpus is returned when the corpus is not a JSON object of strings.
	ErrMalformedCorpus = errors.New("corpus is not an object of string values")

	// ErrDuplicateTitle is returned when a title occurs twice in the corpus.
	ErrDuplicateTitle = errors.New("duplicate title in corpus")

	// ErrEmptyValue is returned for an empty title or text.
	ErrEmptyValue = errors.New("empty title or text in corpus")

	// ErrStatsMismatch is returned when the statistics file disagrees with
	// the statistics recomputed from the corpus.
	ErrStatsMismatch = errors.New("statistics do not match corpus")
)

// Summary is the result of scanning a corpus.
type Summary struct {
	// Stats is recomputed from the corpus content.
	Stats model.Stats

	// MaxTextSize is the byte length of the longest text.
	MaxTextSize int64

	// MaxTextTitle is the title of the longest text.
	MaxTextTitle string
}

// Scan reads a corpus object from r one member at a time and recomputes its
// statistics.
func Scan(r io.Reader) (Summary, error) {
	dec := json.NewDecoder(bufio.NewReaderSize(r, defaultBufferSize))

	if err := expectDelim(dec, '{'); err != nil {
		return Summary{}, err
	}

	var sum Summary
	seen := make(map[string]struct{})
	for dec.More() {
		title, err := nextString(dec)
		if err != nil {
			return Summary{}, err
		}
		text, err := nextString(dec)
		if err != nil {
			return Summary{}, fmt.Errorf("title %q: %w", title, err)
		}

		if title == "" || text == "" {
			return Summary{}, fmt.Errorf("%w: title %q", ErrEmptyValue, title)
		}
		if _, dup := seen[title]; dup {
			return Summary{}, fmt.Errorf("%w: %q", ErrDuplicateTitle, title)
		}
		seen[title] = struct{}{}

		sum.Stats.Add(model.Pair{Title: title, Text: text})
		if size := int64(len(text)); size > sum.MaxTextSize {
			sum.MaxTextSize = size
			sum.MaxTextTitle = title
		}
	}

	if err := expectDelim(dec, '}'); err != nil {
		return Summary{}, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Summary{}, fmt.Errorf("%w: trailing data after object", ErrMalformedCorpus)
	}
	return sum, nil
}

// Verify scans the corpus at corpusPath and checks it against the statistics
// record at statsPath.
func Verify(corpusPath, statsPath string) (Summary, error) {
	want, err := ReadStats(statsPath)
	if err != nil {
		return Summary{}, err
	}

	f, err := os.Open(corpusPath) //nolint:gosec // path is an explicit CLI argument
	if err != nil {
		return Summary{}, fmt.Errorf("failed to open corpus file: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only

	sum, err := Scan(f)
	if err != nil {
		return Summary{}, err
	}
	if sum.Stats != want {
		return sum, fmt.Errorf("%w: file has %+v, corpus has %+v", ErrStatsMismatch, want, sum.Stats)
	}
	return sum, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedCorpus, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("%w: expected %q, got %v", ErrMalformedCorpus, want, tok)
	}
	return nil
}

func nextString(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedCorpus, err)
	}
	s, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("%w: unexpected %v", ErrMalformedCorpus, tok)
	}
	return s, nil
}
