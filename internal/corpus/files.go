package corpus

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/nao1215/wikicorpus/internal/model"
)

// filePermission is the mode of every artifact written by this package.
const filePermission = 0o600

// WriteTitles writes titles to path as a compact JSON array.
func WriteTitles(path string, titles []string) error {
	if titles == nil {
		titles = []string{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(titles); err != nil {
		return fmt.Errorf("failed to encode titles: %w", err)
	}

	if err := os.WriteFile(path, bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), filePermission); err != nil {
		return fmt.Errorf("failed to write titles file: %w", err)
	}
	return nil
}

// ReadTitles reads a titles array written by WriteTitles.
func ReadTitles(path string) ([]string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is an explicit CLI argument
	if err != nil {
		return nil, fmt.Errorf("failed to read titles file: %w", err)
	}

	var titles []string
	if err := json.Unmarshal(data, &titles); err != nil {
		return nil, fmt.Errorf("failed to parse titles file: %w", err)
	}
	return titles, nil
}

// WriteStats writes the statistics record to path, indented by four spaces
// with keys in sorted order.
func WriteStats(path string, stats model.Stats) error {
	data, err := json.MarshalIndent(stats, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode statistics: %w", err)
	}
	if err := os.WriteFile(path, data, filePermission); err != nil {
		return fmt.Errorf("failed to write statistics file: %w", err)
	}
	return nil
}

// ReadStats reads a statistics record written by WriteStats.
func ReadStats(path string) (model.Stats, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is an explicit CLI argument
	if err != nil {
		return model.Stats{}, fmt.Errorf("failed to read statistics file: %w", err)
	}

	var stats model.Stats
	if err := json.Unmarshal(data, &stats); err != nil {
		return model.Stats{}, fmt.Errorf("failed to parse statistics file: %w", err)
	}
	return stats, nil
}
