package store

import (
	"context"
	"fmt"

	"github.com/nao1215/wikicorpus/internal/model"
)

// CategoriesFile is the file name of the category store inside the store directory.
const CategoriesFile = "categories.db"

// CategoryStore maps category titles to run markers.
type CategoryStore struct {
	kv *KV
}

// NewCategoryStore wraps an opened KV as a category store.
func NewCategoryStore(kv *KV) *CategoryStore {
	return &CategoryStore{kv: kv}
}

// Marker returns the stored marker of the category, or the zero marker if
// the category has never been seen.
func (s *CategoryStore) Marker(ctx context.Context, title string) (model.Marker, error) {
	v, err := s.kv.Get(ctx, []byte(title), model.ZeroMarker.Bytes())
	if err != nil {
		return model.ZeroMarker, err
	}
	m, err := model.MarkerFromBytes(v)
	if err != nil {
		return model.ZeroMarker, fmt.Errorf("category %q: %w", title, err)
	}
	return m, nil
}

// SetMarker overwrites the marker of the category.
func (s *CategoryStore) SetMarker(ctx context.Context, title string, m model.Marker) error {
	return s.kv.Set(ctx, []byte(title), m.Bytes())
}

// Claim marks the category in progress for run if, and only if, its stored
// marker sorts strictly below the run's marker. The comparison and the write
// happen in a single statement. It reports whether the claim succeeded.
func (s *CategoryStore) Claim(ctx context.Context, title string, run model.RunID) (bool, error) {
	query := `
	INSERT INTO kv (key, value) VALUES (?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value
	WHERE kv.value < excluded.value
	`
	res, err := s.kv.db.ExecContext(ctx, query, []byte(title), run.Marker().Bytes())
	if err != nil {
		return false, fmt.Errorf("failed to claim category %q: %w", title, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to claim category %q: %w", title, err)
	}
	return n > 0, nil
}

// Complete marks the category completed for the current run.
func (s *CategoryStore) Complete(ctx context.Context, title string) error {
	if err := s.SetMarker(ctx, title, model.MaxMarker); err != nil {
		return fmt.Errorf("failed to complete category %q: %w", title, err)
	}
	return nil
}

// CountMarker returns how many categories currently hold exactly marker m.
func (s *CategoryStore) CountMarker(ctx context.Context, m model.Marker) (int64, error) {
	var n int64
	err := s.kv.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM kv WHERE value = ?", m.Bytes()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count markers: %w", err)
	}
	return n, nil
}

// Close closes the underlying store.
func (s *CategoryStore) Close() error {
	return s.kv.Close()
}
