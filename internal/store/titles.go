package store

import (
	"context"
	"fmt"
	"iter"
)

// TitlesFile is the file name of the title store inside the store directory.
const TitlesFile = "titles.db"

// TitleStore is the membership set of article titles.
type TitleStore struct {
	kv *KV
}

// NewTitleStore wraps an opened KV as a title store.
func NewTitleStore(kv *KV) *TitleStore {
	return &TitleStore{kv: kv}
}

// Add inserts the title. Adding a title already present is a no-op.
func (s *TitleStore) Add(ctx context.Context, title string) error {
	_, err := s.kv.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO kv (key, value) VALUES (?, ?)",
		[]byte(title), []byte{},
	)
	if err != nil {
		return fmt.Errorf("failed to add title %q: %w", title, err)
	}
	return nil
}

// Contains reports whether the title is present.
func (s *TitleStore) Contains(ctx context.Context, title string) (bool, error) {
	return s.kv.Has(ctx, []byte(title))
}

// Len returns the number of stored titles.
func (s *TitleStore) Len(ctx context.Context) (int64, error) {
	return s.kv.Len(ctx)
}

// Titles iterates over the stored titles in forward key order.
func (s *TitleStore) Titles(ctx context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for key, err := range s.kv.Keys(ctx) {
			if err != nil {
				yield("", err)
				return
			}
			if !yield(string(key), nil) {
				return
			}
		}
	}
}

// Close closes the underlying store.
func (s *TitleStore) Close() error {
	return s.kv.Close()
}
