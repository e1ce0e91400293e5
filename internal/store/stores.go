package store

import (
	"errors"
	"path/filepath"
)

// Stores bundles the two crawl stores kept in one directory.
type Stores struct {
	Titles     *TitleStore
	Categories *CategoryStore
}

// OpenStores opens the title and category stores inside dir.
func OpenStores(dir string, opts Options) (*Stores, error) {
	titles, err := OpenTitles(dir, opts)
	if err != nil {
		return nil, err
	}

	kv, err := Open(filepath.Join(dir, CategoriesFile), opts)
	if err != nil {
		_ = titles.Close()
		return nil, err
	}

	return &Stores{
		Titles:     titles,
		Categories: NewCategoryStore(kv),
	}, nil
}

// OpenTitles opens only the title store inside dir.
func OpenTitles(dir string, opts Options) (*TitleStore, error) {
	kv, err := Open(filepath.Join(dir, TitlesFile), opts)
	if err != nil {
		return nil, err
	}
	return NewTitleStore(kv), nil
}

// Close closes both stores.
func (s *Stores) Close() error {
	return errors.Join(s.Titles.Close(), s.Categories.Close())
}
