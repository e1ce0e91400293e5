package crawler

import (
	"context"
	"fmt"
	"iter"
	"slices"
)

// TitleSource iterates the stored titles in forward key order.
type TitleSource interface {
	Titles(ctx context.Context) iter.Seq2[string, error]
}

// Export drains the title store into a sorted slice. The store is a set, so
// the result holds no duplicates.
func Export(ctx context.Context, src TitleSource) ([]string, error) {
	var titles []string
	for title, err := range src.Titles(ctx) {
		if err != nil {
			return nil, fmt.Errorf("failed to export titles: %w", err)
		}
		titles = append(titles, title)
	}
	slices.Sort(titles)
	return titles, nil
}
