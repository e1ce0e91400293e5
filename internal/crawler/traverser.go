package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/wikicorpus/internal/model"
	"github.com/nao1215/wikicorpus/internal/retry"
)

// MemberLister lists the members of a category.
type MemberLister interface {
	CategoryMembers(ctx context.Context, category string) ([]model.Member, error)
}

// TitleStore receives discovered article titles. Add must be idempotent.
type TitleStore interface {
	Add(ctx context.Context, title string) error
}

// CategoryStore holds the per-run category markers.
type CategoryStore interface {
	// Claim marks the category in progress for run if its marker sorts
	// below the run's marker, and reports whether it did.
	Claim(ctx context.Context, title string, run model.RunID) (bool, error)

	// SetMarker overwrites the category's marker.
	SetMarker(ctx context.Context, title string, m model.Marker) error

	// Complete marks the category completed for the current run.
	Complete(ctx context.Context, title string) error
}

// Traverser walks the category graph depth-first.
//
// A category is walked only after Claim succeeds, and Claim can only succeed
// while the stored marker is below the run marker. An ancestor frame keeps
// its category at the run marker until it finishes, so a cycle back to an
// active ancestor is skipped; afterwards the category holds the max marker
// and is never walked again in the same run.
//
// The traversal is single-threaded. Running it from several goroutines
// against the same stores relies on Claim being an atomic compare-and-set.
type Traverser struct {
	lister     MemberLister
	titles     TitleStore
	categories CategoryStore

	// run is the marker value of this invocation.
	run model.RunID

	// policy retries a category's member loop from the beginning.
	policy retry.Policy

	logger *slog.Logger

	// completed counts categories completed by this traverser.
	completed int64

	// articles counts article members seen, including duplicates.
	articles int64
}

// TraverserOption configures a Traverser.
type TraverserOption func(*Traverser)

// WithTraverserLogger sets a custom logger.
func WithTraverserLogger(logger *slog.Logger) TraverserOption {
	return func(t *Traverser) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithTraverserRetry sets the retry policy for category member loops.
func WithTraverserRetry(p retry.Policy) TraverserOption {
	return func(t *Traverser) {
		t.policy = p
	}
}

// NewTraverser creates a Traverser for one run.
func NewTraverser(lister MemberLister, titles TitleStore, categories CategoryStore, run model.RunID, opts ...TraverserOption) *Traverser {
	t := &Traverser{
		lister:     lister,
		titles:     titles,
		categories: categories,
		run:        run,
		policy:     retry.Unbounded(),
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Traverse walks the graph reachable from root and returns once every
// reachable category has been completed in this run. The root is always
// walked: it is stamped in progress unconditionally, so member articles added
// to it since an earlier run are picked up while completed subcategories are
// still skipped.
func (t *Traverser) Traverse(ctx context.Context, root string) error {
	start := time.Now()

	err := t.policy.Do(ctx, func(ctx context.Context) error {
		return t.categories.SetMarker(ctx, root, t.run.Marker())
	}, t.notify(root))
	if err != nil {
		return fmt.Errorf("failed to mark root category %q: %w", root, err)
	}

	if err := t.walk(ctx, root); err != nil {
		return err
	}

	err = t.policy.Do(ctx, func(ctx context.Context) error {
		return t.categories.Complete(ctx, root)
	}, t.notify(root))
	if err != nil {
		return fmt.Errorf("failed to complete root category %q: %w", root, err)
	}
	t.completed++

	t.logger.Info("traversal complete",
		"category", root,
		"categories", t.completed,
		"articles", t.articles,
		"elapsed", time.Since(start),
	)
	return nil
}

// Completed returns the number of categories completed so far.
func (t *Traverser) Completed() int64 {
	return t.completed
}

// walk processes one category's member loop under the retry policy.
func (t *Traverser) walk(ctx context.Context, category string) error {
	t.logger.Info("walking category", "category", category)

	return t.policy.Do(ctx, func(ctx context.Context) error {
		return t.walkMembers(ctx, category)
	}, t.notify(category))
}

// walkMembers runs the member loop once from the beginning. A retry may
// re-add titles and re-check children; both are no-ops the second time.
func (t *Traverser) walkMembers(ctx context.Context, category string) error {
	members, err := t.lister.CategoryMembers(ctx, category)
	if err != nil {
		return err
	}

	for _, m := range members {
		switch m.Kind {
		case model.KindArticle:
			if err := t.titles.Add(ctx, m.Title); err != nil {
				return err
			}
			t.articles++

		case model.KindCategory:
			claimed, err := t.categories.Claim(ctx, m.Title, t.run)
			if err != nil {
				return err
			}
			if !claimed {
				t.logger.Debug("skipping category", "category", m.Title, "parent", category)
				continue
			}
			// The child retries on its own. If it still fails the
			// whole traversal stops: retrying here would skip the child,
			// which now holds the in-progress marker.
			if err := t.walk(ctx, m.Title); err != nil {
				return retry.Permanent(err)
			}
			if err := t.categories.Complete(ctx, m.Title); err != nil {
				return err
			}
			t.completed++

		default:
			t.logger.Debug("ignoring member", "title", m.Title, "kind", m.Kind)
		}
	}

	return nil
}

// notify logs a failed attempt before it is retried.
func (t *Traverser) notify(category string) retry.Notify {
	return func(err error, attempt int, wait time.Duration) {
		t.logger.Warn("category walk failed, retrying",
			"category", category,
			"attempt", attempt,
			"wait", wait,
			"error", err,
		)
	}
}
