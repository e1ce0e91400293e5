package crawler

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/nao1215/wikicorpus/internal/model"
	"github.com/nao1215/wikicorpus/internal/retry"
	"github.com/nao1215/wikicorpus/internal/wiki"
)

const (
	// DefaultBatchSize is the number of titles fetched together.
	DefaultBatchSize = 1 << 10

	// DefaultPacingInterval is the minimum time between two batch starts.
	DefaultPacingInterval = 15 * time.Second
)

// TextSource issues one text-extraction request and returns the raw
// response document. Non-success statuses are reported as *wiki.StatusError.
type TextSource interface {
	Extract(ctx context.Context, title string) ([]byte, error)
}

// Fetcher resolves titles to their extracted text.
//
// Titles are split into batches in input order. All requests of a batch are
// issued at once and awaited together; batches never overlap. The start of
// a batch is held back until PacingInterval has passed since the start of
// the previous one.
type Fetcher struct {
	source TextSource

	// batchSize is the number of titles per batch.
	batchSize int

	// interval is the minimum spacing between batch starts.
	interval time.Duration

	// limiter enforces interval with a single token.
	limiter *rate.Limiter

	// maxInFlight caps concurrent requests inside a batch. 0 means one
	// request per title.
	maxInFlight int

	// requestPolicy retries one title's request on a non-success status
	// or an unreadable document.
	requestPolicy retry.Policy

	// batchPolicy retries a whole batch on transport errors.
	batchPolicy retry.Policy

	logger *slog.Logger

	// skipped counts titles without extractable text.
	skipped int64
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithBatchSize sets the number of titles per batch.
func WithBatchSize(n int) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.batchSize = n
		}
	}
}

// WithPacingInterval sets the minimum spacing between batch starts.
// Zero disables pacing.
func WithPacingInterval(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if d >= 0 {
			f.interval = d
		}
	}
}

// WithMaxInFlight caps the number of concurrent requests inside a batch.
func WithMaxInFlight(n int) FetcherOption {
	return func(f *Fetcher) {
		if n >= 0 {
			f.maxInFlight = n
		}
	}
}

// WithRequestRetry sets the retry policy of single requests.
func WithRequestRetry(p retry.Policy) FetcherOption {
	return func(f *Fetcher) {
		f.requestPolicy = p
	}
}

// WithBatchRetry sets the retry policy of whole batches.
func WithBatchRetry(p retry.Policy) FetcherOption {
	return func(f *Fetcher) {
		f.batchPolicy = p
	}
}

// WithFetcherLogger sets a custom logger.
func WithFetcherLogger(logger *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewFetcher creates a Fetcher reading from source.
func NewFetcher(source TextSource, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		source:        source,
		batchSize:     DefaultBatchSize,
		interval:      DefaultPacingInterval,
		requestPolicy: retry.Unbounded(),
		batchPolicy:   retry.Unbounded(),
		logger:        slog.Default(),
	}

	for _, opt := range opts {
		opt(f)
	}

	f.limiter = newPacer(f.interval)
	return f
}

// newPacer returns a limiter that lets one batch start per interval.
func newPacer(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

// Skipped returns the number of titles skipped for lack of text.
func (f *Fetcher) Skipped() int64 {
	return f.skipped
}

// FetchAll lazily yields one pair per title that has extractable text.
// Titles without text are logged and skipped. Iteration ends early with a
// non-nil error on a title mismatch, on context cancellation, or when a
// bounded retry policy gives up. Stopping the loop stops fetching.
func (f *Fetcher) FetchAll(ctx context.Context, titles []string) iter.Seq2[model.Pair, error] {
	return func(yield func(model.Pair, error) bool) {
		for start := 0; start < len(titles); start += f.batchSize {
			batch := titles[start:min(start+f.batchSize, len(titles))]

			if err := f.limiter.Wait(ctx); err != nil {
				yield(model.Pair{}, fmt.Errorf("pacing wait: %w", err))
				return
			}

			f.logger.Info("fetching batch",
				"start", start,
				"size", len(batch),
				"total", len(titles),
			)
			began := time.Now()

			pages, err := f.fetchBatch(ctx, batch)
			if err != nil {
				yield(model.Pair{}, err)
				return
			}

			f.logger.Info("batch fetched",
				"start", start,
				"size", len(batch),
				"elapsed", time.Since(began),
			)

			for i, page := range pages {
				pair, ok, err := f.pairOf(batch[i], page)
				if err != nil {
					yield(model.Pair{}, err)
					return
				}
				if !ok {
					continue
				}
				if !yield(pair, nil) {
					return
				}
			}
		}
	}
}

// pairOf turns a decoded page record into a pair, reporting false when the
// page has no text.
func (f *Fetcher) pairOf(title string, page wiki.Page) (model.Pair, bool, error) {
	if !page.HasExtract() {
		f.skipped++
		f.logger.Info("no extract, skipping", "title", title, "page", page)
		return model.Pair{}, false, nil
	}
	if page.Title != title {
		return model.Pair{}, false, &MismatchError{Requested: title, Returned: page.Title}
	}
	return model.Pair{Title: title, Text: *page.Extract}, true, nil
}

// fetchBatch fetches every title of the batch concurrently. A transport
// error anywhere re-issues the whole batch.
func (f *Fetcher) fetchBatch(ctx context.Context, batch []string) ([]wiki.Page, error) {
	pages := make([]wiki.Page, len(batch))

	err := f.batchPolicy.Do(ctx, func(ctx context.Context) error {
		g, gctx := errgroup.WithContext(ctx)
		if f.maxInFlight > 0 {
			g.SetLimit(f.maxInFlight)
		}
		for i, title := range batch {
			g.Go(func() error {
				page, err := f.fetchTitle(gctx, title)
				if err != nil {
					return err
				}
				pages[i] = page
				return nil
			})
		}
		return g.Wait()
	}, func(err error, attempt int, wait time.Duration) {
		f.logger.Warn("batch failed, retrying whole batch",
			"size", len(batch),
			"attempt", attempt,
			"wait", wait,
			"error", err,
		)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch batch: %w", err)
	}
	return pages, nil
}

// fetchTitle requests one title until the response is a readable success.
// Transport errors are returned at once so the batch can be retried.
func (f *Fetcher) fetchTitle(ctx context.Context, title string) (wiki.Page, error) {
	var page wiki.Page
	err := f.requestPolicy.Do(ctx, func(ctx context.Context) error {
		body, err := f.source.Extract(ctx, title)
		if err != nil {
			if wiki.IsStatusError(err) {
				return err
			}
			return retry.Permanent(err)
		}
		p, err := wiki.DecodeExtract(body)
		if err != nil {
			return err
		}
		page = p
		return nil
	}, func(err error, attempt int, _ time.Duration) {
		f.logger.Warn("text request failed, retrying",
			"title", title,
			"attempt", attempt,
			"error", err,
		)
	})
	if err != nil {
		return wiki.Page{}, fmt.Errorf("title %q: %w", title, err)
	}
	return page, nil
}

// IsFatal reports whether err must stop the run rather than be retried.
func IsFatal(err error) bool {
	return errors.Is(err, ErrTitleMismatch)
}
