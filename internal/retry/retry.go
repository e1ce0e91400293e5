// Package retry provides the retry policy wrapped around every transient
// operation of the crawl: category listings, single text requests and whole
// text batches.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy describes how a failing operation is retried.
// The zero value retries immediately and without limit.
type Policy struct {
	// MaxAttempts caps the total number of attempts. 0 means unbounded.
	MaxAttempts uint64

	// InitialInterval is the first wait between attempts. 0 retries immediately.
	InitialInterval time.Duration

	// MaxInterval caps the exponential wait. 0 keeps the backoff default.
	MaxInterval time.Duration

	// Multiplier grows the wait after each attempt. 0 keeps the backoff default.
	Multiplier float64
}

// Notify is called after every failed attempt that will be retried.
type Notify func(err error, attempt int, wait time.Duration)

// Unbounded returns the policy that retries immediately forever.
func Unbounded() Policy {
	return Policy{}
}

// Permanent marks err as not retryable. Do returns the wrapped error as is.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return backoff.Permanent(err)
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p *backoff.PermanentError
	return errors.As(err, &p)
}

// Do runs op until it succeeds, returns a permanent error, the attempt limit
// is reached, or ctx is done. It returns the last error in the failing cases.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error, notify Notify) error {
	attempt := 0
	operation := func() error {
		attempt++
		err := op(ctx)
		if err != nil && ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}

	var n backoff.Notify
	if notify != nil {
		n = func(err error, wait time.Duration) {
			notify(err, attempt, wait)
		}
	}

	return backoff.RetryNotify(operation, backoff.WithContext(p.backOff(), ctx), n)
}

// backOff builds the backoff schedule of the policy.
func (p Policy) backOff() backoff.BackOff {
	var b backoff.BackOff = &backoff.ZeroBackOff{}
	if p.InitialInterval > 0 {
		eb := backoff.NewExponentialBackOff()
		eb.InitialInterval = p.InitialInterval
		if p.MaxInterval > 0 {
			eb.MaxInterval = p.MaxInterval
		}
		if p.Multiplier > 0 {
			eb.Multiplier = p.Multiplier
		}
		eb.MaxElapsedTime = 0
		eb.Reset()
		b = eb
	}
	if p.MaxAttempts > 0 {
		b = backoff.WithMaxRetries(b, p.MaxAttempts-1)
	}
	return b
}
