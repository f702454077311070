// Package retry provides a bounded retry state machine with exponential
// backoff for transient remote-service failures.
package retry

import (
	"context"
	"time"
)

const (
	// DefaultMaxRetries is the number of retries after the initial attempt.
	DefaultMaxRetries = 5
	// DefaultBaseDelay is doubled on every retry: 60s, 120s, 240s, 480s, 960s.
	DefaultBaseDelay = 60 * time.Second
)

// Logger is the minimal logging surface retry needs.
type Logger interface {
	Warn(ctx context.Context, msg string, args ...interface{})
	Error(ctx context.Context, msg string, args ...interface{})
}

// Options controls the retry loop. The zero value is not usable; build
// with NewOptions and override fields as needed.
type Options struct {
	MaxRetries int
	BaseDelay  time.Duration

	// IsRetryable classifies an error as transient. Non-retryable errors
	// propagate immediately with no delay.
	IsRetryable func(error) bool

	// Sleep is swappable in tests; defaults to a context-aware sleep.
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewOptions returns Options with the default bounds and the given classifier.
func NewOptions(isRetryable func(error) bool) Options {
	return Options{
		MaxRetries:  DefaultMaxRetries,
		BaseDelay:   DefaultBaseDelay,
		IsRetryable: isRetryable,
		Sleep:       sleepCtx,
	}
}

// Do runs fn through attempts 0..MaxRetries. On a retryable failure it
// sleeps BaseDelay << attempt and tries again; after exhausting all
// retries the last error propagates unchanged.
func Do[T any](ctx context.Context, log Logger, opts Options, fn func() (T, error)) (T, error) {
	var zero T
	sleep := opts.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var lastErr error
	for attempt := 0; attempt <= opts.MaxRetries; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}

		if opts.IsRetryable == nil || !opts.IsRetryable(err) {
			log.Error(ctx, "Non-retryable error: %v", err)
			return zero, err
		}

		lastErr = err
		if attempt == opts.MaxRetries {
			break
		}

		delay := opts.BaseDelay << attempt
		log.Warn(ctx, "Transient service error (attempt %d/%d), retrying in %s: %v",
			attempt+1, opts.MaxRetries+1, delay, err)
		if serr := sleep(ctx, delay); serr != nil {
			return zero, serr
		}
	}

	log.Error(ctx, "All %d attempts failed with transient errors", opts.MaxRetries+1)
	return zero, lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
