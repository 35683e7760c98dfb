package httputil

import (
	"context"
	"errors"
	"time"
)

// Retry defaults used by [NewClient].
const (
	DefaultAttempts = 3
	DefaultDelay    = 200 * time.Millisecond
)

// RetryableError marks a transient failure. [Retry] gives up immediately on
// anything else.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps a non-nil err in a RetryableError.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err's chain holds a RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// Retry calls fn until it succeeds, returns a non-retryable error, or has
// been called attempts times. The wait starts at delay and doubles after
// every failure. Cancelling ctx while waiting returns ctx.Err().
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	err := fn()
	for left := attempts - 1; left > 0 && IsRetryable(err); left-- {
		if werr := sleep(ctx, delay); werr != nil {
			return werr
		}
		delay *= 2
		err = fn()
	}
	return err
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
