package httputil

import (
	"context"
	"errors"
	"time"
)

// RetryableError marks a failure as transient. [Retry] only repeats
// operations whose error wraps one.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry calls fn up to attempts times, doubling delay after each retryable
// failure. Other errors are returned at once. Cancelling ctx during a wait
// returns ctx.Err().
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		err := fn()
		if err == nil {
			return nil
		}
		if !errors.As(err, new(*RetryableError)) {
			return err
		}
		lastErr = err

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}
