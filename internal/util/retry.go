package util

import (
	"context"
	"time"
)

// Retry runs fn up to maxAttempts times, doubling the wait after each
// failure starting from baseDelay. The market data provider uses this around
// remote bar fetches, where transient HTTP failures are routine. Returns nil
// on the first success, the context error if cancelled while waiting, or the
// last fn error once attempts are exhausted.
func Retry(ctx context.Context, maxAttempts int, baseDelay time.Duration, fn func() error) error {
	var err error
	delay := baseDelay

	for attempt := 0; attempt < maxAttempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}

		// No wait after the final attempt.
		if attempt < maxAttempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
	}

	return err
}
