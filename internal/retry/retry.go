// Package retry provides a bounded retry-with-exponential-backoff combinator
// for asynchronous operations, replacing per-call-site retry loops.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Do runs fn up to attempts times, doubling the delay after each failure
// starting from baseDelay. It returns nil on the first success, the last
// error once attempts are exhausted, and ctx.Err() if the context is
// cancelled while waiting between attempts.
func Do(ctx context.Context, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	delay := baseDelay
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			delay *= 2
		}

		if lastErr = fn(); lastErr == nil {
			return nil
		}
	}

	return fmt.Errorf("giving up after %d attempts: %w", attempts, lastErr)
}
