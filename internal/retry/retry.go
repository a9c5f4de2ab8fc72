// Package retry provides exponential-backoff retry for transient store
// failures.
package retry

import (
	"context"
	"fmt"
	"log"
	"time"
)

// DefaultRetries and DefaultBaseDelay match the connection-hiccup profile
// of the pooled postgres backend: two quick retries, then give up.
const (
	DefaultRetries   = 2
	DefaultBaseDelay = 200 * time.Millisecond
)

// Do runs fn up to retries+1 times. The delay before retry n (0-based) is
// baseDelay * 2^n. retries == 0 means exactly one attempt. The error from
// the final attempt is returned; earlier errors are logged and discarded.
func Do[T any](ctx context.Context, name string, retries int, baseDelay time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			delay := baseDelay * (1 << (attempt - 1))
			log.Printf("[Retry] %s attempt %d/%d failed: %v, retrying in %v", name, attempt, retries, lastErr, delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return zero, fmt.Errorf("%s aborted: %w", name, ctx.Err())
			}
		}
		out, err := fn(ctx)
		if err == nil {
			return out, nil
		}
		lastErr = err
	}
	return zero, lastErr
}
