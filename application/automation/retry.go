package automation

import (
	"context"
	"time"
)

// WithRetry calls fn up to attempts times, waiting backoff between calls,
// and returns true on the first success. A cancelled context ends it early.
func WithRetry(ctx context.Context, attempts int, backoff time.Duration, fn func() bool) bool {
	if attempts < 1 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		if ctx.Err() != nil {
			return false
		}
		if fn() {
			return true
		}
		if i < attempts-1 && !sleep(ctx, backoff) {
			return false
		}
	}
	return false
}
