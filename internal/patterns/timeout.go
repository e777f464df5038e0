package patterns

import (
	"context"
	"time"
)

// DefaultTimeout is the default timeout for outbound HTTP requests
const DefaultTimeout = 3 * time.Second

// DefaultBulkheadWait is how long a caller waits for a bulkhead slot
const DefaultBulkheadWait = 1 * time.Second

// WithTimeout derives a context that fails fast after d. A non-positive d
// falls back to DefaultTimeout.
func WithTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = DefaultTimeout
	}
	return context.WithTimeout(parent, d)
}
