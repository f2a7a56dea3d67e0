// Package ratelimit implements sliding-window rate limiting for the
// submission pipeline. Every inbound request is checked against several
// independent keys (caller IP, identity, activation recipient) and must
// pass all of them to proceed.
package ratelimit

import (
	"context"
	"time"
)

// Limiter is the rate-limiting contract used by the pipeline. Allow reports
// whether one more event is permitted for key within the trailing window,
// recording the event if so. A denied call records nothing.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
