package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter is an in-process sliding-window limiter. State lives in one
// map of key -> event timestamps and resets on restart; that staleness is an
// accepted trade-off for the single-instance deployment.
//
// Buckets are pruned lazily on access. Keys that are never revisited would
// otherwise accumulate forever, so StartJanitor runs a periodic full sweep
// that drops buckets with no live entries.
type MemoryLimiter struct {
	mu      sync.Mutex
	buckets map[string][]time.Time

	// now is swappable for tests.
	now func() time.Time
}

// NewMemoryLimiter creates an empty in-memory limiter.
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		buckets: make(map[string][]time.Time),
		now:     time.Now,
	}
}

// Allow checks and records one event for key. The prune-check-append
// sequence runs under the limiter lock as a single atomic region.
func (l *MemoryLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-window)

	events := l.buckets[key]
	live := events[:0]
	for _, ts := range events {
		if ts.After(cutoff) {
			live = append(live, ts)
		}
	}

	if len(live) >= limit {
		l.buckets[key] = live
		return false, nil
	}

	l.buckets[key] = append(live, now)
	return true, nil
}

// Sweep drops every bucket whose newest entry is older than maxAge.
// Returns the number of buckets removed.
func (l *MemoryLimiter) Sweep(maxAge time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-maxAge)
	removed := 0
	for key, events := range l.buckets {
		if len(events) == 0 || !events[len(events)-1].After(cutoff) {
			delete(l.buckets, key)
			removed++
		}
	}
	return removed
}

// StartJanitor sweeps dead buckets every interval until ctx is cancelled.
// Buckets older than twice the largest configured window are safe to drop:
// nothing in them can still count against a limit.
func (l *MemoryLimiter) StartJanitor(ctx context.Context, interval, maxAge time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.Sweep(maxAge)
			}
		}
	}()
}

// Len reports the number of tracked keys. Used by tests and the janitor.
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
