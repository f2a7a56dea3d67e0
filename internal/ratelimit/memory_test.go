package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"
)

// fakeClock lets tests move time forward deterministically.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter() (*MemoryLimiter, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	l := NewMemoryLimiter()
	l.now = clock.Now
	return l, clock
}

func TestAllow_ExactlyLimitWithinWindow(t *testing.T) {
	l, _ := newTestLimiter()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		ok, err := l.Allow(ctx, "ip:1.2.3.4", 5, time.Hour)
		if err != nil {
			t.Fatalf("Allow: %v", err)
		}
		if !ok {
			t.Fatalf("call %d denied, want allowed", i+1)
		}
	}

	ok, err := l.Allow(ctx, "ip:1.2.3.4", 5, time.Hour)
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if ok {
		t.Fatal("6th call allowed, want denied")
	}
}

func TestAllow_DeniedCallRecordsNothing(t *testing.T) {
	l, clock := newTestLimiter()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		l.Allow(ctx, "k", 3, time.Hour)
	}
	// Hammer the denied path; these must not extend the window.
	for i := 0; i < 10; i++ {
		clock.Advance(time.Minute)
		if ok, _ := l.Allow(ctx, "k", 3, time.Hour); ok {
			t.Fatal("denied call was allowed")
		}
	}

	// 50 more minutes puts the three recorded events past the hour.
	clock.Advance(50 * time.Minute)
	if ok, _ := l.Allow(ctx, "k", 3, time.Hour); !ok {
		t.Fatal("window elapsed but still denied")
	}
}

func TestAllow_WindowSlides(t *testing.T) {
	l, clock := newTestLimiter()
	ctx := context.Background()

	l.Allow(ctx, "k", 2, 10*time.Minute)
	clock.Advance(6 * time.Minute)
	l.Allow(ctx, "k", 2, 10*time.Minute)

	if ok, _ := l.Allow(ctx, "k", 2, 10*time.Minute); ok {
		t.Fatal("third call within window allowed")
	}

	// First event expires 4 minutes later; one slot frees up.
	clock.Advance(5 * time.Minute)
	if ok, _ := l.Allow(ctx, "k", 2, 10*time.Minute); !ok {
		t.Fatal("slot expired but still denied")
	}
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		l.Allow(ctx, "ip:a", 5, time.Hour)
	}
	if ok, _ := l.Allow(ctx, "ip:a", 5, time.Hour); ok {
		t.Fatal("exhausted key allowed")
	}
	if ok, _ := l.Allow(ctx, "ip:b", 5, time.Hour); !ok {
		t.Fatal("fresh key denied")
	}
}

func TestSweep_DropsDeadBuckets(t *testing.T) {
	l, clock := newTestLimiter()
	ctx := context.Background()

	l.Allow(ctx, "old", 5, time.Hour)
	clock.Advance(3 * time.Hour)
	l.Allow(ctx, "fresh", 5, time.Hour)

	removed := l.Sweep(2 * time.Hour)
	if removed != 1 {
		t.Fatalf("Sweep removed %d buckets, want 1", removed)
	}
	if l.Len() != 1 {
		t.Fatalf("tracked keys = %d, want 1", l.Len())
	}
}

func TestAllow_ConcurrentCallersNeverExceedLimit(t *testing.T) {
	l := NewMemoryLimiter()
	ctx := context.Background()

	const workers = 50
	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, _ := l.Allow(ctx, "shared", 10, time.Hour)
			if ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 10 {
		t.Fatalf("allowed %d concurrent calls, want exactly 10", allowed)
	}
}
