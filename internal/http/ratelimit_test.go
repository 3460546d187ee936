package http

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestRateLimiter_EnforcesWindowLimit(t *testing.T) {
	rl := newRateLimiter()
	defer rl.stop()

	metrics := &securityMetrics{}

	for i := 0; i < writeLimit; i++ {
		if !rl.allow("203.0.113.7", metrics) {
			t.Fatalf("request %d rejected, limit is %d", i+1, writeLimit)
		}
	}

	if rl.allow("203.0.113.7", metrics) {
		t.Fatal("request past the window limit was allowed")
	}
	if hits := atomic.LoadInt64(&metrics.rateLimitHits); hits != 1 {
		t.Errorf("rateLimitHits = %d, want 1", hits)
	}

	// Other clients keep their own windows.
	if !rl.allow("203.0.113.8", metrics) {
		t.Error("unrelated client was rejected")
	}
}

func TestRateLimiter_ExpiredWindowResets(t *testing.T) {
	rl := newRateLimiter()
	defer rl.stop()

	rl.mu.Lock()
	rl.windows["203.0.113.9"] = &requestWindow{
		openedAt: time.Now().Add(-writeWindow - time.Second),
		count:    writeLimit,
	}
	rl.mu.Unlock()

	if !rl.allow("203.0.113.9", nil) {
		t.Fatal("request after the window expired was rejected")
	}

	rl.mu.Lock()
	w := rl.windows["203.0.113.9"]
	rl.mu.Unlock()
	if w.count != 1 {
		t.Errorf("new window count = %d, want 1", w.count)
	}
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := newRateLimiter()
	rl.stop()
	rl.stop()
}
