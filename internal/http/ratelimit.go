package http

import (
	"sync"
	"sync/atomic"
	"time"
)

// Rate limiting covers the write path only: the read endpoints are cheap
// aggregate queries, but every POST appends a ledger row and publishes a
// sync message. Limits are sized for a bot gateway relaying user messages,
// not for browser traffic.
const (
	writeLimit  = 30 // POSTs per window per client IP
	writeWindow = time.Minute
	sweepEvery  = 2 * time.Minute
	staleAfter  = 10 * writeWindow
)

// rateLimiter tracks fixed per-IP request windows in memory.
type rateLimiter struct {
	mu      sync.Mutex
	windows map[string]*requestWindow
	done    chan struct{}
	once    sync.Once
}

type requestWindow struct {
	openedAt time.Time
	count    int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		windows: make(map[string]*requestWindow),
		done:    make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

// allow counts one request against the client's current window and reports
// whether it stays within writeLimit. A window that has aged past
// writeWindow is replaced rather than refreshed, so a steady trickle of
// requests cannot hold a window open forever.
func (rl *rateLimiter) allow(clientIP string, metrics *securityMetrics) bool {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.windows[clientIP]
	if !ok || now.Sub(w.openedAt) >= writeWindow {
		rl.windows[clientIP] = &requestWindow{openedAt: now, count: 1}
		return true
	}

	w.count++
	if w.count > writeLimit {
		if metrics != nil {
			atomic.AddInt64(&metrics.rateLimitHits, 1)
		}
		return false
	}
	return true
}

// sweepLoop drops windows from clients that went quiet, keeping the map
// bounded by the set of recently active IPs.
func (rl *rateLimiter) sweepLoop() {
	ticker := time.NewTicker(sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-staleAfter)
			rl.mu.Lock()
			for ip, w := range rl.windows {
				if w.openedAt.Before(cutoff) {
					delete(rl.windows, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// stop ends the sweep goroutine. Safe to call more than once.
func (rl *rateLimiter) stop() {
	rl.once.Do(func() { close(rl.done) })
}
