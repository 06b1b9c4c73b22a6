// Package ratelimit provides a fixed-window request limiter keyed by
// caller, used to throttle credential endpoints on the emulator.
package ratelimit

import (
	"errors"
	"strings"
	"sync"
	"time"
)

// FixedWindowLimiter counts requests per key in fixed time windows. Counts
// reset when the window rolls over; the memory for a key is reclaimed on
// its next request after rollover.
type FixedWindowLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu     sync.Mutex
	slot   int64
	counts map[string]int
}

// NewFixedWindowLimiter creates a limiter allowing limit requests per key
// per window.
func NewFixedWindowLimiter(limit int, window time.Duration) (*FixedWindowLimiter, error) {
	if limit <= 0 || window <= 0 {
		return nil, errors.New("rate limiter requires positive limit and window")
	}
	return &FixedWindowLimiter{
		limit:  limit,
		window: window,
		now:    time.Now,
		counts: make(map[string]int),
	}, nil
}

// WithClock overrides the time source, for tests.
func (l *FixedWindowLimiter) WithClock(now func() time.Time) *FixedWindowLimiter {
	l.now = now
	return l
}

// Allow reports whether the key is within quota for the current window and
// counts the request.
func (l *FixedWindowLimiter) Allow(key string) bool {
	if l == nil {
		return false
	}
	key = strings.TrimSpace(key)
	if key == "" {
		key = "unknown"
	}

	slot := l.now().UTC().UnixMilli() / l.window.Milliseconds()

	l.mu.Lock()
	defer l.mu.Unlock()
	if slot != l.slot {
		l.slot = slot
		l.counts = make(map[string]int)
	}
	l.counts[key]++
	return l.counts[key] <= l.limit
}
