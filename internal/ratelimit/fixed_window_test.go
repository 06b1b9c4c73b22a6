package ratelimit

import (
	"testing"
	"time"
)

func TestFixedWindowLimiter(t *testing.T) {
	limiter, err := NewFixedWindowLimiter(2, time.Second)
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}
	if !limiter.Allow("ip-1") {
		t.Fatalf("first request should pass")
	}
	if !limiter.Allow("ip-1") {
		t.Fatalf("second request should pass")
	}
	if limiter.Allow("ip-1") {
		t.Fatalf("third request should be blocked")
	}
	if !limiter.Allow("ip-2") {
		t.Fatalf("other keys should have independent quota")
	}
}

func TestFixedWindowLimiterResetsOnNewWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter, err := NewFixedWindowLimiter(1, time.Second)
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}
	limiter.WithClock(func() time.Time { return now })

	if !limiter.Allow("ip-1") {
		t.Fatalf("first request should pass")
	}
	if limiter.Allow("ip-1") {
		t.Fatalf("second request in window should be blocked")
	}

	now = now.Add(time.Second)
	if !limiter.Allow("ip-1") {
		t.Fatalf("request in next window should pass")
	}
}

func TestFixedWindowLimiterValidation(t *testing.T) {
	if _, err := NewFixedWindowLimiter(0, time.Second); err == nil {
		t.Fatalf("expected constructor error for zero limit")
	}
	if _, err := NewFixedWindowLimiter(1, 0); err == nil {
		t.Fatalf("expected constructor error for zero window")
	}
}
