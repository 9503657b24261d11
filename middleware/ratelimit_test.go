// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
	"time"
)

func TestRateLimiter(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(3, nil)
	rl.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("Request %d should be allowed", i+1)
		}
	}
	if rl.Allow("1.2.3.4") {
		t.Error("Fourth request within the burst window should be limited")
	}
	if !rl.Allow("5.6.7.8") {
		t.Error("Other clients have their own bucket")
	}

	// 3/min refills one token every 20s.
	now = now.Add(21 * time.Second)
	if !rl.Allow("1.2.3.4") {
		t.Error("Expected a refilled token")
	}
}

func TestRateLimiterSweepsIdleClients(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, nil)
	rl.now = func() time.Time { return now }

	rl.Allow("a")
	now = now.Add(2 * visitorTTL)
	rl.Allow("b")

	if _, ok := rl.visitors["a"]; ok {
		t.Error("Expected idle client to be swept")
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := NewRateLimiter(0, nil)
	for i := 0; i < 100; i++ {
		if !rl.Allow("x") {
			t.Fatal("Limiter with perMinute 0 must allow everything")
		}
	}
}

func TestLimitMiddleware(t *testing.T) {
	calls := 0
	handler := NewRateLimiter(1, nil).Limit(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	})

	for i, expected := range []int{http.StatusOK, http.StatusTooManyRequests} {
		req := httptest.NewRequest("POST", "/api/v1/ai/ask", nil)
		req.RemoteAddr = "9.9.9.9:1000"
		w := httptest.NewRecorder()
		handler(w, req)

		if w.Code != expected {
			t.Errorf("Request %d: expected %d, got %d", i+1, expected, w.Code)
		}
	}
	if calls != 1 {
		t.Errorf("Expected handler to run once, ran %d times", calls)
	}
}

func TestLimitIgnoresForwardedHeadersFromUntrustedPeers(t *testing.T) {
	handler := NewRateLimiter(1, nil).Limit(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	allowed := 0
	for i := 0; i < 50; i++ {
		req := httptest.NewRequest("POST", "/api/v1/ai/ask", nil)
		req.RemoteAddr = "203.0.113.7:4000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		req.Header.Set("X-Real-IP", fmt.Sprintf("192.0.2.%d", i))
		w := httptest.NewRecorder()
		handler(w, req)
		if w.Code == http.StatusOK {
			allowed++
		}
	}

	if allowed != 1 {
		t.Errorf("Expected one request through for a single peer, got %d", allowed)
	}
}

func TestLimitUsesForwardedClientBehindTrustedProxy(t *testing.T) {
	proxy := []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}
	handler := NewRateLimiter(1, proxy).Limit(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	send := func(xff string) int {
		req := httptest.NewRequest("POST", "/api/v1/ai/ask", nil)
		req.RemoteAddr = "10.1.2.3:5000"
		req.Header.Set("X-Forwarded-For", xff)
		w := httptest.NewRecorder()
		handler(w, req)
		return w.Code
	}

	if code := send("198.51.100.1"); code != http.StatusOK {
		t.Fatalf("First client: expected 200, got %d", code)
	}
	if code := send("198.51.100.2"); code != http.StatusOK {
		t.Errorf("Second client behind the proxy has its own bucket, got %d", code)
	}
	// A forged leftmost hop does not change the key the proxy appended.
	if code := send("1.1.1.1, 198.51.100.1"); code != http.StatusTooManyRequests {
		t.Errorf("Forged hop should not reset the bucket, got %d", code)
	}
}
