package httpmiddleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := newRateLimiter(RateLimitConfig{Max: 3, Window: 3 * time.Second})
	now := time.Now()

	// Burst up to capacity.
	for i := 0; i < 3; i++ {
		_, _, allowed := rl.allow("client", now)
		require.True(t, allowed, "request %d within burst", i)
	}

	// Bucket drained.
	_, retryAt, allowed := rl.allow("client", now)
	assert.False(t, allowed)
	assert.True(t, retryAt.After(now))

	// One token refills after a second (capacity 3 over 3s).
	_, _, allowed = rl.allow("client", now.Add(time.Second))
	assert.True(t, allowed)

	// Separate clients get separate buckets.
	_, _, allowed = rl.allow("other", now)
	assert.True(t, allowed)
}

func TestRateLimiterRefillCapped(t *testing.T) {
	rl := newRateLimiter(RateLimitConfig{Max: 2, Window: time.Second})
	now := time.Now()

	_, _, allowed := rl.allow("client", now)
	require.True(t, allowed)

	// A long idle period refills to capacity, never beyond.
	later := now.Add(time.Minute)
	remaining, _, allowed := rl.allow("client", later)
	require.True(t, allowed)
	assert.Equal(t, 1, remaining)
}

func TestRateLimiterSweep(t *testing.T) {
	rl := newRateLimiter(RateLimitConfig{Max: 1, Window: time.Second})
	now := time.Now()

	rl.allow("stale", now)
	rl.allow("fresh", now.Add(900*time.Millisecond))

	rl.sweep(now.Add(time.Second))

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.NotContains(t, rl.buckets, "stale")
	assert.Contains(t, rl.buckets, "fresh")
}

func TestRateLimitMiddleware(t *testing.T) {
	mw := RateLimit(RateLimitConfig{
		Max:     2,
		Window:  time.Hour,
		KeyFunc: func(*http.Request) string { return "fixed" },
	})
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "rate limit exceeded")
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		want       string
	}{
		{"remote addr", "10.0.0.1:4321", "", "10.0.0.1"},
		{"forwarded single", "10.0.0.1:4321", "203.0.113.9", "203.0.113.9"},
		{"forwarded chain uses first hop", "10.0.0.1:4321", "203.0.113.9, 10.0.0.2", "203.0.113.9"},
		{"bare remote addr", "10.0.0.1", "", "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			assert.Equal(t, tt.want, clientIP(r))
		})
	}
}
