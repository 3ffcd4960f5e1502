package httpmiddleware

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimitConfig configures the per-client token bucket rate limiter.
type RateLimitConfig struct {
	// Max is the bucket capacity: the number of requests a client may burst.
	Max int
	// Window is the time it takes a fully drained bucket to refill. The
	// sustained rate is therefore Max requests per Window.
	Window time.Duration
	// KeyFunc extracts the rate limit key from a request.
	// When nil, the client IP address is used.
	KeyFunc func(*http.Request) string
}

// bucket holds the refill state for one client.
type bucket struct {
	tokens   float64
	lastSeen time.Time
}

// rateLimiter owns the per-client buckets.
type rateLimiter struct {
	cfg RateLimitConfig

	mu      sync.Mutex
	buckets map[string]*bucket
}

func newRateLimiter(cfg RateLimitConfig) *rateLimiter {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = clientIP
	}
	return &rateLimiter{
		cfg:     cfg,
		buckets: make(map[string]*bucket),
	}
}

// allow refills the client's bucket proportionally to elapsed time and takes
// one token. It returns the remaining whole tokens, when the bucket will next
// hold a token, and whether the request may proceed.
func (rl *rateLimiter) allow(key string, now time.Time) (remaining int, retryAt time.Time, allowed bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(rl.cfg.Max), lastSeen: now}
		rl.buckets[key] = b
	}

	refillPerSec := float64(rl.cfg.Max) / rl.cfg.Window.Seconds()
	b.tokens += now.Sub(b.lastSeen).Seconds() * refillPerSec
	if b.tokens > float64(rl.cfg.Max) {
		b.tokens = float64(rl.cfg.Max)
	}
	b.lastSeen = now

	if b.tokens < 1 {
		wait := time.Duration((1 - b.tokens) / refillPerSec * float64(time.Second))
		return 0, now.Add(wait), false
	}

	b.tokens--
	return int(b.tokens), now, true
}

// sweep drops buckets idle long enough to be full again.
func (rl *rateLimiter) sweep(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, b := range rl.buckets {
		if now.Sub(b.lastSeen) >= rl.cfg.Window {
			delete(rl.buckets, key)
		}
	}
}

// RateLimit returns a token bucket rate limiting middleware keyed by client.
// Rejected requests receive 429 with a Retry-After header and a JSON body.
func RateLimit(cfg RateLimitConfig) Middleware {
	return newRateLimiter(cfg).middleware()
}

// RateLimitWithCleanup is RateLimit plus a background goroutine that evicts
// idle client buckets. The goroutine stops when ctx is cancelled.
func RateLimitWithCleanup(ctx context.Context, cfg RateLimitConfig) Middleware {
	rl := newRateLimiter(cfg)
	go func() {
		ticker := time.NewTicker(cfg.Window)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				rl.sweep(now)
			}
		}
	}()
	return rl.middleware()
}

func (rl *rateLimiter) middleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			now := time.Now()
			remaining, retryAt, allowed := rl.allow(rl.cfg.KeyFunc(r), now)

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(rl.cfg.Max))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if !allowed {
				retryAfter := int(retryAt.Sub(now).Seconds() + 0.5)
				if retryAfter < 1 {
					retryAfter = 1
				}
				h.Set("Retry-After", strconv.Itoa(retryAfter))
				h.Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"code":    http.StatusTooManyRequests,
					"message": "rate limit exceeded",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP extracts the client address, preferring X-Forwarded-For set by a
// trusted proxy.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
