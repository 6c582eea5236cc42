package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter implements per-client rate limiting.
type RateLimiter struct {
	limiters map[string]*clientLimiter
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
	hits     prometheus.Counter
	now      func() time.Time
}

// NewRateLimiter creates a new rate limiter allowing r requests per second
// with bursts of b. hits may be nil.
func NewRateLimiter(r float64, b int, hits prometheus.Counter) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*clientLimiter),
		rate:     rate.Limit(r),
		burst:    b,
		hits:     hits,
		now:      time.Now,
	}
}

func (rl *RateLimiter) getLimiter(client string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, ok := rl.limiters[client]
	if !ok {
		entry = &clientLimiter{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[client] = entry
	}
	entry.lastSeen = rl.now()

	return entry.limiter
}

// Limit is a middleware that enforces rate limiting per client address.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.getLimiter(clientAddr(r)).Allow() {
			if rl.hits != nil {
				rl.hits.Inc()
			}
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"RateLimited","message":"rate limit exceeded"}`))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Cleanup drops limiters idle for longer than maxIdle.
func (rl *RateLimiter) Cleanup(maxIdle time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-maxIdle)
	for client, entry := range rl.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(rl.limiters, client)
		}
	}
}

// clientAddr returns the first X-Forwarded-For hop, X-Real-IP or the host
// part of RemoteAddr.
func clientAddr(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
