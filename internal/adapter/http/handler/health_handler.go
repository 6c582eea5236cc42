package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

// Ping calls f.
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// RedisPinger checks a Redis client.
func RedisPinger(client redis.UniversalClient) Pinger {
	return PingFunc(func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	checks map[string]Pinger
}

// NewHealthHandler creates a new HealthHandler checking each named dependency.
func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Liveness returns 200 if the service is alive.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness returns 200 if every dependency answers.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := map[string]string{"status": "ready"}
	code := http.StatusOK

	for name, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			status[name] = err.Error()
			status["status"] = "unavailable"
			code = http.StatusServiceUnavailable
			continue
		}
		status[name] = "ok"
	}

	writeJSON(w, code, status)
}
