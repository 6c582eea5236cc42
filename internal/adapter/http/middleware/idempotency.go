package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/iho/securebank-ledger/internal/usecase"
)

const (
	// IdempotencyKeyHeader is the header name for idempotency keys.
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyReplayHeader marks a response served from the store.
	IdempotencyReplayHeader = "X-Idempotency-Replay"
	defaultIdempotencyTTL   = 24 * time.Hour
)

// IdempotencyMiddleware replays the stored response of a request that was
// already answered under the same Idempotency-Key.
type IdempotencyMiddleware struct {
	store   usecase.IdempotencyStore
	ttl     time.Duration
	replays prometheus.Counter
}

// NewIdempotencyMiddleware creates a new IdempotencyMiddleware. A zero ttl
// keeps keys for a day; replays may be nil.
func NewIdempotencyMiddleware(store usecase.IdempotencyStore, ttl time.Duration, replays prometheus.Counter) *IdempotencyMiddleware {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &IdempotencyMiddleware{store: store, ttl: ttl, replays: replays}
}

// Wrap wraps an http.Handler with idempotency checking.
func (m *IdempotencyMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost && r.Method != http.MethodPut {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get(IdempotencyKeyHeader)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}
		key = r.Method + " " + r.URL.Path + " " + key

		exists, cached, err := m.store.CheckAndSet(r.Context(), key, nil, m.ttl)
		if err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("idempotency check failed")
			writeJSONError(w, http.StatusInternalServerError, "Internal", "idempotency check failed")
			return
		}

		if exists {
			if cached == nil {
				writeJSONError(w, http.StatusConflict, "Conflict", "a request with this idempotency key is in progress")
				return
			}
			if m.replays != nil {
				m.replays.Inc()
			}
			stored := decodeStoredResponse(cached)
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set(IdempotencyReplayHeader, "true")
			w.WriteHeader(stored.Status)
			_, _ = w.Write(stored.Body)
			return
		}

		recorder := &responseRecorder{
			ResponseWriter: w,
			body:           &bytes.Buffer{},
			statusCode:     http.StatusOK,
		}
		next.ServeHTTP(recorder, r)

		// The request context may already be cancelled once the client went away.
		ctx := context.WithoutCancel(r.Context())
		if isFinalResponse(recorder.statusCode, recorder.body.Bytes()) {
			stored, err := json.Marshal(storedResponse{Status: recorder.statusCode, Body: recorder.body.Bytes()})
			if err == nil {
				err = m.store.Update(ctx, key, stored, m.ttl)
			}
			if err != nil {
				zerolog.Ctx(r.Context()).Warn().Err(err).Msg("failed to store idempotent response")
			}
			return
		}
		if err := m.store.Release(ctx, key); err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("failed to release idempotency key")
		}
	})
}

// storedResponse is the value kept under a completed key.
type storedResponse struct {
	Status int    `json:"status"`
	Body   []byte `json:"body"`
}

// decodeStoredResponse also accepts a bare body, replayed as 200.
func decodeStoredResponse(b []byte) storedResponse {
	var stored storedResponse
	if err := json.Unmarshal(b, &stored); err != nil || stored.Status == 0 {
		return storedResponse{Status: http.StatusOK, Body: b}
	}
	return stored
}

// isFinalResponse reports whether the outcome must be replayed rather than
// retried: every 2xx, and any 4xx whose body carries the transaction the
// ledger already recorded as FAILED.
func isFinalResponse(status int, body []byte) bool {
	if status >= 200 && status < 300 {
		return true
	}
	if status < 400 || status >= 500 {
		return false
	}

	var failure struct {
		Transaction json.RawMessage `json:"transaction"`
	}
	if err := json.Unmarshal(body, &failure); err != nil {
		return false
	}
	return len(failure.Transaction) > 0 && string(failure.Transaction) != "null"
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func writeJSONError(w http.ResponseWriter, status int, kind, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + kind + `","message":"` + message + `"}`))
}
