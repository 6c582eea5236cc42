package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/iho/securebank-ledger/internal/adapter/http/handler"
	"github.com/iho/securebank-ledger/internal/adapter/http/middleware"
	"github.com/iho/securebank-ledger/internal/infrastructure/metrics"
	"github.com/iho/securebank-ledger/internal/usecase"
)

// RouterConfig holds dependencies for the router. Metrics, RateLimiter and
// IdempotencyStore are optional.
type RouterConfig struct {
	AccountHandler     *handler.AccountHandler
	TransactionHandler *handler.TransactionHandler
	LedgerHandler      *handler.LedgerHandler
	HealthHandler      *handler.HealthHandler
	IdempotencyStore   usecase.IdempotencyStore
	IdempotencyTTL     time.Duration
	RateLimiter        *middleware.RateLimiter
	Metrics            *metrics.Metrics
	Logger             zerolog.Logger
	Development        bool
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	r.Use(middleware.SecureHeaders(cfg.Development))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(chimiddleware.AllowContentType("application/json"))

		if cfg.IdempotencyStore != nil {
			var replays prometheus.Counter
			if cfg.Metrics != nil {
				replays = cfg.Metrics.IdempotentReplay
			}
			r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, replays).Wrap)
		}

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", cfg.AccountHandler.List)
			r.Post("/", cfg.AccountHandler.Create)
			r.Get("/count", cfg.AccountHandler.Count)
			r.Get("/number/{number}", cfg.AccountHandler.GetByNumber)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Put("/{id}", cfg.AccountHandler.Update)
			r.Delete("/{id}", cfg.AccountHandler.Delete)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", cfg.TransactionHandler.List)
			r.Post("/transfer", cfg.TransactionHandler.Transfer)
			r.Post("/deposit", cfg.TransactionHandler.Deposit)
			r.Post("/withdraw", cfg.TransactionHandler.Withdraw)
			r.Post("/async", cfg.TransactionHandler.SubmitAsync)
			r.Get("/account/{accountId}", cfg.TransactionHandler.ListByAccount)
			r.Get("/{id}", cfg.TransactionHandler.Get)
		})

		r.Route("/ledger", func(r chi.Router) {
			r.Get("/reconciliation", cfg.LedgerHandler.Reconciliation)
			r.Get("/reconciliation/{accountId}", cfg.LedgerHandler.ReconcileAccount)
		})
	})

	return r
}
