package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/securebank-ledger/internal/adapter/http/handler"
	apimiddleware "github.com/iho/securebank-ledger/internal/adapter/http/middleware"
	"github.com/iho/securebank-ledger/internal/adapter/repository/memory"
	"github.com/iho/securebank-ledger/internal/infrastructure/metrics"
	"github.com/iho/securebank-ledger/internal/usecase"
)

type fixedIDGen struct{}

func (fixedIDGen) Generate() string { return "01HZX0000000000000000000AA" }

func newRouterConfig(opts ...func(*RouterConfig)) RouterConfig {
	db := memory.New()
	accounts := memory.NewAccountStore(db)
	log := memory.NewTransactionLog(db)
	policy := usecase.DefaultPolicy()

	ledger := usecase.NewLedgerUseCase(usecase.LedgerConfig{
		TxManager: memory.NewTxManager(db),
		Accounts:  accounts,
		Log:       log,
		IDGen:     fixedIDGen{},
		Policy:    policy,
	})
	query := usecase.NewQueryUseCase(accounts, log)

	cfg := RouterConfig{
		AccountHandler:     handler.NewAccountHandler(usecase.NewAccountUseCase(accounts, fixedIDGen{}, nil, policy), query, policy.Scale),
		TransactionHandler: handler.NewTransactionHandler(ledger, query, nil, policy),
		LedgerHandler:      handler.NewLedgerHandler(usecase.NewReconciliationUseCase(accounts, log), policy.Scale),
		HealthHandler:      handler.NewHealthHandler(nil),
		Logger:             zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Content-Type-Options"))
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.RateLimiter = apimiddleware.NewRateLimiter(1, 1, nil)
	}))

	send := func() int {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "1.2.3.4:1234"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send())
	assert.Equal(t, http.StatusTooManyRequests, send())
}

func TestNewRouter_IdempotencyMiddlewareInvokesStore(t *testing.T) {
	store := &stubIdempotencyStore{}
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.IdempotencyStore = store
	}))

	body := `{"accountHolderName":"Main","email":"main@example.com","accountType":"CHECKING","balance":0}`
	req := httptest.NewRequest(http.MethodPost, "/api/accounts", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apimiddleware.IdempotencyKeyHeader, "key-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.True(t, store.checkCalled)
	assert.True(t, store.updateCalled)
}

func TestNewRouter_RejectsNonJSONBodies(t *testing.T) {
	router := NewRouter(newRouterConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/transactions/deposit", strings.NewReader("accountId=1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestNewRouter_ServesMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := metrics.NewWithRegisterer(registry, registry)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.Metrics = m
	}))

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/accounts", nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `securebank_http_requests_total{method="GET"`)
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig())

	chiRoutes, ok := router.(chi.Routes)
	require.True(t, ok, "router does not implement chi.Routes")

	seen := map[string]bool{}
	require.NoError(t, chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}))

	expected := []string{
		"GET /health",
		"GET /ready",
		"GET /api/accounts/",
		"POST /api/accounts/",
		"GET /api/accounts/count",
		"GET /api/accounts/number/{number}",
		"GET /api/accounts/{id}",
		"PUT /api/accounts/{id}",
		"DELETE /api/accounts/{id}",
		"GET /api/transactions/",
		"POST /api/transactions/transfer",
		"POST /api/transactions/deposit",
		"POST /api/transactions/withdraw",
		"POST /api/transactions/async",
		"GET /api/transactions/{id}",
		"GET /api/transactions/account/{accountId}",
		"GET /api/ledger/reconciliation",
	}

	for _, route := range expected {
		assert.True(t, seen[route], "expected route %s to be registered", route)
	}
}

type stubIdempotencyStore struct {
	checkCalled  bool
	updateCalled bool
}

func (s *stubIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	s.checkCalled = true
	return false, nil, nil
}

func (s *stubIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	s.updateCalled = true
	return nil
}

func (s *stubIdempotencyStore) Release(ctx context.Context, key string) error {
	return nil
}
