package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/iho/securebank-ledger/internal/adapter/http/dto"
	"github.com/iho/securebank-ledger/internal/adapter/repository/memory"
	"github.com/iho/securebank-ledger/internal/jobs"
	"github.com/iho/securebank-ledger/internal/usecase"
)

type seqIDGen struct{ n atomic.Int64 }

func (g *seqIDGen) Generate() string { return fmt.Sprintf("ACC-%04d", g.n.Add(1)) }

type stubEnqueuer struct {
	payloads []jobs.LedgerPayload
	keys     []string
	err      error
}

func (s *stubEnqueuer) Enqueue(_ context.Context, payload jobs.LedgerPayload, key string) (*asynq.TaskInfo, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.payloads = append(s.payloads, payload)
	s.keys = append(s.keys, key)
	return &asynq.TaskInfo{ID: "task-1", Queue: jobs.QueueLedger}, nil
}

type testServer struct {
	router   http.Handler
	enqueuer *stubEnqueuer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db := memory.New()
	accounts := memory.NewAccountStore(db)
	log := memory.NewTransactionLog(db)
	idGen := &seqIDGen{}
	policy := usecase.DefaultPolicy()

	ledger := usecase.NewLedgerUseCase(usecase.LedgerConfig{
		TxManager: memory.NewTxManager(db),
		Accounts:  accounts,
		Log:       log,
		IDGen:     idGen,
		Policy:    policy,
	})
	admin := usecase.NewAccountUseCase(accounts, idGen, nil, policy)
	query := usecase.NewQueryUseCase(accounts, log)
	enqueuer := &stubEnqueuer{}

	accountHandler := NewAccountHandler(admin, query, policy.Scale)
	transactionHandler := NewTransactionHandler(ledger, query, enqueuer, policy)
	ledgerHandler := NewLedgerHandler(usecase.NewReconciliationUseCase(accounts, log), policy.Scale)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Get("/accounts", accountHandler.List)
		r.Post("/accounts", accountHandler.Create)
		r.Get("/accounts/count", accountHandler.Count)
		r.Get("/accounts/number/{number}", accountHandler.GetByNumber)
		r.Get("/accounts/{id}", accountHandler.Get)
		r.Put("/accounts/{id}", accountHandler.Update)
		r.Delete("/accounts/{id}", accountHandler.Delete)
		r.Post("/transactions/transfer", transactionHandler.Transfer)
		r.Post("/transactions/deposit", transactionHandler.Deposit)
		r.Post("/transactions/withdraw", transactionHandler.Withdraw)
		r.Post("/transactions/async", transactionHandler.SubmitAsync)
		r.Get("/transactions", transactionHandler.List)
		r.Get("/transactions/{id}", transactionHandler.Get)
		r.Get("/transactions/account/{accountId}", transactionHandler.ListByAccount)
		r.Get("/ledger/reconciliation", ledgerHandler.Reconciliation)
		r.Get("/ledger/reconciliation/{accountId}", ledgerHandler.ReconcileAccount)
	})

	return &testServer{router: r, enqueuer: enqueuer}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) openAccount(t *testing.T, balance string) int64 {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/accounts", fmt.Sprintf(
		`{"accountHolderName":"Alice","email":"alice@example.com","accountType":"CHECKING","balance":%s}`, balance))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp dto.AccountResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.ID
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}
