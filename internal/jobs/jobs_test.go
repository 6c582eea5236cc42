package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/securebank-ledger/internal/adapter/repository/memory"
	"github.com/iho/securebank-ledger/internal/domain"
	"github.com/iho/securebank-ledger/internal/usecase"
)

type seqIDGen struct{ n atomic.Int64 }

func (g *seqIDGen) Generate() string { return fmt.Sprintf("REF-%04d", g.n.Add(1)) }

type recorder struct {
	mu      sync.Mutex
	results []string
}

func (r *recorder) ObserveAsyncTask(taskType, result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, taskType+"="+result)
}

type fixture struct {
	accounts *memory.AccountStore
	log      *memory.TransactionLog
	ledger   *usecase.LedgerUseCase
	admin    *usecase.AccountUseCase
	metrics  *recorder
	job      *LedgerJob
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := memory.New()
	accounts := memory.NewAccountStore(db)
	log := memory.NewTransactionLog(db)
	idGen := &seqIDGen{}
	ledger := usecase.NewLedgerUseCase(usecase.LedgerConfig{
		TxManager: memory.NewTxManager(db),
		Accounts:  accounts,
		Log:       log,
		IDGen:     idGen,
		Policy:    usecase.DefaultPolicy(),
	})
	metrics := &recorder{}

	return &fixture{
		accounts: accounts,
		log:      log,
		ledger:   ledger,
		admin:    usecase.NewAccountUseCase(accounts, idGen, nil, usecase.DefaultPolicy()),
		metrics:  metrics,
		job:      NewLedgerJob(ledger, zerolog.Nop(), metrics),
	}
}

func (f *fixture) open(t *testing.T, balance string) *domain.Account {
	t.Helper()
	acc, err := f.admin.OpenAccount(context.Background(), usecase.OpenAccountInput{
		AccountHolderName: "Queue Holder",
		Email:             "queue@example.com",
		AccountType:       domain.AccountTypeChecking,
		InitialBalance:    decimal.RequireFromString(balance),
	})
	require.NoError(t, err)
	return acc
}

func task(t *testing.T, payload LedgerPayload) *asynq.Task {
	t.Helper()
	tk, err := NewLedgerTask(payload)
	require.NoError(t, err)
	return tk
}

func TestLedgerJob_TransferCompletes(t *testing.T) {
	f := newFixture(t)
	a := f.open(t, "100.00")
	b := f.open(t, "0.00")

	mux := NewServeMux(f.job, nil)
	err := mux.ProcessTask(context.Background(), task(t, LedgerPayload{
		Type:          domain.TransactionTypeTransfer,
		FromAccountID: a.ID,
		ToAccountID:   b.ID,
		Amount:        decimal.RequireFromString("40"),
	}))
	require.NoError(t, err)

	acc, err := f.accounts.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.True(t, acc.Balance.Equal(decimal.RequireFromString("40")))
	assert.Equal(t, []string{TaskTypeTransfer + "=" + ResultCompleted}, f.metrics.results)
}

func TestLedgerJob_RecordedFailureCompletesTask(t *testing.T) {
	f := newFixture(t)
	a := f.open(t, "10.00")

	err := f.job.Handle(context.Background(), task(t, LedgerPayload{
		Type:      domain.TransactionTypeWithdrawal,
		AccountID: a.ID,
		Amount:    decimal.RequireFromString("50"),
	}))
	require.NoError(t, err)

	records, err := f.log.ListByAccount(context.Background(), a.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.TransactionStatusFailed, records[0].Status)
	assert.Equal(t, []string{TaskTypeWithdraw + "=" + ResultFailed}, f.metrics.results)
}

func TestLedgerJob_RejectionSkipsRetry(t *testing.T) {
	f := newFixture(t)

	err := f.job.Handle(context.Background(), task(t, LedgerPayload{
		Type:      domain.TransactionTypeDeposit,
		AccountID: 999,
		Amount:    decimal.RequireFromString("5"),
	}))
	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)

	n, err := f.log.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLedgerJob_MalformedPayloadSkipsRetry(t *testing.T) {
	f := newFixture(t)

	err := f.job.Handle(context.Background(), asynq.NewTask(TaskTypeDeposit, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestNewLedgerTaskRejectsUnknownType(t *testing.T) {
	_, err := NewLedgerTask(LedgerPayload{Type: "REFUND"})
	assert.Error(t, err)
}

func TestNewLedgerTaskEncodesPayload(t *testing.T) {
	tk := task(t, LedgerPayload{
		Type:      domain.TransactionTypeDeposit,
		AccountID: 3,
		Amount:    decimal.RequireFromString("12.50"),
	})
	assert.Equal(t, TaskTypeDeposit, tk.Type())

	var got LedgerPayload
	require.NoError(t, json.Unmarshal(tk.Payload(), &got))
	assert.Equal(t, int64(3), got.AccountID)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("12.5")))
}

type stubReconciler struct {
	report *usecase.ReconciliationReport
	err    error
}

func (s stubReconciler) GenerateReconciliationReport(context.Context) (*usecase.ReconciliationReport, error) {
	return s.report, s.err
}

func TestReconcileJob(t *testing.T) {
	metrics := &recorder{}

	job := NewReconcileJob(stubReconciler{report: &usecase.ReconciliationReport{LedgerConsistent: false}}, zerolog.Nop(), metrics)
	require.NoError(t, job.Handle(context.Background(), NewReconcileTask()))

	job = NewReconcileJob(stubReconciler{err: errors.New("db down")}, zerolog.Nop(), metrics)
	require.Error(t, job.Handle(context.Background(), NewReconcileTask()))

	assert.Equal(t, []string{
		TaskTypeReconcile + "=" + ResultFailed,
		TaskTypeReconcile + "=" + ResultError,
	}, metrics.results)
}

func TestClientEnqueueRejectsDuplicateKey(t *testing.T) {
	mr := miniredis.RunT(t)
	client := NewClient(asynq.RedisClientOpt{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	payload := LedgerPayload{Type: domain.TransactionTypeDeposit, AccountID: 1, Amount: decimal.NewFromInt(5)}

	info, err := client.Enqueue(context.Background(), payload, "key-1")
	require.NoError(t, err)
	assert.Equal(t, "key-1", info.ID)
	assert.Equal(t, QueueLedger, info.Queue)

	_, err = client.Enqueue(context.Background(), payload, "key-1")
	assert.ErrorIs(t, err, ErrDuplicateTask)
}

func TestWorkerRunStopsWithContext(t *testing.T) {
	mr := miniredis.RunT(t)
	f := newFixture(t)

	worker, err := NewWorker(WorkerConfig{
		RedisOpt:    asynq.RedisClientOpt{Addr: mr.Addr()},
		Logger:      zerolog.Nop(),
		Ledger:      f.job,
		Concurrency: 1,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(15 * time.Second):
		t.Fatal("worker did not stop after cancellation")
	}
}

func TestNewWorkerRequiresLedgerJob(t *testing.T) {
	_, err := NewWorker(WorkerConfig{RedisOpt: asynq.RedisClientOpt{Addr: "127.0.0.1:0"}})
	assert.Error(t, err)
}
