package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/securebank-ledger/internal/domain"
)

func TestObserveTransaction(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewWithRegisterer(registry, registry)

	m.ObserveTransaction(domain.TransactionTypeWithdrawal, domain.TransactionStatusFailed, decimal.RequireFromString("500"), 20*time.Millisecond)
	m.ObserveTransaction(domain.TransactionTypeWithdrawal, domain.TransactionStatusFailed, decimal.RequireFromString("1"), time.Millisecond)
	m.ObserveTransaction(domain.TransactionTypeDeposit, domain.TransactionStatusCompleted, decimal.RequireFromString("10"), time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.TransactionsTotal.WithLabelValues("WITHDRAWAL", "FAILED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TransactionsTotal.WithLabelValues("DEPOSIT", "COMPLETED")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.TransactionDuration))
}

func TestObserveAccountOpened(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewWithRegisterer(registry, registry)

	m.ObserveAccountOpened(domain.AccountTypeSavings)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.AccountsOpened.WithLabelValues("SAVINGS")))
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	m.ObserveAsyncTask("ledger:transfer", "completed")

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `securebank_async_tasks_total{result="completed",type="ledger:transfer"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
