package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpAdapter "github.com/iho/securebank-ledger/internal/adapter/http"
	"github.com/iho/securebank-ledger/internal/adapter/http/handler"
	"github.com/iho/securebank-ledger/internal/app"
	"github.com/iho/securebank-ledger/internal/infrastructure/config"
)

func newLedgerServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &config.Config{StorageDriver: config.StorageMemory, AmountScale: 2}
	st, err := app.OpenStorage(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	svc := app.NewServices(st, app.PolicyFromConfig(cfg), nil)

	srv := httptest.NewServer(httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:     handler.NewAccountHandler(svc.Accounts, svc.Query, svc.Policy.Scale),
		TransactionHandler: handler.NewTransactionHandler(svc.Ledger, svc.Query, nil, svc.Policy),
		LedgerHandler:      handler.NewLedgerHandler(svc.Reconciliation, svc.Policy.Scale),
		HealthHandler:      handler.NewHealthHandler(nil),
		Logger:             zerolog.Nop(),
	}))
	t.Cleanup(srv.Close)
	return srv
}

func runCLI(t *testing.T, url string, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--url", url}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestCLI_AccountLifecycleAndTransfer(t *testing.T) {
	srv := newLedgerServer(t)

	out, err := runCLI(t, srv.URL, "accounts", "create", "--name", "Alice", "--email", "alice@example.com", "--number", "ALICE-1", "--balance", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "Account 1 opened: ALICE-1, balance 100.00")

	_, err = runCLI(t, srv.URL, "accounts", "create", "--name", "Bob", "--email", "bob@example.com", "--type", "SAVINGS")
	require.NoError(t, err)

	out, err = runCLI(t, srv.URL, "transfer", "1", "2", "40.50", "-d", "rent")
	require.NoError(t, err)
	assert.Contains(t, out, "COMPLETED: TRANSFER 40.50")

	out, err = runCLI(t, srv.URL, "accounts", "get", "ALICE-1")
	require.NoError(t, err)
	assert.Contains(t, out, "59.50")

	out, err = runCLI(t, srv.URL, "accounts", "count")
	require.NoError(t, err)
	assert.Equal(t, "2", strings.TrimSpace(out))

	out, err = runCLI(t, srv.URL, "history", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "TRANSFER")
	assert.Contains(t, out, "40.50")
}

func TestCLI_FailedWithdrawalPrintsRecord(t *testing.T) {
	srv := newLedgerServer(t)

	_, err := runCLI(t, srv.URL, "accounts", "create", "--name", "Carol", "--email", "carol@example.com", "--balance", "5")
	require.NoError(t, err)

	out, err := runCLI(t, srv.URL, "withdraw", "1", "10")
	require.Error(t, err)
	assert.Contains(t, out, "FAILED: InsufficientFunds")

	apiErr, ok := asAPIError(err)
	require.True(t, ok)
	assert.Equal(t, 422, apiErr.Status)
}

func TestCLI_Reconcile(t *testing.T) {
	srv := newLedgerServer(t)

	_, err := runCLI(t, srv.URL, "accounts", "create", "--name", "Dan", "--email", "dan@example.com", "--balance", "10")
	require.NoError(t, err)
	_, err = runCLI(t, srv.URL, "deposit", "1", "2.25")
	require.NoError(t, err)

	out, err := runCLI(t, srv.URL, "ledger", "reconcile")
	require.NoError(t, err)
	assert.Contains(t, out, "Total balance: 12.25, expected: 12.25")
	assert.Contains(t, out, "Reconciliation PASSED")
}

func TestCLI_RawJSONOutput(t *testing.T) {
	srv := newLedgerServer(t)

	out, err := runCLI(t, srv.URL, "--json", "accounts", "list")
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(out))
}

func TestCLI_RejectsBadArguments(t *testing.T) {
	_, err := runCLI(t, "http://127.0.0.1:0", "deposit", "abc", "10")
	assert.ErrorContains(t, err, "invalid account id")

	_, err = runCLI(t, "http://127.0.0.1:0", "deposit", "1", "ten")
	assert.ErrorContains(t, err, "invalid amount")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "lon...", truncate("longerstring", 6))
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printJSON(&buf, struct {
		A int `json:"a"`
	}{A: 1}))

	assert.Equal(t, "{\n  \"a\": 1\n}\n", buf.String())
}
