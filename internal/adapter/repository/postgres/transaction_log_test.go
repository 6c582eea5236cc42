package postgres

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/securebank-ledger/internal/domain"
)

var transactionColumns = []string{
	"id", "reference", "transaction_type", "from_account_id", "to_account_id",
	"amount", "description", "status", "failure_reason", "created_at",
}

func TestTransactionLog_AppendAssignsID(t *testing.T) {
	pool := newMockPool(t)
	log := newTransactionLog(pool)
	tx := beginTx(t, pool)

	record := domain.NewTransaction("REF-1", domain.TransactionTypeDeposit, nil, domain.AccountRef(4),
		decimal.RequireFromString("25.00"), "payday", rowTime)
	require.NoError(t, record.Complete())

	pool.ExpectQuery("CreateTransaction").
		WithArgs("REF-1", "DEPOSIT", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			"payday", "COMPLETED", "", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(11)))

	require.NoError(t, log.Append(context.Background(), tx, record))
	assert.Equal(t, int64(11), record.ID)
	assertExpectations(t, pool)
}

func TestTransactionLog_GetByID(t *testing.T) {
	pool := newMockPool(t)
	log := newTransactionLog(pool)

	pool.ExpectQuery("GetTransactionByID").
		WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows(transactionColumns).
			AddRow(int64(5), "REF-5", "WITHDRAWAL", int64(2), nil, "500.00", "", "FAILED", "InsufficientFunds", rowTime))

	record, err := log.GetByID(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionTypeWithdrawal, record.Type)
	require.NotNil(t, record.FromAccountID)
	assert.Equal(t, int64(2), *record.FromAccountID)
	assert.Nil(t, record.ToAccountID)
	assert.Equal(t, domain.TransactionStatusFailed, record.Status)
	assert.Equal(t, domain.KindInsufficientFunds, record.FailureReason)
	assert.True(t, record.Amount.Equal(decimal.RequireFromString("500")))
}

func TestTransactionLog_GetByIDNotFound(t *testing.T) {
	pool := newMockPool(t)
	log := newTransactionLog(pool)

	pool.ExpectQuery("GetTransactionByID").WithArgs(int64(5)).WillReturnError(pgx.ErrNoRows)

	_, err := log.GetByID(context.Background(), 5)
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)
}

func TestTransactionLog_ListByAccount(t *testing.T) {
	pool := newMockPool(t)
	log := newTransactionLog(pool)

	pool.ExpectQuery("ListTransactionsByAccount").
		WithArgs(pgxmock.AnyArg(), int32(20), int32(0)).
		WillReturnRows(pgxmock.NewRows(transactionColumns).
			AddRow(int64(1), "REF-1", "DEPOSIT", nil, int64(3), "10.00", "", "COMPLETED", "", rowTime).
			AddRow(int64(2), "REF-2", "TRANSFER", int64(3), int64(4), "4.00", "rent", "COMPLETED", "", rowTime))

	records, err := log.ListByAccount(context.Background(), 3, 20, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "REF-1", records[0].Reference)
	assert.Equal(t, "rent", records[1].Description)
	assertExpectations(t, pool)
}

func TestTransactionLog_Count(t *testing.T) {
	pool := newMockPool(t)
	log := newTransactionLog(pool)

	pool.ExpectQuery("CountTransactions").WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(8)))

	n, err := log.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(8), n)
}
