package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/securebank-ledger/internal/domain"
)

func appendRecord(t *testing.T, db *DB, record *domain.Transaction, commit bool) {
	t.Helper()
	ctx := context.Background()

	tx, err := NewTxManager(db).Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, NewTransactionLog(db).Append(ctx, tx, record))
	if commit {
		require.NoError(t, tx.Commit(ctx))
	} else {
		require.NoError(t, tx.Rollback(ctx))
	}
}

func TestTransactionLog_AppendVisibleOnlyAfterCommit(t *testing.T) {
	db := New()
	log := NewTransactionLog(db)
	ctx := context.Background()
	now := time.Now().UTC()

	rolledBack := domain.NewTransaction("R1", domain.TransactionTypeDeposit, nil, domain.AccountRef(1), decimal.NewFromInt(5), "", now)
	appendRecord(t, db, rolledBack, false)

	count, err := log.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	committed := domain.NewTransaction("R2", domain.TransactionTypeDeposit, nil, domain.AccountRef(1), decimal.NewFromInt(5), "", now)
	appendRecord(t, db, committed, true)

	got, err := log.GetByID(ctx, committed.ID)
	require.NoError(t, err)
	assert.Equal(t, "R2", got.Reference)
	assert.Equal(t, "Deposit", got.Description)

	_, err = log.GetByID(ctx, rolledBack.ID)
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)
}

func TestTransactionLog_Ordering(t *testing.T) {
	db := New()
	log := NewTransactionLog(db)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	late := domain.NewTransaction("LATE", domain.TransactionTypeDeposit, nil, domain.AccountRef(1), decimal.NewFromInt(1), "", base.Add(time.Second))
	early := domain.NewTransaction("EARLY", domain.TransactionTypeDeposit, nil, domain.AccountRef(1), decimal.NewFromInt(1), "", base)
	tie := domain.NewTransaction("TIE", domain.TransactionTypeWithdrawal, domain.AccountRef(1), nil, decimal.NewFromInt(1), "", base)

	// Commit order differs from creation order.
	appendRecord(t, db, late, true)
	appendRecord(t, db, early, true)
	appendRecord(t, db, tie, true)

	all, err := log.ListAll(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"EARLY", "TIE", "LATE"}, []string{all[0].Reference, all[1].Reference, all[2].Reference})

	page, err := log.ListAll(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "TIE", page[0].Reference)
}

func TestTransactionLog_ListByAccount(t *testing.T) {
	db := New()
	log := NewTransactionLog(db)
	ctx := context.Background()
	now := time.Now().UTC()

	appendRecord(t, db, domain.NewTransaction("T1", domain.TransactionTypeTransfer, domain.AccountRef(1), domain.AccountRef(2), decimal.NewFromInt(1), "", now), true)
	appendRecord(t, db, domain.NewTransaction("T2", domain.TransactionTypeDeposit, nil, domain.AccountRef(2), decimal.NewFromInt(1), "", now), true)
	appendRecord(t, db, domain.NewTransaction("T3", domain.TransactionTypeWithdrawal, domain.AccountRef(3), nil, decimal.NewFromInt(1), "", now), true)
	appendRecord(t, db, domain.NewTransaction("T4", domain.TransactionTypeTransfer, domain.AccountRef(2), domain.AccountRef(2), decimal.NewFromInt(1), "", now), true)

	first, err := log.ListByAccount(ctx, 1, 10, 0)
	require.NoError(t, err)
	assert.Len(t, first, 1)

	second, err := log.ListByAccount(ctx, 2, 10, 0)
	require.NoError(t, err)
	assert.Len(t, second, 3, "self transfer is listed once")
	for _, r := range second {
		assert.True(t, r.References(2))
	}

	none, err := log.ListByAccount(ctx, 9, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestTransactionLog_RecordsAreImmutable(t *testing.T) {
	db := New()
	log := NewTransactionLog(db)
	ctx := context.Background()

	record := domain.NewTransaction("IMM", domain.TransactionTypeDeposit, nil, domain.AccountRef(1), decimal.NewFromInt(7), "", time.Now())
	appendRecord(t, db, record, true)

	// Mutating the caller's copy or a read copy does not reach the log.
	record.Description = "changed"
	got, err := log.GetByID(ctx, record.ID)
	require.NoError(t, err)
	*got.ToAccountID = 99

	again, err := log.GetByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, "Deposit", again.Description)
	assert.Equal(t, int64(1), *again.ToAccountID)
}

func TestOutboxRepository_Lifecycle(t *testing.T) {
	db := New()
	outbox := NewOutboxRepository(db)
	ctx := context.Background()

	record := domain.NewTransaction("EVT", domain.TransactionTypeDeposit, nil, domain.AccountRef(1), decimal.NewFromInt(7), "", time.Now())
	require.NoError(t, record.Complete())

	tx, err := NewTxManager(db).Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, outbox.Create(ctx, tx, domain.NewTransactionEvent("E1", record)))

	pending, err := outbox.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending, "staged events are invisible before commit")

	require.NoError(t, tx.Commit(ctx))

	pending, err = outbox.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, domain.EventTypeTransactionCompleted, pending[0].EventType)

	publishedAt := time.Now().Add(-time.Hour)
	require.NoError(t, outbox.MarkPublished(ctx, "E1", publishedAt))

	pending, err = outbox.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	require.NoError(t, outbox.DeletePublished(ctx, time.Now()))
	assert.Empty(t, db.outbox.events)
}
