package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/securebank-ledger/internal/domain"
	"github.com/iho/securebank-ledger/internal/infrastructure/postgres/generated"
	"github.com/iho/securebank-ledger/internal/usecase"
)

// TransactionLog implements usecase.TransactionLog on the append-only
// transactions table.
type TransactionLog struct {
	queries *generated.Queries
}

// NewTransactionLog creates a new TransactionLog.
func NewTransactionLog(pool *pgxpool.Pool) *TransactionLog {
	return newTransactionLog(pool)
}

func newTransactionLog(db generated.DBTX) *TransactionLog {
	return &TransactionLog{queries: generated.New(db)}
}

// Append inserts the record and assigns its ID.
func (l *TransactionLog) Append(ctx context.Context, tx usecase.Transaction, transaction *domain.Transaction) error {
	pgxTx, err := unwrapTx(tx)
	if err != nil {
		return err
	}

	id, err := generated.New(pgxTx).CreateTransaction(ctx, generated.CreateTransactionParams{
		Reference:       transaction.Reference,
		TransactionType: string(transaction.Type),
		FromAccountID:   int64PtrToPgInt8(transaction.FromAccountID),
		ToAccountID:     int64PtrToPgInt8(transaction.ToAccountID),
		Amount:          decimalToNumeric(transaction.Amount),
		Description:     transaction.Description,
		Status:          string(transaction.Status),
		FailureReason:   string(transaction.FailureReason),
		CreatedAt:       timeToPgTimestamptz(transaction.CreatedAt),
	})
	if err != nil {
		return fmt.Errorf("insert transaction %s: %w", transaction.Reference, err)
	}

	transaction.ID = id

	return nil
}

// GetByID retrieves a transaction by ID.
func (l *TransactionLog) GetByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	row, err := l.queries.GetTransactionByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}

	return rowToTransaction(row), nil
}

// ListAll lists transactions by creation time, ties broken by ID.
func (l *TransactionLog) ListAll(ctx context.Context, limit, offset int) ([]*domain.Transaction, error) {
	rows, err := l.queries.ListTransactions(ctx, generated.ListTransactionsParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToTransactions(rows), nil
}

// ListByAccount lists transactions where the account is source or
// destination.
func (l *TransactionLog) ListByAccount(ctx context.Context, accountID int64, limit, offset int) ([]*domain.Transaction, error) {
	rows, err := l.queries.ListTransactionsByAccount(ctx, generated.ListTransactionsByAccountParams{
		AccountID: int64PtrToPgInt8(&accountID),
		Limit:     int32(limit),
		Offset:    int32(offset),
	})
	if err != nil {
		return nil, err
	}

	return rowsToTransactions(rows), nil
}

// Count returns the number of logged transactions.
func (l *TransactionLog) Count(ctx context.Context) (int64, error) {
	return l.queries.CountTransactions(ctx)
}

func rowsToTransactions(rows []generated.Transaction) []*domain.Transaction {
	transactions := make([]*domain.Transaction, 0, len(rows))
	for _, row := range rows {
		transactions = append(transactions, rowToTransaction(row))
	}
	return transactions
}

func rowToTransaction(row generated.Transaction) *domain.Transaction {
	return &domain.Transaction{
		ID:            row.ID,
		Reference:     row.Reference,
		Type:          domain.TransactionType(row.TransactionType),
		FromAccountID: pgInt8ToInt64Ptr(row.FromAccountID),
		ToAccountID:   pgInt8ToInt64Ptr(row.ToAccountID),
		Amount:        numericToDecimal(row.Amount),
		Description:   row.Description,
		Status:        domain.TransactionStatus(row.Status),
		FailureReason: domain.ErrorKind(row.FailureReason),
		CreatedAt:     row.CreatedAt.Time,
	}
}
