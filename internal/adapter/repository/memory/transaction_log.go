package memory

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/iho/securebank-ledger/internal/domain"
	"github.com/iho/securebank-ledger/internal/usecase"
)

type logState struct {
	mu        sync.RWMutex
	nextID    atomic.Int64
	records   []*domain.Transaction
	byID      map[int64]*domain.Transaction
	byAccount map[int64][]*domain.Transaction
}

func newLogState() *logState {
	return &logState{
		byID:      make(map[int64]*domain.Transaction),
		byAccount: make(map[int64][]*domain.Transaction),
	}
}

// publish makes committed records visible, keeping every index ordered by
// creation time then ID.
func (l *logState) publish(records []*domain.Transaction) {
	if len(records) == 0 {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, r := range records {
		l.records = insertOrdered(l.records, r)
		l.byID[r.ID] = r
		if r.FromAccountID != nil {
			l.byAccount[*r.FromAccountID] = insertOrdered(l.byAccount[*r.FromAccountID], r)
		}
		if r.ToAccountID != nil && (r.FromAccountID == nil || *r.ToAccountID != *r.FromAccountID) {
			l.byAccount[*r.ToAccountID] = insertOrdered(l.byAccount[*r.ToAccountID], r)
		}
	}
}

func insertOrdered(records []*domain.Transaction, r *domain.Transaction) []*domain.Transaction {
	i, _ := slices.BinarySearchFunc(records, r, compareTransactions)
	return slices.Insert(records, i, r)
}

func compareTransactions(a, b *domain.Transaction) int {
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	switch {
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	}
	return 0
}

// TransactionLog implements usecase.TransactionLog.
type TransactionLog struct {
	db *DB
}

// NewTransactionLog creates a new TransactionLog.
func NewTransactionLog(db *DB) *TransactionLog {
	return &TransactionLog{db: db}
}

// Append assigns the record an ID and stages it in the unit of work.
func (l *TransactionLog) Append(_ context.Context, tx usecase.Transaction, transaction *domain.Transaction) error {
	if transaction == nil {
		return errors.New("memory: nil transaction")
	}

	t, err := unwrapTx(l.db, tx)
	if err != nil {
		return err
	}

	transaction.ID = l.db.log.nextID.Add(1)
	t.records = append(t.records, transaction.Clone())

	return nil
}

// GetByID retrieves a transaction by ID.
func (l *TransactionLog) GetByID(_ context.Context, id int64) (*domain.Transaction, error) {
	l.db.log.mu.RLock()
	defer l.db.log.mu.RUnlock()

	r, ok := l.db.log.byID[id]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}

	return r.Clone(), nil
}

// ListAll lists transactions by creation time, ties broken by ID.
func (l *TransactionLog) ListAll(_ context.Context, limit, offset int) ([]*domain.Transaction, error) {
	l.db.log.mu.RLock()
	defer l.db.log.mu.RUnlock()

	return page(l.db.log.records, limit, offset), nil
}

// ListByAccount lists transactions where the account is source or
// destination.
func (l *TransactionLog) ListByAccount(_ context.Context, accountID int64, limit, offset int) ([]*domain.Transaction, error) {
	l.db.log.mu.RLock()
	defer l.db.log.mu.RUnlock()

	return page(l.db.log.byAccount[accountID], limit, offset), nil
}

// Count returns the number of committed records.
func (l *TransactionLog) Count(_ context.Context) (int64, error) {
	l.db.log.mu.RLock()
	defer l.db.log.mu.RUnlock()

	return int64(len(l.db.log.records)), nil
}

func page(records []*domain.Transaction, limit, offset int) []*domain.Transaction {
	if offset >= len(records) {
		return []*domain.Transaction{}
	}
	records = records[offset:]
	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}

	out := make([]*domain.Transaction, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}
