package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/securebank-ledger/internal/domain"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks

// AccountStore holds account records and is the single authority for
// mutating balances.
type AccountStore interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	GetByNumber(ctx context.Context, number string) (*domain.Account, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
	Count(ctx context.Context) (int64, error)
	UpdateDetails(ctx context.Context, account *domain.Account) error
	Deactivate(ctx context.Context, id int64, at time.Time) error
	// AtomicAdjust applies balance += delta only if the result stays >= 0.
	AtomicAdjust(ctx context.Context, tx Transaction, id int64, delta decimal.Decimal) (decimal.Decimal, error)
	// AtomicAdjustMany applies all adjustments or none, locking accounts in
	// ascending ID order. Returns the new balance per account.
	AtomicAdjustMany(ctx context.Context, tx Transaction, adjustments []domain.Adjustment) (map[int64]decimal.Decimal, error)
}

// TransactionLog is the append-only record of every attempted operation.
type TransactionLog interface {
	Append(ctx context.Context, tx Transaction, transaction *domain.Transaction) error
	GetByID(ctx context.Context, id int64) (*domain.Transaction, error)
	ListAll(ctx context.Context, limit, offset int) ([]*domain.Transaction, error)
	ListByAccount(ctx context.Context, accountID int64, limit, offset int) ([]*domain.Transaction, error)
	Count(ctx context.Context) (int64, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a unit of work against the store. It is unrelated
// to domain.Transaction, the ledger record.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles unit of work lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on retryable store errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// MetricsRecorder records ledger operation metrics.
type MetricsRecorder interface {
	ObserveTransaction(txType domain.TransactionType, status domain.TransactionStatus, amount decimal.Decimal, duration time.Duration)
	ObserveAccountOpened(accountType domain.AccountType)
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key whose request did not succeed.
	Release(ctx context.Context, key string) error
}
