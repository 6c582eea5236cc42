package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/securebank-ledger/internal/domain"
)

// Policy holds the configurable business rules of the ledger.
type Policy struct {
	// Scale is the number of fractional digits an amount may carry.
	Scale int32
	// AllowSameAccount accepts transfers whose source equals destination.
	// They settle as a zero net adjustment.
	AllowSameAccount bool
}

// DefaultPolicy rejects self transfers and uses two fractional digits.
func DefaultPolicy() Policy {
	return Policy{Scale: domain.DefaultAmountScale}
}

// OperationError is returned when a ledger operation was attempted and
// recorded as FAILED. Transaction holds the durable FAILED record.
type OperationError struct {
	Transaction *domain.Transaction
	Err         error
}

func (e *OperationError) Error() string {
	return e.Err.Error()
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// LedgerConfig collects the dependencies of the ledger engine.
type LedgerConfig struct {
	TxManager TransactionManager
	Accounts  AccountStore
	Log       TransactionLog
	Outbox    OutboxRepository
	Retrier   Retrier
	IDGen     IDGenerator
	Metrics   MetricsRecorder
	Policy    Policy
}

// LedgerUseCase is the sole writer of balances and transactions.
type LedgerUseCase struct {
	txManager TransactionManager
	accounts  AccountStore
	log       TransactionLog
	outbox    OutboxRepository
	retrier   Retrier
	idGen     IDGenerator
	metrics   MetricsRecorder
	policy    Policy
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(cfg LedgerConfig) *LedgerUseCase {
	if cfg.Metrics == nil {
		cfg.Metrics = noopMetrics{}
	}
	if cfg.Retrier == nil {
		cfg.Retrier = onceRetrier{}
	}
	if cfg.Policy.Scale <= 0 {
		cfg.Policy.Scale = domain.DefaultAmountScale
	}

	return &LedgerUseCase{
		txManager: cfg.TxManager,
		accounts:  cfg.Accounts,
		log:       cfg.Log,
		outbox:    cfg.Outbox,
		retrier:   cfg.Retrier,
		idGen:     cfg.IDGen,
		metrics:   cfg.Metrics,
		policy:    cfg.Policy,
	}
}

// DepositInput represents input for a deposit.
type DepositInput struct {
	Description string
	Amount      decimal.Decimal
	AccountID   int64
}

// WithdrawInput represents input for a withdrawal.
type WithdrawInput struct {
	Description string
	Amount      decimal.Decimal
	AccountID   int64
}

// TransferInput represents input for a transfer between two accounts.
type TransferInput struct {
	Description   string
	Amount        decimal.Decimal
	FromAccountID int64
	ToAccountID   int64
}

// Deposit credits amount to an account.
func (uc *LedgerUseCase) Deposit(ctx context.Context, input DepositInput) (*domain.Transaction, error) {
	if err := domain.ValidateAmount(input.Amount, uc.policy.Scale); err != nil {
		return nil, err
	}

	if _, err := uc.accounts.GetByID(ctx, input.AccountID); err != nil {
		return nil, err
	}

	t := domain.NewTransaction(
		uc.idGen.Generate(),
		domain.TransactionTypeDeposit,
		nil,
		domain.AccountRef(input.AccountID),
		input.Amount,
		input.Description,
		time.Now().UTC(),
	)

	return uc.execute(ctx, t)
}

// Withdraw debits amount from an account if the balance covers it.
func (uc *LedgerUseCase) Withdraw(ctx context.Context, input WithdrawInput) (*domain.Transaction, error) {
	if err := domain.ValidateAmount(input.Amount, uc.policy.Scale); err != nil {
		return nil, err
	}

	if _, err := uc.accounts.GetByID(ctx, input.AccountID); err != nil {
		return nil, err
	}

	t := domain.NewTransaction(
		uc.idGen.Generate(),
		domain.TransactionTypeWithdrawal,
		domain.AccountRef(input.AccountID),
		nil,
		input.Amount,
		input.Description,
		time.Now().UTC(),
	)

	return uc.execute(ctx, t)
}

// Transfer moves amount between two accounts as one atomic unit.
func (uc *LedgerUseCase) Transfer(ctx context.Context, input TransferInput) (*domain.Transaction, error) {
	if err := domain.ValidateAmount(input.Amount, uc.policy.Scale); err != nil {
		return nil, err
	}

	if input.FromAccountID == input.ToAccountID && !uc.policy.AllowSameAccount {
		return nil, domain.ErrSameAccount
	}

	if _, err := uc.accounts.GetByID(ctx, input.FromAccountID); err != nil {
		return nil, err
	}

	if _, err := uc.accounts.GetByID(ctx, input.ToAccountID); err != nil {
		return nil, err
	}

	t := domain.NewTransaction(
		uc.idGen.Generate(),
		domain.TransactionTypeTransfer,
		domain.AccountRef(input.FromAccountID),
		domain.AccountRef(input.ToAccountID),
		input.Amount,
		input.Description,
		time.Now().UTC(),
	)

	return uc.execute(ctx, t)
}

// execute applies a PENDING transaction and records exactly one outcome.
func (uc *LedgerUseCase) execute(ctx context.Context, pending *domain.Transaction) (*domain.Transaction, error) {
	start := time.Now()
	logger := zerolog.Ctx(ctx)

	// Ascending account ID: the global lock order.
	adjustments := domain.MergeAdjustments(pending.Adjustments())

	var completed *domain.Transaction
	err := uc.retrier.Retry(ctx, func() error {
		var err error
		completed, err = uc.commit(ctx, pending, adjustments)
		return err
	})
	if err == nil {
		uc.metrics.ObserveTransaction(completed.Type, completed.Status, completed.Amount, time.Since(start))
		logger.Info().
			Int64("transaction_id", completed.ID).
			Str("reference", completed.Reference).
			Str("type", string(completed.Type)).
			Str("amount", completed.Amount.String()).
			Msg("transaction completed")

		return completed, nil
	}

	failed := pending.Clone()
	if failErr := failed.Fail(domain.KindOf(err)); failErr != nil {
		return nil, failErr
	}

	if recErr := uc.recordFailure(ctx, failed); recErr != nil {
		logger.Error().
			Err(recErr).
			AnErr("cause", err).
			Str("reference", failed.Reference).
			Msg("failed to record failed transaction")

		return nil, fmt.Errorf("%w (failure not recorded: %v)", err, recErr)
	}

	uc.metrics.ObserveTransaction(failed.Type, failed.Status, failed.Amount, time.Since(start))
	logger.Warn().
		Err(err).
		Int64("transaction_id", failed.ID).
		Str("reference", failed.Reference).
		Str("type", string(failed.Type)).
		Str("reason", string(failed.FailureReason)).
		Msg("transaction failed")

	return nil, &OperationError{Transaction: failed, Err: err}
}

// commit applies the adjustments and appends the COMPLETED record in one
// unit of work. pending is left untouched so the call can be retried.
func (uc *LedgerUseCase) commit(ctx context.Context, pending *domain.Transaction, adjustments []domain.Adjustment) (*domain.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if len(adjustments) == 1 {
		_, err = uc.accounts.AtomicAdjust(ctx, tx, adjustments[0].AccountID, adjustments[0].Delta)
	} else {
		_, err = uc.accounts.AtomicAdjustMany(ctx, tx, adjustments)
	}
	if err != nil {
		return nil, err
	}

	record := pending.Clone()
	if err := record.Complete(); err != nil {
		return nil, err
	}

	if err := uc.append(ctx, tx, record); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return record, nil
}

// recordFailure appends a FAILED record in a fresh unit of work. It runs
// even when the caller has gone away so the attempt is never lost.
func (uc *LedgerUseCase) recordFailure(ctx context.Context, failed *domain.Transaction) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := uc.append(ctx, tx, failed); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (uc *LedgerUseCase) append(ctx context.Context, tx Transaction, record *domain.Transaction) error {
	if err := uc.log.Append(ctx, tx, record); err != nil {
		return fmt.Errorf("append transaction: %w", err)
	}

	if uc.outbox == nil {
		return nil
	}

	if err := uc.outbox.Create(ctx, tx, domain.NewTransactionEvent(uc.idGen.Generate(), record)); err != nil {
		return fmt.Errorf("create outbox event: %w", err)
	}

	return nil
}

// IsFailedOperation reports whether err carries a recorded FAILED transaction
// and returns it.
func IsFailedOperation(err error) (*domain.Transaction, bool) {
	var opErr *OperationError
	if errors.As(err, &opErr) && opErr.Transaction != nil {
		return opErr.Transaction, true
	}
	return nil, false
}

type noopMetrics struct{}

func (noopMetrics) ObserveTransaction(domain.TransactionType, domain.TransactionStatus, decimal.Decimal, time.Duration) {
}

func (noopMetrics) ObserveAccountOpened(domain.AccountType) {}

type onceRetrier struct{}

func (onceRetrier) Retry(_ context.Context, operation func() error) error {
	return operation()
}
