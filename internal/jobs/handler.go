package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/iho/securebank-ledger/internal/domain"
	"github.com/iho/securebank-ledger/internal/usecase"
)

// LedgerService is the part of the engine queued tasks call into.
type LedgerService interface {
	Deposit(ctx context.Context, input usecase.DepositInput) (*domain.Transaction, error)
	Withdraw(ctx context.Context, input usecase.WithdrawInput) (*domain.Transaction, error)
	Transfer(ctx context.Context, input usecase.TransferInput) (*domain.Transaction, error)
}

// Reconciler produces ledger-wide reconciliation reports.
type Reconciler interface {
	GenerateReconciliationReport(ctx context.Context) (*usecase.ReconciliationReport, error)
}

// TaskRecorder records task outcomes.
type TaskRecorder interface {
	ObserveAsyncTask(taskType, result string)
}

// Task outcomes.
const (
	ResultCompleted = "completed"
	ResultFailed    = "failed"
	ResultRejected  = "rejected"
	ResultError     = "error"
)

// LedgerJob executes queued ledger operations through the engine.
type LedgerJob struct {
	ledger  LedgerService
	logger  zerolog.Logger
	metrics TaskRecorder
}

// NewLedgerJob creates a new LedgerJob.
func NewLedgerJob(ledger LedgerService, logger zerolog.Logger, metrics TaskRecorder) *LedgerJob {
	if metrics == nil {
		metrics = noopRecorder{}
	}
	return &LedgerJob{ledger: ledger, logger: logger, metrics: metrics}
}

// Handle processes ledger:deposit, ledger:withdraw and ledger:transfer tasks.
//
// A business failure has already been recorded as a FAILED transaction, so
// it completes the task. Rejections that never produced a record cannot
// succeed on retry and skip it. Anything else is returned for the queue to
// retry.
func (j *LedgerJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload LedgerPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		j.metrics.ObserveAsyncTask(t.Type(), ResultRejected)
		return fmt.Errorf("decode %s payload: %v: %w", t.Type(), err, asynq.SkipRetry)
	}

	taskID, _ := asynq.GetTaskID(ctx)
	logger := j.logger.With().Str("task_id", taskID).Str("task_type", t.Type()).Logger()
	ctx = logger.WithContext(ctx)

	record, err := j.execute(ctx, t.Type(), payload)
	switch {
	case err == nil:
		j.metrics.ObserveAsyncTask(t.Type(), ResultCompleted)
		logger.Info().Str("reference", record.Reference).Int64("transaction_id", record.ID).Msg("queued operation completed")
		return nil

	case isRecordedFailure(err):
		failed, _ := usecase.IsFailedOperation(err)
		j.metrics.ObserveAsyncTask(t.Type(), ResultFailed)
		logger.Warn().Err(err).Str("reference", failed.Reference).Msg("queued operation failed")
		return nil

	case isRejection(err):
		j.metrics.ObserveAsyncTask(t.Type(), ResultRejected)
		logger.Warn().Err(err).Msg("queued operation rejected")
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)

	default:
		j.metrics.ObserveAsyncTask(t.Type(), ResultError)
		logger.Error().Err(err).Msg("queued operation errored")
		return err
	}
}

func (j *LedgerJob) execute(ctx context.Context, taskType string, p LedgerPayload) (*domain.Transaction, error) {
	switch taskType {
	case TaskTypeDeposit:
		return j.ledger.Deposit(ctx, usecase.DepositInput{AccountID: p.AccountID, Amount: p.Amount, Description: p.Description})
	case TaskTypeWithdraw:
		return j.ledger.Withdraw(ctx, usecase.WithdrawInput{AccountID: p.AccountID, Amount: p.Amount, Description: p.Description})
	case TaskTypeTransfer:
		return j.ledger.Transfer(ctx, usecase.TransferInput{
			FromAccountID: p.FromAccountID,
			ToAccountID:   p.ToAccountID,
			Amount:        p.Amount,
			Description:   p.Description,
		})
	default:
		return nil, fmt.Errorf("jobs: unhandled task type %q", taskType)
	}
}

func isRecordedFailure(err error) bool {
	var opErr *usecase.OperationError
	return errors.As(err, &opErr)
}

func isRejection(err error) bool {
	switch domain.KindOf(err) {
	case domain.KindInvalidAmount, domain.KindSameAccount, domain.KindNotFound, domain.KindInvalidAccount:
		return true
	default:
		return false
	}
}

// ReconcileJob runs a ledger-wide reconciliation and logs discrepancies.
type ReconcileJob struct {
	reconciler Reconciler
	logger     zerolog.Logger
	metrics    TaskRecorder
}

// NewReconcileJob creates a new ReconcileJob.
func NewReconcileJob(reconciler Reconciler, logger zerolog.Logger, metrics TaskRecorder) *ReconcileJob {
	if metrics == nil {
		metrics = noopRecorder{}
	}
	return &ReconcileJob{reconciler: reconciler, logger: logger, metrics: metrics}
}

// Handle processes ledger:reconcile tasks.
func (j *ReconcileJob) Handle(ctx context.Context, t *asynq.Task) error {
	report, err := j.reconciler.GenerateReconciliationReport(ctx)
	if err != nil {
		j.metrics.ObserveAsyncTask(t.Type(), ResultError)
		return err
	}

	event := j.logger.Info()
	result := ResultCompleted
	if !report.LedgerConsistent {
		event = j.logger.Error()
		result = ResultFailed
	}
	j.metrics.ObserveAsyncTask(t.Type(), result)

	event.
		Int("accounts", report.TotalAccounts).
		Int("reconciled", report.ReconciledAccounts).
		Int("discrepancies", len(report.Discrepancies)).
		Str("total_balance", report.TotalBalance.String()).
		Str("expected_total", report.ExpectedTotal.String()).
		Bool("consistent", report.LedgerConsistent).
		Msg("ledger reconciliation")

	return nil
}

type noopRecorder struct{}

func (noopRecorder) ObserveAsyncTask(string, string) {}
