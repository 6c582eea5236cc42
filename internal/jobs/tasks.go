package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"

	"github.com/iho/securebank-ledger/internal/domain"
)

const (
	// QueueLedger is the queue ledger operations are submitted to.
	QueueLedger = "ledger"
	// QueueMaintenance holds scheduled housekeeping such as reconciliation.
	QueueMaintenance = "maintenance"

	TaskTypeDeposit   = "ledger:deposit"
	TaskTypeWithdraw  = "ledger:withdraw"
	TaskTypeTransfer  = "ledger:transfer"
	TaskTypeReconcile = "ledger:reconcile"
)

// taskRetention keeps finished tasks, and so their IDs, around long enough
// to reject resubmissions.
const taskRetention = 24 * time.Hour

// LedgerPayload describes one queued ledger operation.
type LedgerPayload struct {
	Type          domain.TransactionType `json:"type"`
	AccountID     int64                  `json:"account_id,omitempty"`
	FromAccountID int64                  `json:"from_account_id,omitempty"`
	ToAccountID   int64                  `json:"to_account_id,omitempty"`
	Amount        decimal.Decimal        `json:"amount"`
	Description   string                 `json:"description,omitempty"`
}

// TaskType returns the queue task type for the payload.
func (p LedgerPayload) TaskType() (string, error) {
	switch p.Type {
	case domain.TransactionTypeDeposit:
		return TaskTypeDeposit, nil
	case domain.TransactionTypeWithdrawal:
		return TaskTypeWithdraw, nil
	case domain.TransactionTypeTransfer:
		return TaskTypeTransfer, nil
	default:
		return "", fmt.Errorf("jobs: unknown transaction type %q", p.Type)
	}
}

// NewLedgerTask constructs a task for the payload. The queue retries only
// errors that left no ledger record behind.
func NewLedgerTask(payload LedgerPayload) (*asynq.Task, error) {
	taskType, err := payload.TaskType()
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(taskType, data,
		asynq.Queue(QueueLedger),
		asynq.MaxRetry(3),
		asynq.Retention(taskRetention),
	), nil
}

// NewReconcileTask constructs the periodic reconciliation task.
func NewReconcileTask() *asynq.Task {
	return asynq.NewTask(TaskTypeReconcile, nil, asynq.Queue(QueueMaintenance), asynq.MaxRetry(1))
}
