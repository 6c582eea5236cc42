package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the kind of money movement.
type TransactionType string

const (
	TransactionTypeTransfer   TransactionType = "TRANSFER"
	TransactionTypeDeposit    TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal TransactionType = "WITHDRAWAL"
)

// DefaultDescription is used when the caller leaves description empty.
func (t TransactionType) DefaultDescription() string {
	switch t {
	case TransactionTypeTransfer:
		return "Transfer"
	case TransactionTypeDeposit:
		return "Deposit"
	case TransactionTypeWithdrawal:
		return "Withdrawal"
	}
	return ""
}

// TransactionStatus is the outcome state of a transaction.
// PENDING moves to COMPLETED or FAILED; both are terminal.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// CanTransitionTo reports whether s may move to next.
func (s TransactionStatus) CanTransitionTo(next TransactionStatus) bool {
	return s == TransactionStatusPending &&
		(next == TransactionStatusCompleted || next == TransactionStatusFailed)
}

// Transaction is an immutable record of one attempted money movement.
type Transaction struct {
	CreatedAt     time.Time
	FromAccountID *int64
	ToAccountID   *int64
	Reference     string
	Type          TransactionType
	Status        TransactionStatus
	Description   string
	FailureReason ErrorKind
	Amount        decimal.Decimal
	ID            int64
}

// NewTransaction builds a PENDING transaction.
func NewTransaction(
	reference string,
	txType TransactionType,
	from, to *int64,
	amount decimal.Decimal,
	description string,
	now time.Time,
) *Transaction {
	if description == "" {
		description = txType.DefaultDescription()
	}

	return &Transaction{
		Reference:     reference,
		Type:          txType,
		FromAccountID: from,
		ToAccountID:   to,
		Amount:        amount,
		Description:   description,
		Status:        TransactionStatusPending,
		CreatedAt:     now,
	}
}

// Complete marks the transaction COMPLETED.
func (t *Transaction) Complete() error {
	if !t.Status.CanTransitionTo(TransactionStatusCompleted) {
		return ErrInvalidStatusTransition
	}
	t.Status = TransactionStatusCompleted
	return nil
}

// Fail marks the transaction FAILED with the given reason.
func (t *Transaction) Fail(reason ErrorKind) error {
	if !t.Status.CanTransitionTo(TransactionStatusFailed) {
		return ErrInvalidStatusTransition
	}
	t.Status = TransactionStatusFailed
	t.FailureReason = reason
	return nil
}

// References reports whether the transaction touches accountID.
func (t *Transaction) References(accountID int64) bool {
	return (t.FromAccountID != nil && *t.FromAccountID == accountID) ||
		(t.ToAccountID != nil && *t.ToAccountID == accountID)
}

// Adjustments returns the balance changes this transaction applies.
func (t *Transaction) Adjustments() []Adjustment {
	var adjustments []Adjustment
	if t.FromAccountID != nil {
		adjustments = append(adjustments, Adjustment{AccountID: *t.FromAccountID, Delta: t.Amount.Neg()})
	}
	if t.ToAccountID != nil {
		adjustments = append(adjustments, Adjustment{AccountID: *t.ToAccountID, Delta: t.Amount})
	}
	return adjustments
}

// Clone returns a deep copy of the transaction.
func (t *Transaction) Clone() *Transaction {
	c := *t
	if t.FromAccountID != nil {
		from := *t.FromAccountID
		c.FromAccountID = &from
	}
	if t.ToAccountID != nil {
		to := *t.ToAccountID
		c.ToAccountID = &to
	}
	return &c
}

// AccountRef returns a pointer to a copy of id.
func AccountRef(id int64) *int64 {
	return &id
}
