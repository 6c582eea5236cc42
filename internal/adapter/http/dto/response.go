package dto

import (
	"time"

	"github.com/iho/securebank-ledger/internal/domain"
	"github.com/iho/securebank-ledger/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID                int64     `json:"id"`
	AccountNumber     string    `json:"accountNumber"`
	AccountHolderName string    `json:"accountHolderName"`
	Email             string    `json:"email"`
	AccountType       string    `json:"accountType"`
	Balance           Money     `json:"balance"`
	Active            bool      `json:"active"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account, scale int32) *AccountResponse {
	return &AccountResponse{
		ID:                a.ID,
		AccountNumber:     a.AccountNumber,
		AccountHolderName: a.AccountHolderName,
		Email:             a.Email,
		AccountType:       string(a.AccountType),
		Balance:           NewMoney(a.Balance, scale),
		Active:            a.Active,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account, scale int32) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a, scale)
	}
	return result
}

// TransactionResponse represents a ledger record in API responses.
type TransactionResponse struct {
	ID              int64     `json:"id"`
	Reference       string    `json:"reference"`
	TransactionType string    `json:"transactionType"`
	FromAccountID   *int64    `json:"fromAccountId"`
	ToAccountID     *int64    `json:"toAccountId"`
	Amount          Money     `json:"amount"`
	Description     string    `json:"description"`
	Status          string    `json:"status"`
	FailureReason   string    `json:"failureReason,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// TransactionFromDomain converts a domain transaction to response.
func TransactionFromDomain(t *domain.Transaction, scale int32) *TransactionResponse {
	return &TransactionResponse{
		ID:              t.ID,
		Reference:       t.Reference,
		TransactionType: string(t.Type),
		FromAccountID:   t.FromAccountID,
		ToAccountID:     t.ToAccountID,
		Amount:          NewMoney(t.Amount, scale),
		Description:     t.Description,
		Status:          string(t.Status),
		FailureReason:   string(t.FailureReason),
		CreatedAt:       t.CreatedAt,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(transactions []*domain.Transaction, scale int32) []*TransactionResponse {
	result := make([]*TransactionResponse, len(transactions))
	for i, t := range transactions {
		result[i] = TransactionFromDomain(t, scale)
	}
	return result
}

// CountResponse carries a single count.
type CountResponse struct {
	Count int64 `json:"count"`
}

// MessageResponse carries a human-readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// AsyncAcceptedResponse is returned when a ledger operation was queued.
type AsyncAcceptedResponse struct {
	TaskID string `json:"taskId"`
	Queue  string `json:"queue"`
	Status string `json:"status"`
}

// ErrorResponse represents an error response. Transaction is set when the
// failed operation was recorded.
type ErrorResponse struct {
	Error       string               `json:"error"`
	Message     string               `json:"message"`
	Transaction *TransactionResponse `json:"transaction,omitempty"`
}

// ReconciliationResponse represents one account's reconciliation.
type ReconciliationResponse struct {
	AccountID         int64     `json:"accountId"`
	RecordedBalance   Money     `json:"recordedBalance"`
	CalculatedBalance Money     `json:"calculatedBalance"`
	Difference        Money     `json:"difference"`
	IsReconciled      bool      `json:"isReconciled"`
	LastChecked       time.Time `json:"lastChecked"`
}

// ReconciliationReportResponse represents a ledger-wide reconciliation.
type ReconciliationReportResponse struct {
	CheckedAt          time.Time                 `json:"checkedAt"`
	TotalAccounts      int                       `json:"totalAccounts"`
	ReconciledAccounts int                       `json:"reconciledAccounts"`
	TransactionsRead   int                       `json:"transactionsRead"`
	TotalBalance       Money                     `json:"totalBalance"`
	ExpectedTotal      Money                     `json:"expectedTotal"`
	LedgerConsistent   bool                      `json:"ledgerConsistent"`
	Discrepancies      []*ReconciliationResponse `json:"discrepancies"`
}

// ReconciliationFromResult converts a use case result.
func ReconciliationFromResult(r *usecase.ReconciliationResult, scale int32) *ReconciliationResponse {
	return &ReconciliationResponse{
		AccountID:         r.AccountID,
		RecordedBalance:   NewMoney(r.RecordedBalance, scale),
		CalculatedBalance: NewMoney(r.CalculatedBalance, scale),
		Difference:        NewMoney(r.Difference, scale),
		IsReconciled:      r.IsReconciled,
		LastChecked:       r.LastChecked,
	}
}

// ReconciliationReportFromResult converts a use case report.
func ReconciliationReportFromResult(r *usecase.ReconciliationReport, scale int32) *ReconciliationReportResponse {
	discrepancies := make([]*ReconciliationResponse, len(r.Discrepancies))
	for i, d := range r.Discrepancies {
		discrepancies[i] = ReconciliationFromResult(d, scale)
	}

	return &ReconciliationReportResponse{
		CheckedAt:          r.CheckedAt,
		TotalAccounts:      r.TotalAccounts,
		ReconciledAccounts: r.ReconciledAccounts,
		TransactionsRead:   r.TransactionsRead,
		TotalBalance:       NewMoney(r.TotalBalance, scale),
		ExpectedTotal:      NewMoney(r.ExpectedTotal, scale),
		LedgerConsistent:   r.LedgerConsistent,
		Discrepancies:      discrepancies,
	}
}
