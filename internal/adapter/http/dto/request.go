package dto

import (
	"github.com/shopspring/decimal"

	"github.com/iho/securebank-ledger/internal/domain"
	"github.com/iho/securebank-ledger/internal/usecase"
)

// OpenAccountRequest represents a request to open an account. Balance is
// the opening balance.
type OpenAccountRequest struct {
	AccountNumber     string          `json:"accountNumber"     validate:"omitempty,max=34"`
	AccountHolderName string          `json:"accountHolderName" validate:"required,max=255"`
	Email             string          `json:"email"             validate:"required,email"`
	AccountType       string          `json:"accountType"       validate:"required,oneof=CHECKING SAVINGS"`
	Balance           decimal.Decimal `json:"balance"`
}

// ToUseCaseInput converts to use case input.
func (r *OpenAccountRequest) ToUseCaseInput() usecase.OpenAccountInput {
	return usecase.OpenAccountInput{
		AccountNumber:     r.AccountNumber,
		AccountHolderName: r.AccountHolderName,
		Email:             r.Email,
		AccountType:       domain.AccountType(r.AccountType),
		InitialBalance:    r.Balance,
	}
}

// UpdateAccountRequest represents a request to change account metadata.
type UpdateAccountRequest struct {
	AccountHolderName string `json:"accountHolderName" validate:"required,max=255"`
	Email             string `json:"email"             validate:"required,email"`
	AccountType       string `json:"accountType"       validate:"required,oneof=CHECKING SAVINGS"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateAccountRequest) ToUseCaseInput(id int64) usecase.UpdateAccountInput {
	return usecase.UpdateAccountInput{
		ID:                id,
		AccountHolderName: r.AccountHolderName,
		Email:             r.Email,
		AccountType:       domain.AccountType(r.AccountType),
	}
}

// TransferRequest represents a request to move money between accounts.
type TransferRequest struct {
	FromAccountID int64           `json:"fromAccountId" validate:"required"`
	ToAccountID   int64           `json:"toAccountId"   validate:"required"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"   validate:"description"`
}

// ToUseCaseInput converts to use case input.
func (r *TransferRequest) ToUseCaseInput() usecase.TransferInput {
	return usecase.TransferInput{
		FromAccountID: r.FromAccountID,
		ToAccountID:   r.ToAccountID,
		Amount:        r.Amount,
		Description:   r.Description,
	}
}

// SingleAccountRequest represents a deposit or withdrawal.
type SingleAccountRequest struct {
	AccountID   int64           `json:"accountId"   validate:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description" validate:"description"`
}

// ToDepositInput converts to deposit input.
func (r *SingleAccountRequest) ToDepositInput() usecase.DepositInput {
	return usecase.DepositInput{AccountID: r.AccountID, Amount: r.Amount, Description: r.Description}
}

// ToWithdrawInput converts to withdraw input.
func (r *SingleAccountRequest) ToWithdrawInput() usecase.WithdrawInput {
	return usecase.WithdrawInput{AccountID: r.AccountID, Amount: r.Amount, Description: r.Description}
}

// AsyncTransactionRequest queues any ledger operation for the worker.
type AsyncTransactionRequest struct {
	Type          string          `json:"type"          validate:"required,oneof=TRANSFER DEPOSIT WITHDRAWAL"`
	AccountID     int64           `json:"accountId"     validate:"required_unless=Type TRANSFER"`
	FromAccountID int64           `json:"fromAccountId" validate:"required_if=Type TRANSFER"`
	ToAccountID   int64           `json:"toAccountId"   validate:"required_if=Type TRANSFER"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"   validate:"description"`
}
