package domain

import "errors"

var (
	// Account errors
	ErrAccountNotFound         = errors.New("account not found")
	ErrAccountInactive         = errors.New("account is inactive")
	ErrInsufficientFunds       = errors.New("insufficient funds")
	ErrDuplicateAccountNumber  = errors.New("account number already exists")
	ErrInvalidAccount          = errors.New("invalid account")
	ErrInvalidStatusTransition = errors.New("invalid transaction status transition")

	// Transaction errors
	ErrSameAccount         = errors.New("cannot transfer to same account")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrConflict            = errors.New("concurrent update conflict, retries exhausted")
)

// ErrorKind is the machine-readable category of a ledger error.
type ErrorKind string

const (
	KindNotFound          ErrorKind = "NotFound"
	KindInvalidAmount     ErrorKind = "InvalidAmount"
	KindInsufficientFunds ErrorKind = "InsufficientFunds"
	KindSameAccount       ErrorKind = "SameAccount"
	KindConflict          ErrorKind = "Conflict"
	KindAccountInactive   ErrorKind = "AccountInactive"
	KindInvalidAccount    ErrorKind = "InvalidAccount"
	KindInternal          ErrorKind = "Internal"
)

// KindOf resolves err, possibly wrapped, to its ErrorKind.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAccountNotFound), errors.Is(err, ErrTransactionNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidAmount):
		return KindInvalidAmount
	case errors.Is(err, ErrInsufficientFunds):
		return KindInsufficientFunds
	case errors.Is(err, ErrSameAccount):
		return KindSameAccount
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrAccountInactive):
		return KindAccountInactive
	case errors.Is(err, ErrInvalidAccount), errors.Is(err, ErrDuplicateAccountNumber):
		return KindInvalidAccount
	default:
		return KindInternal
	}
}
