package domain

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MaxHolderNameLength    = 255
	MinHolderNameLength    = 1
	MaxAccountNumberLength = 34 // IBAN upper bound
	MaxDescriptionLength   = 500
	DefaultAmountScale     = 2
	MaxTransactionAmount   = "1000000000000" // 1 trillion
)

var (
	emailRegex         = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	accountNumberRegex = regexp.MustCompile(`^[A-Z0-9-]+$`)
)

// ValidateAmount checks that amount is positive, within limits and has
// at most scale fractional digits.
func ValidateAmount(amount decimal.Decimal, scale int32) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if !amount.Equal(amount.Truncate(scale)) {
		return fmt.Errorf("%w: at most %d fractional digits allowed", ErrInvalidAmount, scale)
	}

	maxAmount, _ := decimal.NewFromString(MaxTransactionAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrInvalidAmount, MaxTransactionAmount)
	}

	return nil
}

// ValidateOpeningBalance checks the starting balance of a new account.
func ValidateOpeningBalance(balance decimal.Decimal, scale int32) error {
	if balance.IsNegative() {
		return fmt.Errorf("%w: opening balance cannot be negative", ErrInvalidAccount)
	}
	if !balance.Equal(balance.Truncate(scale)) {
		return fmt.Errorf("%w: opening balance has more than %d fractional digits", ErrInvalidAccount, scale)
	}
	return nil
}

// ValidateHolderName validates the account holder name
func ValidateHolderName(name string) error {
	name = strings.TrimSpace(name)

	if len(name) < MinHolderNameLength {
		return fmt.Errorf("%w: holder name cannot be empty", ErrInvalidAccount)
	}

	if len(name) > MaxHolderNameLength {
		return fmt.Errorf("%w: holder name exceeds %d characters", ErrInvalidAccount, MaxHolderNameLength)
	}

	return nil
}

// ValidateEmail validates email format
func ValidateEmail(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	if !emailRegex.MatchString(email) {
		return fmt.Errorf("%w: invalid email format", ErrInvalidAccount)
	}

	return nil
}

// ValidateAccountNumber validates the external account identifier
func ValidateAccountNumber(number string) error {
	if number == "" || len(number) > MaxAccountNumberLength || !accountNumberRegex.MatchString(number) {
		return fmt.Errorf("%w: account number must be 1-%d characters of A-Z, 0-9 or '-'", ErrInvalidAccount, MaxAccountNumberLength)
	}
	return nil
}

// ValidateAccountType validates the account category
func ValidateAccountType(t AccountType) error {
	if !t.Valid() {
		return fmt.Errorf("%w: unknown account type %q", ErrInvalidAccount, t)
	}
	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int) {
	const maxPageSize = 1000
	const defaultPageSize = 100

	if limit <= 0 {
		limit = defaultPageSize
	}

	if limit > maxPageSize {
		limit = maxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
