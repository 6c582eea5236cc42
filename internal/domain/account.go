package domain

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// AccountType is the fixed product category of an account.
type AccountType string

const (
	AccountTypeChecking AccountType = "CHECKING"
	AccountTypeSavings  AccountType = "SAVINGS"
)

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeChecking, AccountTypeSavings:
		return true
	}
	return false
}

// Account represents a customer account holding a non-negative balance.
type Account struct {
	CreatedAt         time.Time
	UpdatedAt         time.Time
	AccountNumber     string
	AccountHolderName string
	Email             string
	AccountType       AccountType
	Balance           decimal.Decimal
	OpeningBalance    decimal.Decimal
	ID                int64
	Version           int64
	Active            bool
}

// ValidateDebit checks if account can be debited by amount.
func (a *Account) ValidateDebit(amount decimal.Decimal) error {
	if a.Balance.Sub(amount).IsNegative() {
		return ErrInsufficientFunds
	}
	return nil
}

// CanAdjust checks whether delta can be applied to the balance.
func (a *Account) CanAdjust(delta decimal.Decimal) error {
	if !a.Active {
		return ErrAccountInactive
	}
	if delta.IsNegative() {
		return a.ValidateDebit(delta.Neg())
	}
	return nil
}

// ApplyDelta returns new balance after adding delta.
func (a *Account) ApplyDelta(delta decimal.Decimal) decimal.Decimal {
	return a.Balance.Add(delta)
}

// Adjustment is a signed balance change for one account.
type Adjustment struct {
	Delta     decimal.Decimal
	AccountID int64
}

// MergeAdjustments folds adjustments on the same account into one and
// returns them sorted by ascending account ID, the global lock order.
func MergeAdjustments(adjustments []Adjustment) []Adjustment {
	byAccount := make(map[int64]decimal.Decimal, len(adjustments))
	ids := make([]int64, 0, len(adjustments))

	for _, adj := range adjustments {
		if _, seen := byAccount[adj.AccountID]; !seen {
			ids = append(ids, adj.AccountID)
			byAccount[adj.AccountID] = decimal.Zero
		}
		byAccount[adj.AccountID] = byAccount[adj.AccountID].Add(adj.Delta)
	}

	slices.Sort(ids)

	merged := make([]Adjustment, 0, len(ids))
	for _, id := range ids {
		merged = append(merged, Adjustment{AccountID: id, Delta: byAccount[id]})
	}

	return merged
}
