package dto

import (
	"github.com/shopspring/decimal"
)

// Money is an amount rendered as a JSON number with exactly Scale
// fractional digits.
type Money struct {
	Value decimal.Decimal
	Scale int32
}

// NewMoney creates a Money.
func NewMoney(value decimal.Decimal, scale int32) Money {
	return Money{Value: value, Scale: scale}
}

// MarshalJSON implements json.Marshaler.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Value.StringFixed(m.Scale)), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string. Scale is taken
// from the digits received.
func (m *Money) UnmarshalJSON(b []byte) error {
	if err := m.Value.UnmarshalJSON(b); err != nil {
		return err
	}
	m.Scale = 0
	if exp := m.Value.Exponent(); exp < 0 {
		m.Scale = -exp
	}
	return nil
}

// String returns the fixed-scale representation.
func (m Money) String() string {
	return m.Value.StringFixed(m.Scale)
}
