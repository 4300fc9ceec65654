// Package moneypkg provides fixed-point money amount parsing and arithmetic.
//
// Amounts cross package boundaries as decimal strings and all arithmetic goes
// through shopspring/decimal. Binary floating point is never used for stored
// balances.
package moneypkg

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount indicates a non-numeric amount.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrNegativeAmount indicates a zero or negative amount where a positive
	// one is required.
	ErrNegativeAmount = errors.New("amount must be positive")
)

// ParsePositive parses an amount that must be strictly positive.
func ParsePositive(amount string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Decimal{}, ErrInvalidAmount
	}

	if d.LessThanOrEqual(decimal.Zero) {
		return decimal.Decimal{}, ErrNegativeAmount
	}

	return d, nil
}

// Convert applies a conversion rate to an amount and rounds the result to
// 2 minor units, the precision of stored balances.
func Convert(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Round(2)
}

// Negate returns the amount with its sign flipped, as a string.
func Negate(amount string) string {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return "-" + amount
	}

	return d.Neg().String()
}
