// Package types provides common type aliases and utilities.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// NewMoney creates a Money value from a float.
// WARNING: Use NewMoneyFromString for precise values.
func NewMoney(f float64) Money {
	return decimal.NewFromFloat(f)
}

// NewMoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// PaymentMethod is how a sale or withdrawal was settled.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentCard         PaymentMethod = "card"
	PaymentMobile       PaymentMethod = "mobile_transfer"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentMobile, PaymentBankTransfer:
		return true
	}
	return false
}

// ChangeDue computes the cash returned to the customer.
// Change is only meaningful for cash payments: max(cashReceived - (amount + tip), 0).
// Non-cash methods always yield zero. Captured at write time, never recomputed.
func ChangeDue(method PaymentMethod, amount, tip, cashReceived Money) Money {
	if method != PaymentCash {
		return decimal.Zero
	}
	change := cashReceived.Sub(amount.Add(tip))
	if change.IsNegative() {
		return decimal.Zero
	}
	return change
}
