package model

import (
	"fmt"
	"math"
	"strconv"
)

// Money is an amount in minor currency units (cents) plus its currency code.
// Minor units avoid float drift when summing sheet line items.
type Money struct {
	Amount       int64  `json:"amount"`        // cents
	CurrencyCode string `json:"currency_code"` // ISO 4217
}

// NewMoney builds a Money value from minor units.
func NewMoney(cents int64, currency string) Money {
	return Money{Amount: cents, CurrencyCode: currency}
}

// Decimal formats the amount in major units for APIs that take decimal
// strings (the payment sheet, the cart API). Assumes two-decimal currencies.
// Examples: 1250 → "12.50", -5 → "-0.05", 0 → "0.00"
func (m Money) Decimal() string {
	cents := m.Amount
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// Add returns the sum of two amounts. Currency code is taken from the
// receiver; callers are responsible for not mixing currencies.
func (m Money) Add(other Money) Money {
	return Money{Amount: m.Amount + other.Amount, CurrencyCode: m.CurrencyCode}
}

// IsZero reports whether the value carries neither an amount nor a currency.
// Used by fail-closed checks for absent totals.
func (m Money) IsZero() bool {
	return m.Amount == 0 && m.CurrencyCode == ""
}

// ParseCents converts decimal string amounts (major units) to cents (int64).
// Use for APIs that return amounts like "99.00" = $99.00.
// Handles edge cases: empty strings, missing decimals, large values.
// Examples: "99.00" → 9900, "1234.56" → 123456, "" → 0
func ParseCents(s string) int64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	// math.Round handles both positive and negative numbers correctly
	return int64(math.Round(f * 100))
}

// ParseMinorUnits converts string amounts already in minor units to int64.
// Examples: "8900" → 8900, "123456" → 123456, "" → 0
func ParseMinorUnits(s string) int64 {
	if s == "" {
		return 0
	}
	// Parse as float to handle potential decimal values, then truncate
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int64(f)
}
