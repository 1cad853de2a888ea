// Package valueobjects holds validated monetary value types shared by the
// currency gateway and the HTTP layer.
package valueobjects

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tripsplit/tripsplit-backend/errors"
)

const (
	ErrInvalidAmount    = "INVALID_AMOUNT"
	ErrInvalidCurrency  = "INVALID_CURRENCY"
	ErrInvalidRate      = "INVALID_RATE"
	ErrCurrencyMismatch = "CURRENCY_MISMATCH"
)

// Currency is an ISO 4217 alphabetic code.
type Currency string

// ParseCurrency normalizes s to upper case and checks it is three ASCII letters.
func ParseCurrency(s string) (Currency, error) {
	code := strings.ToUpper(strings.TrimSpace(s))
	if len(code) != 3 {
		return "", errors.ValidationFailed(ErrInvalidCurrency,
			fmt.Sprintf("currency code %q must have exactly 3 letters", s))
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", errors.ValidationFailed(ErrInvalidCurrency,
				fmt.Sprintf("currency code %q must contain letters only", s))
		}
	}
	return Currency(code), nil
}

func (c Currency) String() string {
	return string(c)
}

// Money represents a non-negative monetary value with a specific currency
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney creates a new Money instance with validation
func NewMoney(amount decimal.Decimal, currency string) (*Money, error) {
	code, err := ParseCurrency(currency)
	if err != nil {
		return nil, err
	}
	if amount.IsNegative() {
		return nil, errors.ValidationFailed(ErrInvalidAmount, "amount cannot be negative")
	}
	return &Money{amount: amount, currency: code}, nil
}

// NewMoneyFromString creates a Money instance from string representations
func NewMoneyFromString(amount string, currency string) (*Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, errors.ValidationFailed(ErrInvalidAmount, err.Error())
	}
	return NewMoney(d, currency)
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the currency code
func (m Money) Currency() Currency {
	return m.currency
}

// Add adds two monetary values of the same currency
func (m Money) Add(other Money) (*Money, error) {
	if m.currency != other.currency {
		return nil, errors.ValidationFailed(
			ErrCurrencyMismatch,
			fmt.Sprintf("cannot add %s to %s", other.currency, m.currency),
		)
	}
	return &Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Convert expresses m in target using rate, the number of target units per
// unit of m's currency. Converting to the same currency is the identity.
func (m Money) Convert(target Currency, rate Rate) Money {
	if m.currency == target {
		return m
	}
	return Money{amount: m.amount.Mul(rate.Value()), currency: target}
}

// IsZero checks if the amount is zero
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// Equals checks if two monetary values are equal
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// String formats the value with two decimal places, e.g. "12.50 PLN".
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(2), m.currency)
}

// Rate is a strictly positive exchange rate.
type Rate struct {
	value decimal.Decimal
}

// NewRate validates that r is positive.
func NewRate(r decimal.Decimal) (Rate, error) {
	if !r.IsPositive() {
		return Rate{}, errors.ValidationFailed(ErrInvalidRate,
			fmt.Sprintf("exchange rate must be positive, got %s", r.String()))
	}
	return Rate{value: r}, nil
}

// IdentityRate is the rate of a currency to itself.
func IdentityRate() Rate {
	return Rate{value: decimal.NewFromInt(1)}
}

func (r Rate) Value() decimal.Decimal {
	return r.value
}
