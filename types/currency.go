package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency is a supported currency and its current rate to the reference currency.
type Currency struct {
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	CurrentRate decimal.Decimal `json:"currentRate"`
	IsActive    bool            `json:"isActive"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// ExchangeRate is one historical rate observation.
type ExchangeRate struct {
	ID           int64           `json:"id"`
	CurrencyCode string          `json:"currencyId"`
	Rate         decimal.Decimal `json:"rate"`
	Source       *string         `json:"source,omitempty"`
	IsActive     bool            `json:"isActive"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

type CreateCurrencyParams struct {
	Code        string          `json:"code" binding:"required,len=3"`
	Name        string          `json:"name" binding:"required"`
	CurrentRate decimal.Decimal `json:"currentRate"`
	IsActive    *bool           `json:"isActive,omitempty"`
}

// UpdateCurrencyParams is a partial update; nil fields are left unchanged.
type UpdateCurrencyParams struct {
	Name        *string          `json:"name,omitempty"`
	CurrentRate *decimal.Decimal `json:"currentRate,omitempty"`
	IsActive    *bool            `json:"isActive,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p UpdateCurrencyParams) IsEmpty() bool {
	return p.Name == nil && p.CurrentRate == nil && p.IsActive == nil
}

// ExchangeRateHistoryQuery pages through rate history newest first.
type ExchangeRateHistoryQuery struct {
	Limit  int
	Offset int
	From   *time.Time
	To     *time.Time
}

// RateQuote is one code/rate pair from a rate feed, already expressed
// against the reference currency.
type RateQuote struct {
	Code string
	Rate decimal.Decimal
}
