package handlers

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/tripsplit/tripsplit-backend/internal/currency"
	"github.com/tripsplit/tripsplit-backend/types"
)

// SummaryServiceInterface defines the summary operations needed by handlers
type SummaryServiceInterface interface {
	ComputeSummary(ctx context.Context, tripID int64) (*types.TripSummary, error)
	CloseTrip(ctx context.Context, tripID int64) (*types.TripCloseResult, error)
}

// CurrencyServiceInterface defines the currency operations needed by handlers
type CurrencyServiceInterface interface {
	ListCurrencies(ctx context.Context) ([]types.Currency, error)
	GetCurrency(ctx context.Context, code string) (*types.Currency, error)
	CreateCurrency(ctx context.Context, params types.CreateCurrencyParams) (*types.Currency, error)
	UpdateCurrency(ctx context.Context, code string, params types.UpdateCurrencyParams) (*types.Currency, error)
	DeleteCurrency(ctx context.Context, code string) error
	UpdateExchangeRate(ctx context.Context, code string, rate decimal.Decimal, source string) (*types.Currency, error)
	GetExchangeRateHistory(ctx context.Context, code string, query types.ExchangeRateHistoryQuery) ([]types.ExchangeRate, error)
}

// RateRefresherInterface triggers a rate feed refresh on demand.
type RateRefresherInterface interface {
	RefreshNow(ctx context.Context) (*currency.RefreshResult, error)
}

// HealthCheckerInterface reports component health.
type HealthCheckerInterface interface {
	CheckHealth(ctx context.Context) types.HealthCheck
}

// ReportServiceInterface hands out links to archived settlement reports.
type ReportServiceInterface interface {
	ReportURL(ctx context.Context, tripID int64) (*types.ReportLink, error)
}
