package handlers

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/tripsplit/tripsplit-backend/internal/currency"
	"github.com/tripsplit/tripsplit-backend/types"
)

type MockSummaryService struct {
	mock.Mock
}

func (m *MockSummaryService) ComputeSummary(ctx context.Context, tripID int64) (*types.TripSummary, error) {
	args := m.Called(ctx, tripID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TripSummary), args.Error(1)
}

func (m *MockSummaryService) CloseTrip(ctx context.Context, tripID int64) (*types.TripCloseResult, error) {
	args := m.Called(ctx, tripID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TripCloseResult), args.Error(1)
}

type MockCurrencyService struct {
	mock.Mock
}

func (m *MockCurrencyService) ListCurrencies(ctx context.Context) ([]types.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Currency), args.Error(1)
}

func (m *MockCurrencyService) GetCurrency(ctx context.Context, code string) (*types.Currency, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Currency), args.Error(1)
}

func (m *MockCurrencyService) CreateCurrency(ctx context.Context, params types.CreateCurrencyParams) (*types.Currency, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Currency), args.Error(1)
}

func (m *MockCurrencyService) UpdateCurrency(ctx context.Context, code string, params types.UpdateCurrencyParams) (*types.Currency, error) {
	args := m.Called(ctx, code, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Currency), args.Error(1)
}

func (m *MockCurrencyService) DeleteCurrency(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockCurrencyService) UpdateExchangeRate(ctx context.Context, code string, rate decimal.Decimal, source string) (*types.Currency, error) {
	args := m.Called(ctx, code, rate, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Currency), args.Error(1)
}

func (m *MockCurrencyService) GetExchangeRateHistory(ctx context.Context, code string, query types.ExchangeRateHistoryQuery) ([]types.ExchangeRate, error) {
	args := m.Called(ctx, code, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.ExchangeRate), args.Error(1)
}

type MockRefresher struct {
	mock.Mock
}

func (m *MockRefresher) RefreshNow(ctx context.Context) (*currency.RefreshResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*currency.RefreshResult), args.Error(1)
}

type MockHealthChecker struct {
	mock.Mock
}

func (m *MockHealthChecker) CheckHealth(ctx context.Context) types.HealthCheck {
	args := m.Called(ctx)
	return args.Get(0).(types.HealthCheck)
}

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) ReportURL(ctx context.Context, tripID int64) (*types.ReportLink, error) {
	args := m.Called(ctx, tripID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ReportLink), args.Error(1)
}
