// Package currency converts expense amounts into the reference currency and
// maintains the rates used for it.
package currency

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/shopspring/decimal"
	apperrors "github.com/tripsplit/tripsplit-backend/errors"
	"github.com/tripsplit/tripsplit-backend/internal/store"
	"github.com/tripsplit/tripsplit-backend/logger"
	"github.com/tripsplit/tripsplit-backend/pkg/valueobjects"
	"github.com/tripsplit/tripsplit-backend/types"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
	manualRateSource    = "manual"
)

// Service is the currency conversion gateway. Only conversions into the
// reference currency are supported; the reference currency converts with
// rate 1.
type Service struct {
	store     store.CurrencyStore
	cache     *RateCache
	reference valueobjects.Currency
	metrics   *gatewayMetrics
}

// NewService creates the gateway. cache may be nil, in which case every
// lookup goes to the store.
func NewService(st store.CurrencyStore, cache *RateCache, reference string) *Service {
	return &Service{
		store:     st,
		cache:     cache,
		reference: valueobjects.Currency(strings.ToUpper(strings.TrimSpace(reference))),
		metrics:   newGatewayMetrics(),
	}
}

func (s *Service) ReferenceCurrency() string {
	return s.reference.String()
}

// Convert returns amount, given in fromCurrency, expressed in the reference
// currency.
func (s *Service) Convert(ctx context.Context, amount decimal.Decimal, fromCurrency string) (decimal.Decimal, error) {
	money, err := valueobjects.NewMoney(amount, fromCurrency)
	if err != nil {
		return decimal.Zero, err
	}
	if money.Currency() == s.reference {
		return amount, nil
	}
	rate, err := s.rate(ctx, money.Currency())
	if err != nil {
		return decimal.Zero, err
	}
	return money.Convert(s.reference, rate).Amount(), nil
}

// GetRate returns the number of reference units per unit of code.
func (s *Service) GetRate(ctx context.Context, code string) (decimal.Decimal, error) {
	c, err := valueobjects.ParseCurrency(code)
	if err != nil {
		return decimal.Zero, err
	}
	rate, err := s.rate(ctx, c)
	if err != nil {
		return decimal.Zero, err
	}
	return rate.Value(), nil
}

func (s *Service) rate(ctx context.Context, code valueobjects.Currency) (valueobjects.Rate, error) {
	if code == s.reference {
		return valueobjects.IdentityRate(), nil
	}
	log := logger.GetLogger()

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, code.String())
		switch {
		case err != nil:
			log.Warnw("Rate cache unavailable, reading from database", "currency", code, "error", err)
		case ok:
			s.metrics.lookups.WithLabelValues("cache").Inc()
			return valueobjects.NewRate(cached)
		}
	}

	c, err := s.store.GetCurrency(ctx, code.String())
	if err != nil {
		return valueobjects.Rate{}, s.mapStoreError(err, code.String())
	}
	if !c.IsActive {
		return valueobjects.Rate{}, apperrors.NotFound("Currency", code.String())
	}
	s.metrics.lookups.WithLabelValues("database").Inc()

	rate, err := valueobjects.NewRate(c.CurrentRate)
	if err != nil {
		return valueobjects.Rate{}, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, code.String(), rate.Value()); err != nil {
			log.Warnw("Failed to cache rate", "currency", code, "error", err)
		}
	}
	return rate, nil
}

func (s *Service) ListCurrencies(ctx context.Context) ([]types.Currency, error) {
	list, err := s.store.ListActiveCurrencies(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return list, nil
}

func (s *Service) GetCurrency(ctx context.Context, code string) (*types.Currency, error) {
	c, err := valueobjects.ParseCurrency(code)
	if err != nil {
		return nil, err
	}
	currency, err := s.store.GetCurrency(ctx, c.String())
	if err != nil {
		return nil, s.mapStoreError(err, c.String())
	}
	return currency, nil
}

func (s *Service) CreateCurrency(ctx context.Context, params types.CreateCurrencyParams) (*types.Currency, error) {
	code, err := valueobjects.ParseCurrency(params.Code)
	if err != nil {
		return nil, err
	}
	params.Code = code.String()
	params.Name = strings.TrimSpace(params.Name)
	if params.Name == "" {
		return nil, apperrors.ValidationFailed("Invalid currency", "name is required")
	}
	if _, err := valueobjects.NewRate(params.CurrentRate); err != nil {
		return nil, err
	}

	created, err := s.store.CreateCurrency(ctx, params)
	if err != nil {
		return nil, s.mapStoreError(err, params.Code)
	}
	logger.GetLogger().Infow("Currency created", "currency", created.Code, "rate", created.CurrentRate.String())
	return created, nil
}

// UpdateCurrency applies a partial update. The code itself cannot change.
func (s *Service) UpdateCurrency(ctx context.Context, code string, params types.UpdateCurrencyParams) (*types.Currency, error) {
	c, err := valueobjects.ParseCurrency(code)
	if err != nil {
		return nil, err
	}
	if params.IsEmpty() {
		return nil, apperrors.ValidationFailed("Invalid currency update", "at least one field must be provided")
	}
	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		if name == "" {
			return nil, apperrors.ValidationFailed("Invalid currency update", "name cannot be empty")
		}
		params.Name = &name
	}
	if params.CurrentRate != nil {
		if _, err := valueobjects.NewRate(*params.CurrentRate); err != nil {
			return nil, err
		}
	}

	updated, err := s.store.UpdateCurrency(ctx, c.String(), params)
	if err != nil {
		return nil, s.mapStoreError(err, c.String())
	}
	s.invalidate(ctx, c.String())
	return updated, nil
}

func (s *Service) DeleteCurrency(ctx context.Context, code string) error {
	c, err := valueobjects.ParseCurrency(code)
	if err != nil {
		return err
	}
	if c == s.reference {
		return apperrors.ValidationFailed("Invalid currency", "the reference currency cannot be deleted")
	}
	if err := s.store.DeleteCurrency(ctx, c.String()); err != nil {
		return s.mapStoreError(err, c.String())
	}
	s.invalidate(ctx, c.String())
	return nil
}

// UpdateExchangeRate stores rate as the current rate of code and appends it
// to the rate history. An empty source is recorded as manual.
func (s *Service) UpdateExchangeRate(ctx context.Context, code string, rate decimal.Decimal, source string) (*types.Currency, error) {
	c, err := valueobjects.ParseCurrency(code)
	if err != nil {
		return nil, err
	}
	if _, err := valueobjects.NewRate(rate); err != nil {
		return nil, err
	}
	if source == "" {
		source = manualRateSource
	}

	updated, err := s.store.UpdateRate(ctx, c.String(), rate, source)
	if err != nil {
		return nil, s.mapStoreError(err, c.String())
	}
	s.invalidate(ctx, c.String())
	return updated, nil
}

// GetExchangeRateHistory pages through the active rate history of code,
// newest first.
func (s *Service) GetExchangeRateHistory(ctx context.Context, code string, query types.ExchangeRateHistoryQuery) ([]types.ExchangeRate, error) {
	currency, err := s.GetCurrency(ctx, code)
	if err != nil {
		return nil, err
	}

	if query.Limit <= 0 {
		query.Limit = defaultHistoryLimit
	}
	if query.Limit > maxHistoryLimit {
		query.Limit = maxHistoryLimit
	}
	if query.Offset < 0 {
		query.Offset = 0
	}
	if query.From != nil && query.To != nil && query.From.After(*query.To) {
		return nil, apperrors.ValidationFailed("Invalid date range", "startDate must not be after endDate")
	}

	history, err := s.store.ListRateHistory(ctx, currency.Code, query)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return history, nil
}

// IngestQuotes applies rates from a feed. Known currencies get a new rate,
// unknown ones are created. The reference currency is skipped.
func (s *Service) IngestQuotes(ctx context.Context, quotes []types.RateQuote, source string) (updated, created int, err error) {
	log := logger.GetLogger()

	for _, q := range quotes {
		if err := ctx.Err(); err != nil {
			return updated, created, err
		}
		if q.Code == s.reference.String() {
			continue
		}

		_, err := s.UpdateExchangeRate(ctx, q.Code, q.Rate, source)
		var appErr *apperrors.AppError
		switch {
		case err == nil:
			updated++
			continue
		case stderrors.As(err, &appErr) && appErr.Type == apperrors.NotFoundError:
		default:
			log.Warnw("Failed to update rate from feed", "currency", q.Code, "error", err)
			continue
		}

		if _, err := s.CreateCurrency(ctx, types.CreateCurrencyParams{
			Code:        q.Code,
			Name:        CurrencyName(q.Code),
			CurrentRate: q.Rate,
		}); err != nil {
			log.Warnw("Failed to create currency from feed", "currency", q.Code, "error", err)
			continue
		}
		created++
	}
	return updated, created, nil
}

func (s *Service) invalidate(ctx context.Context, code string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, code); err != nil {
		logger.GetLogger().Warnw("Failed to invalidate cached rate", "currency", code, "error", err)
	}
}

func (s *Service) mapStoreError(err error, code string) error {
	switch {
	case stderrors.Is(err, store.ErrNotFound):
		return apperrors.NotFound("Currency", code)
	case stderrors.Is(err, store.ErrConflict):
		return apperrors.Conflict(apperrors.CodeCurrencyExists, "Currency already exists", "Code: "+code)
	default:
		return apperrors.NewDatabaseError(err)
	}
}
