package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tripsplit/tripsplit-backend/types"
)

// Transactor runs fn inside a database transaction. The transaction travels
// in the context passed to fn, and stores called with that context join it.
// A nested WithinTx call reuses the outer transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// TripStore reads settlement snapshots and archives trips.
type TripStore interface {
	// GetTripSnapshot returns the trip with its non-archived participants and
	// expenses, or ErrNotFound.
	GetTripSnapshot(ctx context.Context, tripID int64) (*types.TripSnapshot, error)
	// ArchiveTrip marks an open trip as archived. It returns ErrNotFound for an
	// unknown trip and ErrConflict when the trip is already archived.
	ArchiveTrip(ctx context.Context, tripID int64) error
}

// CurrencyStore persists currencies and their rate history.
type CurrencyStore interface {
	GetCurrency(ctx context.Context, code string) (*types.Currency, error)
	ListActiveCurrencies(ctx context.Context) ([]types.Currency, error)
	CreateCurrency(ctx context.Context, params types.CreateCurrencyParams) (*types.Currency, error)
	UpdateCurrency(ctx context.Context, code string, params types.UpdateCurrencyParams) (*types.Currency, error)
	DeleteCurrency(ctx context.Context, code string) error
	// UpdateRate sets the current rate and appends a history row.
	UpdateRate(ctx context.Context, code string, rate decimal.Decimal, source string) (*types.Currency, error)
	ListRateHistory(ctx context.Context, code string, query types.ExchangeRateHistoryQuery) ([]types.ExchangeRate, error)
}

// OutboxStore is the durable notification outbox.
type OutboxStore interface {
	Enqueue(ctx context.Context, msgs []types.OutboxInsert) error
	// ClaimDue leases up to limit pending rows due at now until leaseUntil,
	// skipping rows locked by other dispatchers.
	ClaimDue(ctx context.Context, now, leaseUntil time.Time, limit int) ([]types.OutboxMessage, error)
	// RenewLease moves a pending row's lease from claimedUntil to leaseUntil.
	// It reports false when the row was re-claimed or settled in the meantime.
	RenewLease(ctx context.Context, id int64, claimedUntil, leaseUntil time.Time) (bool, error)
	MarkSent(ctx context.Context, id int64) error
	MarkRetry(ctx context.Context, id int64, attempts int, nextAttemptAt time.Time, lastErr string) error
	MarkFailed(ctx context.Context, id int64, attempts int, lastErr string) error
}
