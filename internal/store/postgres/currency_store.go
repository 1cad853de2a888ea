package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/tripsplit/tripsplit-backend/internal/store"
	"github.com/tripsplit/tripsplit-backend/types"
)

const uniqueViolation = "23505"

var _ store.CurrencyStore = (*CurrencyStore)(nil)

// CurrencyStore implements store.CurrencyStore.
type CurrencyStore struct {
	db  DBTX
	txm *TxManager
}

func NewCurrencyStore(pool Pool) *CurrencyStore {
	return &CurrencyStore{db: pool, txm: NewTxManager(pool)}
}

const currencyColumns = `code, name, current_rate, is_active, created_at, updated_at`

func scanCurrency(row pgx.Row) (*types.Currency, error) {
	var c types.Currency
	if err := row.Scan(&c.Code, &c.Name, &c.CurrentRate, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *CurrencyStore) GetCurrency(ctx context.Context, code string) (*types.Currency, error) {
	query := `SELECT ` + currencyColumns + ` FROM currencies WHERE code = $1`
	c, err := scanCurrency(conn(ctx, s.db).QueryRow(ctx, query, code))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to get currency %s: %w", code, err)
	}
	return c, err
}

func (s *CurrencyStore) ListActiveCurrencies(ctx context.Context) ([]types.Currency, error) {
	query := `SELECT ` + currencyColumns + ` FROM currencies WHERE is_active = true ORDER BY code`
	rows, err := conn(ctx, s.db).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}
	defer rows.Close()

	currencies := make([]types.Currency, 0)
	for rows.Next() {
		c, err := scanCurrency(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan currency: %w", err)
		}
		currencies = append(currencies, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating currencies: %w", err)
	}
	return currencies, nil
}

func (s *CurrencyStore) CreateCurrency(ctx context.Context, params types.CreateCurrencyParams) (*types.Currency, error) {
	isActive := true
	if params.IsActive != nil {
		isActive = *params.IsActive
	}
	query := `
		INSERT INTO currencies (code, name, current_rate, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + currencyColumns

	c, err := scanCurrency(conn(ctx, s.db).QueryRow(ctx, query, params.Code, params.Name, params.CurrentRate, isActive))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, store.ErrConflict
		}
		return nil, fmt.Errorf("failed to create currency %s: %w", params.Code, err)
	}
	return c, nil
}

// UpdateCurrency applies a partial update. Nil fields keep their value.
func (s *CurrencyStore) UpdateCurrency(ctx context.Context, code string, params types.UpdateCurrencyParams) (*types.Currency, error) {
	query := `
		UPDATE currencies
		SET name = COALESCE($2, name),
		    current_rate = COALESCE($3, current_rate),
		    is_active = COALESCE($4, is_active),
		    updated_at = now()
		WHERE code = $1
		RETURNING ` + currencyColumns

	c, err := scanCurrency(conn(ctx, s.db).QueryRow(ctx, query, code, params.Name, params.CurrentRate, params.IsActive))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to update currency %s: %w", code, err)
	}
	return c, err
}

func (s *CurrencyStore) DeleteCurrency(ctx context.Context, code string) error {
	tag, err := conn(ctx, s.db).Exec(ctx, `DELETE FROM currencies WHERE code = $1`, code)
	if err != nil {
		return fmt.Errorf("failed to delete currency %s: %w", code, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// UpdateRate stores rate as the current rate and records it in the history
// in a single transaction.
func (s *CurrencyStore) UpdateRate(ctx context.Context, code string, rate decimal.Decimal, source string) (*types.Currency, error) {
	var updated *types.Currency
	err := s.txm.WithinTx(ctx, func(ctx context.Context) error {
		q := conn(ctx, s.db)

		query := `
			UPDATE currencies
			SET current_rate = $2, updated_at = now()
			WHERE code = $1
			RETURNING ` + currencyColumns
		c, err := scanCurrency(q.QueryRow(ctx, query, code, rate))
		if err != nil {
			return err
		}

		if _, err := q.Exec(ctx, `
			INSERT INTO exchange_rates (currency_code, rate, source, is_active)
			VALUES ($1, $2, $3, true)`,
			code, rate, source,
		); err != nil {
			return fmt.Errorf("failed to record rate history for %s: %w", code, err)
		}
		updated = c
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update rate of %s: %w", code, err)
	}
	return updated, nil
}

// ListRateHistory returns active history rows newest first. A nil From or
// To leaves that side of the range open.
func (s *CurrencyStore) ListRateHistory(ctx context.Context, code string, query types.ExchangeRateHistoryQuery) ([]types.ExchangeRate, error) {
	sql := `
		SELECT id, currency_code, rate, source, is_active, created_at, updated_at
		FROM exchange_rates
		WHERE currency_code = $1
		  AND is_active = true
		  AND ($2::timestamptz IS NULL OR created_at >= $2)
		  AND ($3::timestamptz IS NULL OR created_at <= $3)
		ORDER BY created_at DESC, id DESC
		LIMIT $4 OFFSET $5`

	rows, err := conn(ctx, s.db).Query(ctx, sql, code, query.From, query.To, query.Limit, query.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list rate history of %s: %w", code, err)
	}
	defer rows.Close()

	history := make([]types.ExchangeRate, 0)
	for rows.Next() {
		var r types.ExchangeRate
		if err := rows.Scan(&r.ID, &r.CurrencyCode, &r.Rate, &r.Source, &r.IsActive, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan exchange rate: %w", err)
		}
		history = append(history, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating exchange rates: %w", err)
	}
	return history, nil
}
