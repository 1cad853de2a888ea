// Package db opens the PostgreSQL pool and applies schema migrations.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tripsplit/tripsplit-backend/logger"
)

// Pinger is the part of a pool needed to verify connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Connect creates a pool from cfg and waits until the database answers a
// ping, retrying with exponential backoff for at most maxElapsed.
func Connect(ctx context.Context, cfg *pgxpool.Config, maxElapsed time.Duration) (*pgxpool.Pool, error) {
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := WaitForDatabase(ctx, pool, maxElapsed); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// WaitForDatabase pings p until it succeeds, ctx ends or maxElapsed passes.
func WaitForDatabase(ctx context.Context, p Pinger, maxElapsed time.Duration) error {
	log := logger.GetLogger()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = maxElapsed

	attempt := 0
	op := func() error {
		attempt++
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		return p.Ping(pingCtx)
	}
	notify := func(err error, next time.Duration) {
		log.Warnw("Database not reachable yet, retrying",
			"attempt", attempt,
			"retryIn", next.String(),
			"error", err)
	}

	if err := backoff.RetryNotify(op, backoff.WithContext(b, ctx), notify); err != nil {
		return fmt.Errorf("database unreachable after %d attempts: %w", attempt, err)
	}
	if attempt > 1 {
		log.Infow("Connected to database after retries", "attempts", attempt)
	}
	return nil
}
