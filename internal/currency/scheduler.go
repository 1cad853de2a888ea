package currency

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	apperrors "github.com/tripsplit/tripsplit-backend/errors"
	"github.com/tripsplit/tripsplit-backend/internal/lock"
	"github.com/tripsplit/tripsplit-backend/logger"
	"github.com/tripsplit/tripsplit-backend/types"
)

const (
	refreshLockKey = "currency:refresh"
	refreshTimeout = 2 * time.Minute

	CodeRefreshInProgress = "RATE_REFRESH_IN_PROGRESS"
)

// RateFetcher downloads current rates against the reference currency.
type RateFetcher interface {
	FetchRates(ctx context.Context) ([]types.RateQuote, error)
}

// QuoteIngester stores fetched rates.
type QuoteIngester interface {
	IngestQuotes(ctx context.Context, quotes []types.RateQuote, source string) (updated, created int, err error)
}

// RefreshResult reports what one refresh changed.
type RefreshResult struct {
	Fetched int `json:"fetched"`
	Updated int `json:"updated"`
	Created int `json:"created"`
}

// Scheduler refreshes rates from the feed on a cron schedule. Every run,
// scheduled or manual, holds a distributed lock so that only one replica
// ingests at a time.
type Scheduler struct {
	cron    *cron.Cron
	spec    string
	feed    RateFetcher
	ingest  QuoteIngester
	locker  lock.Locker
	metrics *gatewayMetrics
}

func NewScheduler(spec string, feed RateFetcher, ingest QuoteIngester, locker lock.Locker) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		spec:    spec,
		feed:    feed,
		ingest:  ingest,
		locker:  locker,
		metrics: newGatewayMetrics(),
	}
}

// Start registers the refresh job and starts the cron loop.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()

		log := logger.GetLogger()
		res, err := s.RefreshNow(ctx)
		if err != nil {
			var appErr *apperrors.AppError
			if stderrors.As(err, &appErr) && appErr.Code == CodeRefreshInProgress {
				log.Infow("Skipping scheduled rate refresh, another instance is running it")
				return
			}
			log.Errorw("Scheduled rate refresh failed", "error", err)
			return
		}
		log.Infow("Scheduled rate refresh finished", "fetched", res.Fetched, "updated", res.Updated, "created", res.Created)
	})
	if err != nil {
		return fmt.Errorf("invalid rate refresh schedule %q: %w", s.spec, err)
	}
	s.cron.Start()
	logger.GetLogger().Infow("Rate refresh scheduler started", "schedule", s.spec)
	return nil
}

// Stop stops scheduling and waits for a running refresh until ctx ends.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		logger.GetLogger().Warn("Rate refresh still running at shutdown")
	}
}

// RefreshNow fetches the feed and applies it.
func (s *Scheduler) RefreshNow(ctx context.Context) (*RefreshResult, error) {
	release, err := s.locker.Acquire(ctx, refreshLockKey, refreshTimeout)
	if stderrors.Is(err, lock.ErrNotAcquired) {
		return nil, apperrors.Conflict(CodeRefreshInProgress, "Rate refresh already in progress", "")
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ServerError, "Failed to start rate refresh")
	}
	defer release(context.WithoutCancel(ctx))

	quotes, err := s.feed.FetchRates(ctx)
	if err != nil {
		s.metrics.feedRuns.WithLabelValues("fetch_failed").Inc()
		return nil, apperrors.ExternalService("Rate feed", err)
	}

	updated, created, err := s.ingest.IngestQuotes(ctx, quotes, FeedSource)
	if err != nil {
		s.metrics.feedRuns.WithLabelValues("ingest_failed").Inc()
		return nil, err
	}

	s.metrics.feedRuns.WithLabelValues("success").Inc()
	s.metrics.feedApplied.Add(float64(updated + created))
	s.metrics.lastFeedTime.SetToCurrentTime()
	return &RefreshResult{Fetched: len(quotes), Updated: updated, Created: created}, nil
}
