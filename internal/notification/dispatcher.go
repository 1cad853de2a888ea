package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/tripsplit/tripsplit-backend/config"
	"github.com/tripsplit/tripsplit-backend/internal/store"
	"github.com/tripsplit/tripsplit-backend/logger"
	"github.com/tripsplit/tripsplit-backend/types"
)

// claimLease must outlive a delivery, or a slow send is claimed twice. A
// worker renews it right before sending, so time spent queued does not count.
const claimLease = 4 * defaultJobTimeout

// Sender delivers one summary email.
type Sender interface {
	SendTripSummary(ctx context.Context, job types.SummaryEmailJob) error
}

type dispatchMetrics struct {
	claimed    prometheus.Counter
	deliveries *prometheus.CounterVec
}

var (
	dispatchMetricsInstance *dispatchMetrics
	dispatchMetricsOnce     sync.Once
	dispatchDefaultRegistry = prometheus.DefaultRegisterer
)

func newDispatchMetrics() *dispatchMetrics {
	dispatchMetricsOnce.Do(func() {
		dispatchMetricsInstance = &dispatchMetrics{
			claimed: promauto.With(dispatchDefaultRegistry).NewCounter(prometheus.CounterOpts{
				Name: "notification_outbox_claimed_total",
				Help: "Outbox rows claimed for delivery",
			}),
			deliveries: promauto.With(dispatchDefaultRegistry).NewCounterVec(prometheus.CounterOpts{
				Name: "notification_outbox_deliveries_total",
				Help: "Outbox delivery attempts by outcome",
			}, []string{"result"}),
		}
	})
	return dispatchMetricsInstance
}

// Dispatcher drains the outbox into the worker pool.
type Dispatcher struct {
	store   store.OutboxStore
	pool    *WorkerPool
	sender  Sender
	cfg     config.OutboxConfig
	now     func() time.Time
	metrics *dispatchMetrics
}

func NewDispatcher(st store.OutboxStore, pool *WorkerPool, sender Sender, cfg config.OutboxConfig) *Dispatcher {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.PollIntervalSeconds <= 0 {
		cfg.PollIntervalSeconds = 5
	}
	return &Dispatcher{
		store:   st,
		pool:    pool,
		sender:  sender,
		cfg:     cfg,
		now:     time.Now,
		metrics: newDispatchMetrics(),
	}
}

// Run polls the outbox until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	log := logger.GetLogger()
	interval := time.Duration(d.cfg.PollIntervalSeconds) * time.Second
	log.Infow("Outbox dispatcher started", "pollInterval", interval, "batchSize", d.cfg.BatchSize)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := d.DispatchOnce(ctx); err != nil && ctx.Err() == nil {
			log.Errorw("Outbox poll failed", "error", err)
		}
		select {
		case <-ctx.Done():
			log.Info("Outbox dispatcher stopped")
			return
		case <-ticker.C:
		}
	}
}

// DispatchOnce claims due rows, up to the free capacity of the worker pool,
// and submits one delivery per row. It returns the number submitted.
func (d *Dispatcher) DispatchOnce(ctx context.Context) (int, error) {
	limit := d.cfg.BatchSize
	if free := d.pool.FreeSlots(); free < limit {
		limit = free
	}
	if limit <= 0 {
		return 0, nil
	}

	now := d.now()
	msgs, err := d.store.ClaimDue(ctx, now, now.Add(claimLease), limit)
	if err != nil {
		return 0, err
	}
	d.metrics.claimed.Add(float64(len(msgs)))

	submitted := 0
	for _, msg := range msgs {
		if !d.pool.Submit(Job{
			Name:    fmt.Sprintf("outbox:%d", msg.ID),
			Execute: func(ctx context.Context) error { return d.deliver(ctx, msg) },
		}) {
			// The row stays leased and is claimed again after the lease.
			break
		}
		submitted++
	}
	return submitted, nil
}

func (d *Dispatcher) deliver(ctx context.Context, msg types.OutboxMessage) error {
	log := logger.GetLogger()
	attempts := msg.Attempts + 1

	if msg.Kind != types.OutboxKindTripSummaryEmail {
		d.metrics.deliveries.WithLabelValues("failed").Inc()
		return d.store.MarkFailed(ctx, msg.ID, attempts, "unknown message kind "+msg.Kind)
	}

	var job types.SummaryEmailJob
	if err := json.Unmarshal(msg.Payload, &job); err != nil {
		d.metrics.deliveries.WithLabelValues("failed").Inc()
		return d.store.MarkFailed(ctx, msg.ID, attempts, "invalid payload: "+err.Error())
	}

	renewed, err := d.store.RenewLease(ctx, msg.ID, msg.NextAttemptAt, d.now().Add(claimLease))
	if err != nil {
		return err
	}
	if !renewed {
		// Lease ran out while queued; whoever holds it now delivers the row.
		d.metrics.deliveries.WithLabelValues("superseded").Inc()
		log.Debugw("Skipping superseded outbox claim", "outboxId", msg.ID, "claimedUntil", msg.NextAttemptAt)
		return nil
	}

	sendErr := d.sender.SendTripSummary(ctx, job)
	// Bookkeeping must happen even when the delivery ran out of time.
	markCtx := context.WithoutCancel(ctx)

	if sendErr == nil {
		d.metrics.deliveries.WithLabelValues("sent").Inc()
		return d.store.MarkSent(markCtx, msg.ID)
	}

	if attempts >= d.cfg.MaxAttempts {
		d.metrics.deliveries.WithLabelValues("failed").Inc()
		log.Errorw("Giving up on summary email",
			"outboxId", msg.ID,
			"tripId", msg.TripID,
			"recipient", logger.MaskEmail(job.RecipientEmail),
			"attempts", attempts,
			"error", sendErr)
		if err := d.store.MarkFailed(markCtx, msg.ID, attempts, sendErr.Error()); err != nil {
			return err
		}
		return sendErr
	}

	next := d.now().Add(d.retryDelay(attempts))
	d.metrics.deliveries.WithLabelValues("retry").Inc()
	log.Warnw("Summary email failed, will retry",
		"outboxId", msg.ID,
		"recipient", logger.MaskEmail(job.RecipientEmail),
		"attempts", attempts,
		"nextAttemptAt", next,
		"error", sendErr)
	if err := d.store.MarkRetry(markCtx, msg.ID, attempts, next, sendErr.Error()); err != nil {
		return err
	}
	return sendErr
}

// retryDelay is the exponential backoff after the given number of failed
// attempts: initial, 2*initial, 4*initial... capped at the maximum.
func (d *Dispatcher) retryDelay(attempts int) time.Duration {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Duration(d.cfg.InitialBackoffSeconds) * time.Second
	b.MaxInterval = time.Duration(d.cfg.MaxBackoffSeconds) * time.Second
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()

	delay := b.NextBackOff()
	for i := 1; i < attempts; i++ {
		delay = b.NextBackOff()
	}
	return delay
}
