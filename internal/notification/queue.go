// Package notification delivers trip summary emails through a durable
// outbox: producers enqueue jobs inside their own transaction and a
// dispatcher delivers them at least once, retrying with backoff.
package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tripsplit/tripsplit-backend/internal/store"
	"github.com/tripsplit/tripsplit-backend/types"
)

// Queue accepts summary email jobs for asynchronous delivery.
type Queue interface {
	EnqueueBatch(ctx context.Context, jobs []types.SummaryEmailJob) error
}

// OutboxQueue stores jobs in the notification outbox. When ctx carries a
// transaction the jobs are committed or rolled back together with it.
type OutboxQueue struct {
	store store.OutboxStore
}

func NewOutboxQueue(st store.OutboxStore) *OutboxQueue {
	return &OutboxQueue{store: st}
}

func (q *OutboxQueue) EnqueueBatch(ctx context.Context, jobs []types.SummaryEmailJob) error {
	if len(jobs) == 0 {
		return nil
	}

	msgs := make([]types.OutboxInsert, 0, len(jobs))
	for _, job := range jobs {
		payload, err := json.Marshal(job)
		if err != nil {
			return fmt.Errorf("failed to encode summary email job: %w", err)
		}
		msgs = append(msgs, types.OutboxInsert{
			Kind:    types.OutboxKindTripSummaryEmail,
			TripID:  job.TripSummary.TripID,
			Payload: payload,
		})
	}

	if err := q.store.Enqueue(ctx, msgs); err != nil {
		return fmt.Errorf("failed to enqueue %d summary emails: %w", len(jobs), err)
	}
	return nil
}
