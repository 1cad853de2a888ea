package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/tripsplit/tripsplit-backend/internal/store"
	"github.com/tripsplit/tripsplit-backend/types"
)

var _ store.OutboxStore = (*OutboxStore)(nil)

// OutboxStore implements store.OutboxStore on the notification_outbox table.
type OutboxStore struct {
	db DBTX
}

func NewOutboxStore(db DBTX) *OutboxStore {
	return &OutboxStore{db: db}
}

const insertOutboxQuery = `
	INSERT INTO notification_outbox (kind, trip_id, payload, status, attempts, next_attempt_at)
	VALUES ($1, $2, $3, 'PENDING', 0, now())`

// Enqueue inserts all messages. Inside WithinTx the rows only become visible
// to dispatchers when the surrounding transaction commits.
func (s *OutboxStore) Enqueue(ctx context.Context, msgs []types.OutboxInsert) error {
	if len(msgs) == 0 {
		return nil
	}

	q := conn(ctx, s.db)
	for i, m := range msgs {
		if _, err := q.Exec(ctx, insertOutboxQuery, m.Kind, m.TripID, []byte(m.Payload)); err != nil {
			return fmt.Errorf("failed to enqueue outbox message %d of %d: %w", i+1, len(msgs), err)
		}
	}
	return nil
}

const claimDueQuery = `
	UPDATE notification_outbox o
	SET next_attempt_at = $2, updated_at = now()
	FROM (
		SELECT id
		FROM notification_outbox
		WHERE status = 'PENDING' AND next_attempt_at <= $1
		ORDER BY next_attempt_at, id
		FOR UPDATE SKIP LOCKED
		LIMIT $3
	) due
	WHERE o.id = due.id
	RETURNING o.id, o.kind, o.trip_id, o.payload, o.status, o.attempts, o.next_attempt_at, o.last_error, o.created_at`

// ClaimDue pushes next_attempt_at of the claimed rows to leaseUntil. A row
// whose dispatcher dies before marking it reappears once the lease expires.
func (s *OutboxStore) ClaimDue(ctx context.Context, now, leaseUntil time.Time, limit int) ([]types.OutboxMessage, error) {
	rows, err := conn(ctx, s.db).Query(ctx, claimDueQuery, now, leaseUntil, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to claim outbox messages: %w", err)
	}
	defer rows.Close()

	msgs := make([]types.OutboxMessage, 0)
	for rows.Next() {
		var m types.OutboxMessage
		var payload []byte
		if err := rows.Scan(&m.ID, &m.Kind, &m.TripID, &payload, &m.Status, &m.Attempts, &m.NextAttemptAt, &m.LastError, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan outbox message: %w", err)
		}
		m.Payload = payload
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outbox messages: %w", err)
	}
	return msgs, nil
}

const renewLeaseQuery = `
	UPDATE notification_outbox
	SET next_attempt_at = $3, updated_at = now()
	WHERE id = $1 AND status = 'PENDING' AND next_attempt_at = $2`

func (s *OutboxStore) RenewLease(ctx context.Context, id int64, claimedUntil, leaseUntil time.Time) (bool, error) {
	tag, err := conn(ctx, s.db).Exec(ctx, renewLeaseQuery, id, claimedUntil, leaseUntil)
	if err != nil {
		return false, fmt.Errorf("failed to renew outbox lease: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *OutboxStore) MarkSent(ctx context.Context, id int64) error {
	return s.exec(ctx, `
		UPDATE notification_outbox
		SET status = 'SENT', attempts = attempts + 1, last_error = NULL, sent_at = now(), updated_at = now()
		WHERE id = $1`, id)
}

func (s *OutboxStore) MarkRetry(ctx context.Context, id int64, attempts int, nextAttemptAt time.Time, lastErr string) error {
	return s.exec(ctx, `
		UPDATE notification_outbox
		SET attempts = $2, next_attempt_at = $3, last_error = $4, updated_at = now()
		WHERE id = $1`, id, attempts, nextAttemptAt, lastErr)
}

func (s *OutboxStore) MarkFailed(ctx context.Context, id int64, attempts int, lastErr string) error {
	return s.exec(ctx, `
		UPDATE notification_outbox
		SET status = 'FAILED', attempts = $2, last_error = $3, updated_at = now()
		WHERE id = $1`, id, attempts, lastErr)
}

func (s *OutboxStore) exec(ctx context.Context, query string, args ...any) error {
	tag, err := conn(ctx, s.db).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update outbox message: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
