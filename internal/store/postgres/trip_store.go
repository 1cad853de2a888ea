package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tripsplit/tripsplit-backend/internal/store"
	"github.com/tripsplit/tripsplit-backend/types"
)

var _ store.TripStore = (*TripStore)(nil)

// TripStore implements store.TripStore.
type TripStore struct {
	db DBTX
}

func NewTripStore(db DBTX) *TripStore {
	return &TripStore{db: db}
}

const (
	getTripQuery = `
		SELECT id, title, destination, start_date, end_date, is_archived, created_at, updated_at
		FROM trips
		WHERE id = $1`

	listTripParticipantsQuery = `
		SELECT p.id, p.name, p.surname, p.email
		FROM participants p
		JOIN trip_participants tp ON tp.participant_id = p.id
		WHERE tp.trip_id = $1 AND p.is_archived = false
		ORDER BY tp.created_at, p.id`

	listTripExpensesQuery = `
		SELECT id, trip_id, participant_id, title, amount, currency, created_at
		FROM expenses
		WHERE trip_id = $1 AND is_archived = false
		ORDER BY created_at, id`

	archiveTripQuery = `
		UPDATE trips
		SET is_archived = true, updated_at = now()
		WHERE id = $1 AND is_archived = false`

	tripArchivedQuery = `SELECT is_archived FROM trips WHERE id = $1`
)

// GetTripSnapshot loads the trip, then its active participants and expenses.
func (s *TripStore) GetTripSnapshot(ctx context.Context, tripID int64) (*types.TripSnapshot, error) {
	q := conn(ctx, s.db)

	var snap types.TripSnapshot
	t := &snap.Trip
	err := q.QueryRow(ctx, getTripQuery, tripID).Scan(
		&t.ID,
		&t.Title,
		&t.Destination,
		&t.StartDate,
		&t.EndDate,
		&t.IsArchived,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get trip %d: %w", tripID, err)
	}

	snap.Participants, err = s.listParticipants(ctx, q, tripID)
	if err != nil {
		return nil, err
	}
	snap.Expenses, err = s.listExpenses(ctx, q, tripID)
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func (s *TripStore) listParticipants(ctx context.Context, q DBTX, tripID int64) ([]types.Participant, error) {
	rows, err := q.Query(ctx, listTripParticipantsQuery, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants of trip %d: %w", tripID, err)
	}
	defer rows.Close()

	participants := make([]types.Participant, 0)
	for rows.Next() {
		var p types.Participant
		if err := rows.Scan(&p.ID, &p.Name, &p.Surname, &p.Email); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participants: %w", err)
	}
	return participants, nil
}

func (s *TripStore) listExpenses(ctx context.Context, q DBTX, tripID int64) ([]types.Expense, error) {
	rows, err := q.Query(ctx, listTripExpensesQuery, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses of trip %d: %w", tripID, err)
	}
	defer rows.Close()

	expenses := make([]types.Expense, 0)
	for rows.Next() {
		var e types.Expense
		if err := rows.Scan(&e.ID, &e.TripID, &e.ParticipantID, &e.Title, &e.Amount, &e.Currency, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}
	return expenses, nil
}

// ArchiveTrip flips is_archived only for an open trip, so two concurrent
// closes cannot both succeed.
func (s *TripStore) ArchiveTrip(ctx context.Context, tripID int64) error {
	q := conn(ctx, s.db)

	tag, err := q.Exec(ctx, archiveTripQuery, tripID)
	if err != nil {
		return fmt.Errorf("failed to archive trip %d: %w", tripID, err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var archived bool
	if err := q.QueryRow(ctx, tripArchivedQuery, tripID).Scan(&archived); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.ErrNotFound
		}
		return fmt.Errorf("failed to check trip %d: %w", tripID, err)
	}
	return store.ErrConflict
}
