package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripsplit/tripsplit-backend/internal/store"
	"github.com/tripsplit/tripsplit-backend/logger"
)

func init() {
	logger.IsTest = true
}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

var (
	tripColumns        = []string{"id", "title", "destination", "start_date", "end_date", "is_archived", "created_at", "updated_at"}
	participantColumns = []string{"id", "name", "surname", "email"}
	expenseColumns     = []string{"id", "trip_id", "participant_id", "title", "amount", "currency", "created_at"}
)

func TestTripStore_GetTripSnapshot(t *testing.T) {
	mock := newMockPool(t)
	s := NewTripStore(mock)
	ctx := context.Background()

	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	destination := "Zakopane"
	email := "anna@example.com"
	owner := int64(1)
	amount := decimal.RequireFromString("120.50")

	mock.ExpectQuery("FROM trips").
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows(tripColumns).
			AddRow(int64(7), "Tatry", &destination, &now, nil, false, now, now))
	mock.ExpectQuery("FROM participants p").
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows(participantColumns).
			AddRow(int64(1), "Anna", "Nowak", &email).
			AddRow(int64(2), "Piotr", "Kowalski", nil))
	mock.ExpectQuery("FROM expenses").
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows(expenseColumns).
			AddRow(int64(10), int64(7), &owner, "Hotel", &amount, "PLN", now).
			AddRow(int64(11), int64(7), nil, "Taxi", nil, "EUR", now))

	snap, err := s.GetTripSnapshot(ctx, 7)
	require.NoError(t, err)

	assert.Equal(t, "Tatry", snap.Trip.Title)
	assert.Equal(t, "Zakopane", *snap.Trip.Destination)
	assert.Nil(t, snap.Trip.EndDate)
	require.Len(t, snap.Participants, 2)
	assert.True(t, snap.Participants[0].HasEmail())
	assert.False(t, snap.Participants[1].HasEmail())
	require.Len(t, snap.Expenses, 2)
	assert.Equal(t, int64(1), *snap.Expenses[0].ParticipantID)
	assert.True(t, amount.Equal(snap.Expenses[0].AmountOrZero()))
	assert.Nil(t, snap.Expenses[1].ParticipantID)
	assert.True(t, snap.Expenses[1].AmountOrZero().IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTripStore_GetTripSnapshot_NotFound(t *testing.T) {
	mock := newMockPool(t)
	s := NewTripStore(mock)

	mock.ExpectQuery("FROM trips").
		WithArgs(int64(404)).
		WillReturnRows(pgxmock.NewRows(tripColumns))

	snap, err := s.GetTripSnapshot(context.Background(), 404)
	assert.Nil(t, snap)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTripStore_ArchiveTrip(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(mock pgxmock.PgxPoolIface)
		wantErr error
	}{
		{
			name: "open trip is archived",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec("UPDATE trips").WithArgs(int64(3)).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			},
		},
		{
			name: "already archived",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec("UPDATE trips").WithArgs(int64(3)).
					WillReturnResult(pgxmock.NewResult("UPDATE", 0))
				mock.ExpectQuery("SELECT is_archived FROM trips").WithArgs(int64(3)).
					WillReturnRows(pgxmock.NewRows([]string{"is_archived"}).AddRow(true))
			},
			wantErr: store.ErrConflict,
		},
		{
			name: "unknown trip",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec("UPDATE trips").WithArgs(int64(3)).
					WillReturnResult(pgxmock.NewResult("UPDATE", 0))
				mock.ExpectQuery("SELECT is_archived FROM trips").WithArgs(int64(3)).
					WillReturnRows(pgxmock.NewRows([]string{"is_archived"}))
			},
			wantErr: store.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMockPool(t)
			tt.setup(mock)

			err := NewTripStore(mock).ArchiveTrip(context.Background(), 3)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTxManager_WithinTx(t *testing.T) {
	t.Run("commits and routes stores through the transaction", func(t *testing.T) {
		mock := newMockPool(t)
		txm := NewTxManager(mock)
		trips := NewTripStore(mock)

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE trips").WithArgs(int64(1)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectCommit()

		err := txm.WithinTx(context.Background(), func(ctx context.Context) error {
			return trips.ArchiveTrip(ctx, 1)
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when fn fails", func(t *testing.T) {
		mock := newMockPool(t)
		txm := NewTxManager(mock)
		boom := errors.New("boom")

		mock.ExpectBegin()
		mock.ExpectRollback()

		err := txm.WithinTx(context.Background(), func(ctx context.Context) error {
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nested calls join the outer transaction", func(t *testing.T) {
		mock := newMockPool(t)
		txm := NewTxManager(mock)

		mock.ExpectBegin()
		mock.ExpectCommit()

		err := txm.WithinTx(context.Background(), func(ctx context.Context) error {
			return txm.WithinTx(ctx, func(context.Context) error { return nil })
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
