package summary

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	apperrors "github.com/tripsplit/tripsplit-backend/errors"
	"github.com/tripsplit/tripsplit-backend/internal/lock"
	"github.com/tripsplit/tripsplit-backend/internal/settlement"
	"github.com/tripsplit/tripsplit-backend/internal/store"
	"github.com/tripsplit/tripsplit-backend/logger"
	"github.com/tripsplit/tripsplit-backend/types"
)

func init() {
	logger.IsTest = true
}

type MockTripStore struct {
	mock.Mock
}

func (m *MockTripStore) GetTripSnapshot(ctx context.Context, tripID int64) (*types.TripSnapshot, error) {
	args := m.Called(ctx, tripID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TripSnapshot), args.Error(1)
}

func (m *MockTripStore) ArchiveTrip(ctx context.Context, tripID int64) error {
	args := m.Called(ctx, tripID)
	return args.Error(0)
}

type MockQueue struct {
	mock.Mock
}

func (m *MockQueue) EnqueueBatch(ctx context.Context, jobs []types.SummaryEmailJob) error {
	args := m.Called(ctx, jobs)
	return args.Error(0)
}

type MockArchiver struct {
	mock.Mock
}

func (m *MockArchiver) Archive(ctx context.Context, summary *types.TripSummary) error {
	args := m.Called(ctx, summary)
	return args.Error(0)
}

type txKey struct{}

// fakeTransactor marks the context so tests can check which calls ran in
// the transaction, and records the outcome.
type fakeTransactor struct {
	committed  bool
	rolledBack bool
}

func (f *fakeTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		f.rolledBack = true
		return err
	}
	f.committed = true
	return nil
}

var inTx = mock.MatchedBy(func(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
})

var ratesToPLN = settlement.ConverterFunc(func(_ context.Context, amount decimal.Decimal, from string) (decimal.Decimal, error) {
	switch from {
	case "PLN":
		return amount, nil
	case "EUR":
		return amount.Mul(decimal.NewFromInt(4)), nil
	}
	return decimal.Zero, stderrors.New("no rate")
})

func strPtr(s string) *string { return &s }

func amount(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func owner(id int64) *int64 { return &id }

func alpsSnapshot() *types.TripSnapshot {
	return &types.TripSnapshot{
		Trip: types.Trip{ID: 7, Title: "Alps", Destination: strPtr("Chamonix")},
		Participants: []types.Participant{
			{ID: 1, Name: "Anna", Surname: "Nowak", Email: strPtr("anna@example.com")},
			{ID: 2, Name: "Ben", Surname: "Kowalski", Email: strPtr("ben@example.com")},
			{ID: 3, Name: "Cleo", Surname: "Wisniewska", Email: strPtr("  ")},
		},
		Expenses: []types.Expense{
			{ID: 10, TripID: 7, ParticipantID: owner(1), Amount: amount("90"), Currency: "PLN"},
			{ID: 11, TripID: 7, ParticipantID: owner(2), Amount: amount("10"), Currency: "EUR"},
		},
	}
}

type fixture struct {
	trips  *MockTripStore
	queue  *MockQueue
	tx     *fakeTransactor
	locker *lock.MemoryLocker
	svc    *Service
}

func newFixture() *fixture {
	f := &fixture{
		trips:  new(MockTripStore),
		queue:  new(MockQueue),
		tx:     &fakeTransactor{},
		locker: lock.NewMemoryLocker(),
	}
	f.svc = NewService(f.trips, f.tx, settlement.NewCalculator(ratesToPLN), f.queue, f.locker, "pln")
	return f
}

func requireAppError(t *testing.T, err error, errType apperrors.ErrorType) *apperrors.AppError {
	t.Helper()
	var appErr *apperrors.AppError
	require.True(t, stderrors.As(err, &appErr), "expected AppError, got %v", err)
	assert.Equal(t, errType, appErr.Type)
	return appErr
}

func TestComputeSummary(t *testing.T) {
	f := newFixture()
	f.trips.On("GetTripSnapshot", mock.Anything, int64(7)).Return(alpsSnapshot(), nil)

	sum, err := f.svc.ComputeSummary(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, int64(7), sum.TripID)
	assert.Equal(t, "Alps", sum.TripTitle)
	assert.Equal(t, "Chamonix", *sum.Destination)
	assert.Equal(t, "PLN", sum.ReferenceCurrency)
	assert.True(t, decimal.NewFromInt(130).Equal(sum.TotalExpenses))
	assert.True(t, decimal.NewFromInt(10).Equal(sum.ExpensesByCurrency["EUR"]))
	require.Len(t, sum.ParticipantExpenses, 3)
	require.Len(t, sum.PaymentSummary, 2)
	assert.Equal(t, "Cleo Wisniewska", sum.PaymentSummary[0].From)
	assert.Equal(t, "Anna Nowak", sum.PaymentSummary[0].To)

	f.trips.AssertNotCalled(t, "ArchiveTrip", mock.Anything, mock.Anything)
}

func TestComputeSummary_TripNotFound(t *testing.T) {
	f := newFixture()
	f.trips.On("GetTripSnapshot", mock.Anything, int64(404)).Return(nil, store.ErrNotFound)

	sum, err := f.svc.ComputeSummary(context.Background(), 404)
	assert.Nil(t, sum)
	requireAppError(t, err, apperrors.TripNotFoundError)
}

func TestComputeSummary_StoreError(t *testing.T) {
	f := newFixture()
	f.trips.On("GetTripSnapshot", mock.Anything, int64(7)).Return(nil, assert.AnError)

	_, err := f.svc.ComputeSummary(context.Background(), 7)
	requireAppError(t, err, apperrors.DatabaseError)
}

func TestComputeSummary_Cancelled(t *testing.T) {
	f := newFixture()
	f.trips.On("GetTripSnapshot", mock.Anything, int64(7)).Return(alpsSnapshot(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sum, err := f.svc.ComputeSummary(ctx, 7)
	assert.Nil(t, sum)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCloseTrip(t *testing.T) {
	f := newFixture()
	f.trips.On("GetTripSnapshot", mock.Anything, int64(7)).Return(alpsSnapshot(), nil)
	f.trips.On("ArchiveTrip", inTx, int64(7)).Return(nil).Once()

	var queued []types.SummaryEmailJob
	f.queue.On("EnqueueBatch", inTx, mock.Anything).
		Run(func(args mock.Arguments) { queued = args.Get(1).([]types.SummaryEmailJob) }).
		Return(nil).Once()

	res, err := f.svc.CloseTrip(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, `Trip "Alps" has been closed and email notifications sent.`, res.Message)
	assert.Equal(t, 2, res.EmailsSent)
	require.NotNil(t, res.Summary)
	assert.True(t, decimal.NewFromInt(130).Equal(res.Summary.TotalExpenses))

	require.Len(t, queued, 2)
	assert.Equal(t, "anna@example.com", queued[0].RecipientEmail)
	assert.Equal(t, "Anna Nowak", queued[0].RecipientName)
	assert.Equal(t, "ben@example.com", queued[1].RecipientEmail)
	assert.Equal(t, int64(7), queued[1].TripSummary.TripID)

	assert.True(t, f.tx.committed)
	assert.False(t, f.locker.Held(closeLockKey(7)))
	f.queue.AssertNumberOfCalls(t, "EnqueueBatch", 1)
}

func TestCloseTrip_NoEmails(t *testing.T) {
	f := newFixture()
	snap := alpsSnapshot()
	for i := range snap.Participants {
		snap.Participants[i].Email = nil
	}
	f.trips.On("GetTripSnapshot", mock.Anything, int64(7)).Return(snap, nil)
	f.trips.On("ArchiveTrip", inTx, int64(7)).Return(nil)
	f.queue.On("EnqueueBatch", inTx, []types.SummaryEmailJob{}).Return(nil)

	res, err := f.svc.CloseTrip(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 0, res.EmailsSent)
}

func TestCloseTrip_AlreadyClosed(t *testing.T) {
	f := newFixture()
	snap := alpsSnapshot()
	snap.Trip.IsArchived = true
	f.trips.On("GetTripSnapshot", mock.Anything, int64(7)).Return(snap, nil)

	_, err := f.svc.CloseTrip(context.Background(), 7)
	appErr := requireAppError(t, err, apperrors.ConflictError)
	assert.Equal(t, apperrors.CodeTripAlreadyClosed, appErr.Code)

	f.trips.AssertNotCalled(t, "ArchiveTrip", mock.Anything, mock.Anything)
	f.queue.AssertNotCalled(t, "EnqueueBatch", mock.Anything, mock.Anything)
}

func TestCloseTrip_ArchivedConcurrently(t *testing.T) {
	f := newFixture()
	f.trips.On("GetTripSnapshot", mock.Anything, int64(7)).Return(alpsSnapshot(), nil)
	f.trips.On("ArchiveTrip", inTx, int64(7)).Return(store.ErrConflict)

	_, err := f.svc.CloseTrip(context.Background(), 7)
	appErr := requireAppError(t, err, apperrors.ConflictError)
	assert.Equal(t, apperrors.CodeTripAlreadyClosed, appErr.Code)
	assert.True(t, f.tx.rolledBack)
	f.queue.AssertNotCalled(t, "EnqueueBatch", mock.Anything, mock.Anything)
}

func TestCloseTrip_NotFound(t *testing.T) {
	f := newFixture()
	f.trips.On("GetTripSnapshot", mock.Anything, int64(404)).Return(nil, store.ErrNotFound)

	_, err := f.svc.CloseTrip(context.Background(), 404)
	requireAppError(t, err, apperrors.TripNotFoundError)
	assert.False(t, f.locker.Held(closeLockKey(404)))
}

func TestCloseTrip_EnqueueFailureRollsBack(t *testing.T) {
	f := newFixture()
	f.trips.On("GetTripSnapshot", mock.Anything, int64(7)).Return(alpsSnapshot(), nil)
	f.trips.On("ArchiveTrip", inTx, int64(7)).Return(nil)
	f.queue.On("EnqueueBatch", inTx, mock.Anything).Return(assert.AnError)

	res, err := f.svc.CloseTrip(context.Background(), 7)
	assert.Nil(t, res)
	requireAppError(t, err, apperrors.DatabaseError)
	assert.ErrorIs(t, err, assert.AnError)
	assert.True(t, f.tx.rolledBack)
	assert.False(t, f.tx.committed)
}

func TestCloseTrip_InProgress(t *testing.T) {
	f := newFixture()
	release, err := f.locker.Acquire(context.Background(), closeLockKey(7), closeLockTTL)
	require.NoError(t, err)
	defer release(context.Background())

	_, err = f.svc.CloseTrip(context.Background(), 7)
	appErr := requireAppError(t, err, apperrors.ConflictError)
	assert.Equal(t, apperrors.CodeTripCloseInFlight, appErr.Code)
	f.trips.AssertNotCalled(t, "GetTripSnapshot", mock.Anything, mock.Anything)
}

func TestCloseTrip_ArchivesReport(t *testing.T) {
	f := newFixture()
	archiver := new(MockArchiver)
	f.svc = NewService(f.trips, f.tx, settlement.NewCalculator(ratesToPLN), f.queue, f.locker, "PLN", WithReportArchiver(archiver))

	f.trips.On("GetTripSnapshot", mock.Anything, int64(7)).Return(alpsSnapshot(), nil)
	f.trips.On("ArchiveTrip", inTx, int64(7)).Return(nil)
	f.queue.On("EnqueueBatch", inTx, mock.Anything).Return(nil)
	archiver.On("Archive", mock.Anything, mock.MatchedBy(func(sum *types.TripSummary) bool {
		return sum.TripID == 7 && sum.TotalExpenses.Equal(decimal.NewFromInt(130))
	})).Return(nil).Once()

	_, err := f.svc.CloseTrip(context.Background(), 7)
	require.NoError(t, err)
	archiver.AssertExpectations(t)
}

func TestCloseTrip_ArchiveFailureDoesNotFailClose(t *testing.T) {
	f := newFixture()
	archiver := new(MockArchiver)
	f.svc = NewService(f.trips, f.tx, settlement.NewCalculator(ratesToPLN), f.queue, f.locker, "PLN", WithReportArchiver(archiver))

	f.trips.On("GetTripSnapshot", mock.Anything, int64(7)).Return(alpsSnapshot(), nil)
	f.trips.On("ArchiveTrip", inTx, int64(7)).Return(nil)
	f.queue.On("EnqueueBatch", inTx, mock.Anything).Return(nil)
	archiver.On("Archive", mock.Anything, mock.Anything).Return(assert.AnError)

	res, err := f.svc.CloseTrip(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 2, res.EmailsSent)
	assert.True(t, f.tx.committed)
}

func TestCloseTrip_FailedCloseIsNotArchived(t *testing.T) {
	f := newFixture()
	archiver := new(MockArchiver)
	f.svc = NewService(f.trips, f.tx, settlement.NewCalculator(ratesToPLN), f.queue, f.locker, "PLN", WithReportArchiver(archiver))

	f.trips.On("GetTripSnapshot", mock.Anything, int64(7)).Return(alpsSnapshot(), nil)
	f.trips.On("ArchiveTrip", inTx, int64(7)).Return(store.ErrConflict)

	_, err := f.svc.CloseTrip(context.Background(), 7)
	require.Error(t, err)
	archiver.AssertNotCalled(t, "Archive", mock.Anything, mock.Anything)
}
