package notification

import (
	"context"
	"time"

	"github.com/resend/resend-go/v2"
	"github.com/stretchr/testify/mock"
	"github.com/tripsplit/tripsplit-backend/types"
)

type MockOutboxStore struct {
	mock.Mock
}

func (m *MockOutboxStore) Enqueue(ctx context.Context, msgs []types.OutboxInsert) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockOutboxStore) ClaimDue(ctx context.Context, now, leaseUntil time.Time, limit int) ([]types.OutboxMessage, error) {
	args := m.Called(ctx, now, leaseUntil, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.OutboxMessage), args.Error(1)
}

func (m *MockOutboxStore) RenewLease(ctx context.Context, id int64, claimedUntil, leaseUntil time.Time) (bool, error) {
	args := m.Called(ctx, id, claimedUntil, leaseUntil)
	return args.Bool(0), args.Error(1)
}

func (m *MockOutboxStore) MarkSent(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxStore) MarkRetry(ctx context.Context, id int64, attempts int, nextAttemptAt time.Time, lastErr string) error {
	args := m.Called(ctx, id, attempts, nextAttemptAt, lastErr)
	return args.Error(0)
}

func (m *MockOutboxStore) MarkFailed(ctx context.Context, id int64, attempts int, lastErr string) error {
	args := m.Called(ctx, id, attempts, lastErr)
	return args.Error(0)
}

type MockSender struct {
	mock.Mock
}

func (m *MockSender) SendTripSummary(ctx context.Context, job types.SummaryEmailJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

type MockEmailClient struct {
	mock.Mock
}

func (m *MockEmailClient) SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*resend.SendEmailResponse), args.Error(1)
}
