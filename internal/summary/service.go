// Package summary computes trip settlements and closes trips.
package summary

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/tripsplit/tripsplit-backend/errors"
	"github.com/tripsplit/tripsplit-backend/internal/lock"
	"github.com/tripsplit/tripsplit-backend/internal/notification"
	"github.com/tripsplit/tripsplit-backend/internal/settlement"
	"github.com/tripsplit/tripsplit-backend/internal/store"
	"github.com/tripsplit/tripsplit-backend/logger"
	"github.com/tripsplit/tripsplit-backend/types"
)

const (
	// closeLockTTL bounds how long a crashed closer can block the trip.
	closeLockTTL = 30 * time.Second

	archiveTimeout = 10 * time.Second
)

// Calculator computes the monetary part of a summary.
type Calculator interface {
	Calculate(ctx context.Context, in settlement.Input) (*settlement.Result, error)
}

// ReportArchiver keeps a copy of a closed trip's summary.
type ReportArchiver interface {
	Archive(ctx context.Context, summary *types.TripSummary) error
}

// Service is the trip closure orchestrator.
type Service struct {
	trips     store.TripStore
	tx        store.Transactor
	calc      Calculator
	queue     notification.Queue
	locker    lock.Locker
	archiver  ReportArchiver
	reference string
}

type Option func(*Service)

// WithReportArchiver stores every closed trip's summary after the close commits.
func WithReportArchiver(a ReportArchiver) Option {
	return func(s *Service) {
		s.archiver = a
	}
}

func NewService(
	trips store.TripStore,
	tx store.Transactor,
	calc Calculator,
	queue notification.Queue,
	locker lock.Locker,
	referenceCurrency string,
	opts ...Option,
) *Service {
	s := &Service{
		trips:     trips,
		tx:        tx,
		calc:      calc,
		queue:     queue,
		locker:    locker,
		reference: strings.ToUpper(referenceCurrency),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ComputeSummary returns the settlement of a trip without changing anything.
// Closed trips can still be summarised.
func (s *Service) ComputeSummary(ctx context.Context, tripID int64) (*types.TripSummary, error) {
	snap, err := s.loadSnapshot(ctx, tripID)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, snap)
}

// CloseTrip settles the trip, archives it and queues one summary email per
// participant with an address. Archival and enqueueing commit together.
func (s *Service) CloseTrip(ctx context.Context, tripID int64) (*types.TripCloseResult, error) {
	log := logger.GetLogger()
	id := strconv.FormatInt(tripID, 10)

	release, err := s.locker.Acquire(ctx, closeLockKey(tripID), closeLockTTL)
	if stderrors.Is(err, lock.ErrNotAcquired) {
		return nil, apperrors.Conflict(apperrors.CodeTripCloseInFlight, "Trip is already being closed", fmt.Sprintf("Trip ID: %s", id))
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ServerError, "Failed to close trip")
	}
	defer release(context.WithoutCancel(ctx))

	snap, err := s.loadSnapshot(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if !snap.Trip.Status().IsValidTransition(types.TripStatusClosed) {
		return nil, apperrors.TripAlreadyClosed(id)
	}

	sum, err := s.summarize(ctx, snap)
	if err != nil {
		return nil, err
	}
	jobs := summaryEmailJobs(sum)

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.trips.ArchiveTrip(ctx, tripID); err != nil {
			return err
		}
		return s.queue.EnqueueBatch(ctx, jobs)
	})
	switch {
	case err == nil:
	case stderrors.Is(err, store.ErrConflict):
		return nil, apperrors.TripAlreadyClosed(id)
	case stderrors.Is(err, store.ErrNotFound):
		return nil, apperrors.TripNotFound(id)
	default:
		log.Errorw("Failed to close trip", "tripId", tripID, "emails", len(jobs), "error", err)
		return nil, apperrors.NewDatabaseError(err)
	}

	log.Infow("Trip closed", "tripId", tripID, "emailsQueued", len(jobs))
	s.archiveReport(ctx, sum)
	return &types.TripCloseResult{
		Message:    fmt.Sprintf("Trip %q has been closed and email notifications sent.", snap.Trip.Title),
		EmailsSent: len(jobs),
		Summary:    sum,
	}, nil
}

// archiveReport never fails the close; the trip is already committed.
func (s *Service) archiveReport(ctx context.Context, sum *types.TripSummary) {
	if s.archiver == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), archiveTimeout)
	defer cancel()
	if err := s.archiver.Archive(ctx, sum); err != nil {
		logger.GetLogger().Warnw("Failed to archive settlement report", "tripId", sum.TripID, "error", err)
	}
}

func (s *Service) loadSnapshot(ctx context.Context, tripID int64) (*types.TripSnapshot, error) {
	snap, err := s.trips.GetTripSnapshot(ctx, tripID)
	if stderrors.Is(err, store.ErrNotFound) {
		return nil, apperrors.TripNotFound(strconv.FormatInt(tripID, 10))
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return snap, nil
}

func (s *Service) summarize(ctx context.Context, snap *types.TripSnapshot) (*types.TripSummary, error) {
	res, err := s.calc.Calculate(ctx, settlement.Input{
		Participants: snap.Participants,
		Expenses:     snap.Expenses,
	})
	if err != nil {
		return nil, err
	}

	trip := snap.Trip
	return &types.TripSummary{
		TripID:              trip.ID,
		TripTitle:           trip.Title,
		Destination:         trip.Destination,
		StartDate:           trip.StartDate,
		EndDate:             trip.EndDate,
		ReferenceCurrency:   s.reference,
		TotalExpenses:       res.TotalExpenses,
		ExpensesByCurrency:  res.ExpensesByCurrency,
		ParticipantExpenses: res.ParticipantExpenses,
		PaymentSummary:      res.PaymentSummary,
	}, nil
}

// summaryEmailJobs builds one job per distinct participant with a usable email.
func summaryEmailJobs(sum *types.TripSummary) []types.SummaryEmailJob {
	jobs := make([]types.SummaryEmailJob, 0, len(sum.ParticipantExpenses))
	for _, p := range sum.ParticipantExpenses {
		if p.Email == nil || strings.TrimSpace(*p.Email) == "" {
			continue
		}
		jobs = append(jobs, types.SummaryEmailJob{
			RecipientEmail: strings.TrimSpace(*p.Email),
			RecipientName:  p.FullName(),
			TripSummary:    *sum,
		})
	}
	return jobs
}

func closeLockKey(tripID int64) string {
	return "trip-close:" + strconv.FormatInt(tripID, 10)
}
