package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/gabriel-vasile/mimetype"
	apperrors "github.com/tripsplit/tripsplit-backend/errors"
	"github.com/tripsplit/tripsplit-backend/logger"
	"github.com/tripsplit/tripsplit-backend/types"
)

const defaultURLTTL = 5 * time.Minute

// ReportArchiver writes closed-trip summaries to storage and hands out
// download links for them.
type ReportArchiver struct {
	storage FileStorage
	urlTTL  time.Duration
}

func NewReportArchiver(storage FileStorage, urlTTL time.Duration) *ReportArchiver {
	if urlTTL <= 0 {
		urlTTL = defaultURLTTL
	}
	return &ReportArchiver{storage: storage, urlTTL: urlTTL}
}

func reportKey(tripID int64) string {
	return "reports/trip-" + strconv.FormatInt(tripID, 10) + "/summary.json"
}

// Archive stores the summary, replacing any earlier copy.
func (a *ReportArchiver) Archive(ctx context.Context, summary *types.TripSummary) error {
	body, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	contentType := mimetype.Detect(body).String()

	key := reportKey(summary.TripID)
	if err := a.storage.Save(ctx, key, bytes.NewReader(body), int64(len(body)), contentType); err != nil {
		return err
	}
	logger.GetLogger().Infow("Settlement report archived", "tripId", summary.TripID, "key", key, "bytes", len(body))
	return nil
}

// ReportURL returns a short-lived download link for an archived summary.
func (a *ReportArchiver) ReportURL(ctx context.Context, tripID int64) (*types.ReportLink, error) {
	key := reportKey(tripID)
	ok, err := a.storage.Exists(ctx, key)
	if err != nil {
		return nil, apperrors.ExternalService("Report storage", err)
	}
	if !ok {
		return nil, apperrors.NotFound("Settlement report", tripID)
	}

	url, err := a.storage.GetURL(ctx, key, a.urlTTL)
	if err != nil {
		return nil, apperrors.ExternalService("Report storage", err)
	}
	return &types.ReportLink{
		TripID:    tripID,
		URL:       url,
		ExpiresAt: time.Now().Add(a.urlTTL).UTC(),
	}, nil
}
