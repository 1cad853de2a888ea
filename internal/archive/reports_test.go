package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/tripsplit/tripsplit-backend/errors"
	"github.com/tripsplit/tripsplit-backend/logger"
	"github.com/tripsplit/tripsplit-backend/types"
)

func init() {
	logger.IsTest = true
}

func stringsReader(s string) io.Reader { return strings.NewReader(s) }

type storedObject struct {
	body        []byte
	contentType string
}

// memoryStorage keeps objects in a map.
type memoryStorage struct {
	mu      sync.Mutex
	objects map[string]storedObject
	err     error
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string]storedObject{}}
}

func (m *memoryStorage) Save(_ context.Context, key string, body io.Reader, _ int64, contentType string) error {
	if m.err != nil {
		return m.err
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(body); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = storedObject{body: buf.Bytes(), contentType: contentType}
	return nil
}

func (m *memoryStorage) Exists(_ context.Context, key string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok, nil
}

func (m *memoryStorage) GetURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	return "https://storage.example.com/" + key + "?ttl=" + ttl.String(), nil
}

func TestReportArchiver_Archive(t *testing.T) {
	storage := newMemoryStorage()
	archiver := NewReportArchiver(storage, time.Minute)

	sum := &types.TripSummary{
		TripID:            7,
		TripTitle:         "Alps",
		ReferenceCurrency: "PLN",
		TotalExpenses:     decimal.RequireFromString("130"),
		PaymentSummary: []types.Payment{
			{From: "Cleo Wisniewska", To: "Anna Nowak", Amount: decimal.RequireFromString("43.33")},
		},
	}
	require.NoError(t, archiver.Archive(context.Background(), sum))

	obj, ok := storage.objects["reports/trip-7/summary.json"]
	require.True(t, ok)
	assert.Equal(t, "application/json", obj.contentType)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(obj.body, &decoded))
	assert.Equal(t, "Alps", decoded["tripTitle"])
	assert.Equal(t, float64(130), decoded["totalExpenses"])
}

func TestReportArchiver_ArchiveError(t *testing.T) {
	storage := newMemoryStorage()
	storage.err = assert.AnError

	err := NewReportArchiver(storage, 0).Archive(context.Background(), &types.TripSummary{TripID: 1})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestReportArchiver_ReportURL(t *testing.T) {
	storage := newMemoryStorage()
	archiver := NewReportArchiver(storage, 2*time.Minute)
	require.NoError(t, archiver.Archive(context.Background(), &types.TripSummary{TripID: 7}))

	before := time.Now()
	link, err := archiver.ReportURL(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), link.TripID)
	assert.Equal(t, "https://storage.example.com/reports/trip-7/summary.json?ttl=2m0s", link.URL)
	assert.WithinDuration(t, before.Add(2*time.Minute), link.ExpiresAt, 5*time.Second)
}

func TestReportArchiver_ReportURLErrors(t *testing.T) {
	t.Run("missing report", func(t *testing.T) {
		_, err := NewReportArchiver(newMemoryStorage(), 0).ReportURL(context.Background(), 9)

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.NotFoundError, appErr.Type)
	})

	t.Run("storage down", func(t *testing.T) {
		storage := newMemoryStorage()
		storage.err = assert.AnError

		_, err := NewReportArchiver(storage, 0).ReportURL(context.Background(), 9)

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.ExternalServiceError, appErr.Type)
		assert.ErrorIs(t, err, assert.AnError)
	})
}
