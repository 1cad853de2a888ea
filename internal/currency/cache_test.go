package currency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateCache(t *testing.T) {
	ctx := context.Background()
	client, mock := redismock.NewClientMock()
	cache := NewRateCache(client, time.Hour)

	mock.ExpectGet("rates:EUR").SetVal("4.2817")
	rate, ok, err := cache.Get(ctx, "EUR")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "4.2817", rate.String())

	mock.ExpectGet("rates:USD").RedisNil()
	_, ok, err = cache.Get(ctx, "USD")
	require.NoError(t, err)
	assert.False(t, ok)

	mock.ExpectGet("rates:GBP").SetVal("not-a-number")
	_, _, err = cache.Get(ctx, "GBP")
	assert.ErrorContains(t, err, "corrupt cached rate")

	mock.ExpectGet("rates:CHF").SetErr(errors.New("connection refused"))
	_, _, err = cache.Get(ctx, "CHF")
	assert.Error(t, err)

	mock.ExpectSet("rates:EUR", "4.3", time.Hour).SetVal("OK")
	require.NoError(t, cache.Set(ctx, "EUR", decimal.RequireFromString("4.3")))

	mock.ExpectDel("rates:EUR", "rates:USD").SetVal(2)
	require.NoError(t, cache.Invalidate(ctx, "EUR", "USD"))

	require.NoError(t, cache.Invalidate(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}
