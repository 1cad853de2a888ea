package lock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLocker(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLocker()

	release, err := l.Acquire(ctx, "trip-close:1", time.Second)
	require.NoError(t, err)
	assert.True(t, l.Held("trip-close:1"))

	_, err = l.Acquire(ctx, "trip-close:1", time.Second)
	assert.ErrorIs(t, err, ErrNotAcquired)

	other, err := l.Acquire(ctx, "trip-close:2", time.Second)
	require.NoError(t, err)
	defer other(ctx)

	release(ctx)
	assert.False(t, l.Held("trip-close:1"))

	again, err := l.Acquire(ctx, "trip-close:1", time.Second)
	require.NoError(t, err)

	// A stale release must not free a lock taken by someone else.
	release(ctx)
	assert.True(t, l.Held("trip-close:1"))
	again(ctx)
}
