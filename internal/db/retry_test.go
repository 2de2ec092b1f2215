package db

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/vetclinic-scheduling/internal/apperr"
)

func TestRetryReadRecoversFromTransientFailure(t *testing.T) {
	calls := 0
	got, err := RetryRead(context.Background(), 3, time.Millisecond, func(ctx context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, apperr.Persistence("count", errors.New("connection reset"))
		}
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 3, calls)
}

func TestRetryReadDoesNotRetryRejections(t *testing.T) {
	calls := 0
	_, err := RetryRead(context.Background(), 5, time.Millisecond, func(ctx context.Context) (string, error) {
		calls++
		return "", fmt.Errorf("slot %w", apperr.ErrNotFound)
	})

	require.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, 1, calls)
}

func TestRetryReadGivesUpAfterAttempts(t *testing.T) {
	calls := 0
	_, err := RetryRead(context.Background(), 2, time.Millisecond, func(ctx context.Context) (int, error) {
		calls++
		return 0, apperr.Persistence("list", errors.New("timeout"))
	})

	require.ErrorIs(t, err, apperr.ErrPersistence)
	assert.Equal(t, 2, calls)
}

func TestRetryReadStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := RetryRead(ctx, 10, time.Hour, func(ctx context.Context) (int, error) {
		calls++
		cancel()
		return 0, apperr.Persistence("list", errors.New("timeout"))
	})

	require.ErrorIs(t, err, apperr.ErrPersistence)
	assert.Equal(t, 1, calls)
}
