package db

import (
	"context"
	"errors"
	"time"

	"github.com/hackgods/vetclinic-scheduling/internal/apperr"
)

// RetryRead runs an idempotent read up to attempts times, backing off
// linearly between tries. Only persistence failures are retried; rejections
// and context errors return immediately. Never use it around writes.
func RetryRead[T any](ctx context.Context, attempts int, backoff time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	if attempts < 1 {
		attempts = 1
	}

	var (
		zero T
		err  error
	)
	for i := 0; i < attempts; i++ {
		var v T
		v, err = fn(ctx)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, apperr.ErrPersistence) || i == attempts-1 {
			break
		}

		timer := time.NewTimer(backoff * time.Duration(i+1))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, err
		case <-timer.C:
		}
	}
	return zero, err
}
