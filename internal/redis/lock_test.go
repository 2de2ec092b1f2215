package redisclient

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/vetclinic-scheduling/internal/apperr"
	"github.com/hackgods/vetclinic-scheduling/internal/lock"
)

func TestNewRedisClientFailsWhenUnreachable(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "127.0.0.1:1", ClientOptions{DialTimeout: 200 * time.Millisecond})
	require.Error(t, err)
}

func TestRedisLockerReleasesKey(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb, err := NewRedisClient(context.Background(), mr.Addr(), ClientOptions{})
	require.NoError(t, err)
	defer rdb.Close()

	locker := NewRedisLocker(rdb, 5*time.Second, 100*time.Millisecond)

	err = locker.WithLock(context.Background(), "lock:test", func(ctx context.Context) error {
		assert.True(t, mr.Exists("lock:test"))
		return nil
	})
	require.NoError(t, err)
	assert.False(t, mr.Exists("lock:test"))
}

func TestRedisLockerGivesUpAfterWait(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb, err := NewRedisClient(context.Background(), mr.Addr(), ClientOptions{})
	require.NoError(t, err)
	defer rdb.Close()

	require.NoError(t, mr.Set("lock:held", "someone-else"))

	locker := NewRedisLocker(rdb, 5*time.Second, 30*time.Millisecond)
	err = locker.WithLock(context.Background(), "lock:held", func(ctx context.Context) error {
		t.Fatal("should not enter")
		return nil
	})
	require.ErrorIs(t, err, lock.ErrNotAcquired)

	// A foreign holder's key must survive our failed attempt.
	got, err := mr.Get("lock:held")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}

func TestRedisLockerSerialisesContenders(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb, err := NewRedisClient(context.Background(), mr.Addr(), ClientOptions{})
	require.NoError(t, err)
	defer rdb.Close()

	locker := NewRedisLocker(rdb, 5*time.Second, 5*time.Second)

	var inside, overlaps, entered int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := locker.WithLock(context.Background(), "lock:slot:x", func(ctx context.Context) error {
				if atomic.AddInt32(&inside, 1) > 1 {
					atomic.AddInt32(&overlaps, 1)
				}
				time.Sleep(2 * time.Millisecond)
				atomic.AddInt32(&inside, -1)
				atomic.AddInt32(&entered, 1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(0), overlaps)
	assert.Equal(t, int32(10), entered)
}

func TestRedisLockerTransportErrorIsBusy(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb, err := NewRedisClient(context.Background(), mr.Addr(), ClientOptions{DialTimeout: 100 * time.Millisecond})
	require.NoError(t, err)
	defer rdb.Close()

	locker := NewRedisLocker(rdb, 5*time.Second, time.Second)
	mr.Close()

	err = locker.WithLock(context.Background(), "lock:down", func(ctx context.Context) error {
		t.Fatal("should not enter")
		return nil
	})
	require.ErrorIs(t, err, apperr.ErrBusy)
	assert.NotErrorIs(t, err, lock.ErrNotAcquired)
	assert.Equal(t, apperr.ReasonBusy, apperr.Reason(err))
}

func TestRedisLockerRefusesDoneContext(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb, err := NewRedisClient(context.Background(), mr.Addr(), ClientOptions{})
	require.NoError(t, err)
	defer rdb.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	locker := NewRedisLocker(rdb, 5*time.Second, time.Second)
	err = locker.WithLock(ctx, "lock:cancelled", func(ctx context.Context) error {
		t.Fatal("should not enter")
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, apperr.ReasonBusy, apperr.Reason(err))
	assert.False(t, mr.Exists("lock:cancelled"))
}
