// Package lock serialises critical sections by key: per (slot, date) for
// bookings and per weekday for catalog replacement.
package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/vetclinic-scheduling/internal/apperr"
	"github.com/hackgods/vetclinic-scheduling/internal/calendar"
)

var ErrNotAcquired = fmt.Errorf("lock not acquired: %w", apperr.ErrBusy)

// Locker runs fn while holding the lock for key. Implementations wait up to
// their configured wait time before giving up with ErrNotAcquired.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// Aborted reports a wait for key that ctx cut short. It wraps both
// apperr.ErrBusy and the context error.
func Aborted(key string, err error) error {
	return fmt.Errorf("wait for lock %s: %w: %w", key, apperr.ErrBusy, err)
}

func SlotDateKey(slotID uuid.UUID, date calendar.Date) string {
	return fmt.Sprintf("lock:slot:%s:%s", slotID, date)
}

func CatalogKey(weekday calendar.Weekday) string {
	return "lock:catalog:" + weekday.String()
}

// LocalLocker is an in-process Locker for single instance deployments and
// tests.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*localEntry
	wait  time.Duration
}

type localEntry struct {
	sem  chan struct{}
	refs int
}

func NewLocalLocker(wait time.Duration) *LocalLocker {
	return &LocalLocker{
		locks: make(map[string]*localEntry),
		wait:  wait,
	}
}

func (l *LocalLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	// select picks at random among ready cases, so a done context has to be
	// seen before the semaphore is offered.
	if err := ctx.Err(); err != nil {
		return Aborted(key, err)
	}

	e := l.ref(key)
	defer l.unref(key, e)

	timer := time.NewTimer(l.wait)
	defer timer.Stop()

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		return Aborted(key, ctx.Err())
	case <-timer.C:
		return ErrNotAcquired
	}
	defer func() { <-e.sem }()

	return fn(ctx)
}

func (l *LocalLocker) ref(key string) *localEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.locks[key]
	if !ok {
		e = &localEntry{sem: make(chan struct{}, 1)}
		l.locks[key] = e
	}
	e.refs++
	return e
}

func (l *LocalLocker) unref(key string, e *localEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
}
