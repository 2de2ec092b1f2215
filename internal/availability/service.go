package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/hackgods/vetclinic-scheduling/internal/apperr"
	"github.com/hackgods/vetclinic-scheduling/internal/calendar"
	"github.com/hackgods/vetclinic-scheduling/internal/db"
	"github.com/hackgods/vetclinic-scheduling/internal/events"
	"github.com/hackgods/vetclinic-scheduling/internal/lock"
	"github.com/hackgods/vetclinic-scheduling/internal/observability/metrics"
	"github.com/hackgods/vetclinic-scheduling/pkg/logger"
)

var tracer = otel.Tracer("vetclinic.internal.availability")

// SlotValidationError rejects a weekday replacement. Other is the index of
// the conflicting candidate for duplicate intervals, -1 otherwise.
type SlotValidationError struct {
	Index  int
	Other  int
	Reason string
}

func (e *SlotValidationError) Error() string {
	if e.Other >= 0 {
		return fmt.Sprintf("%v: slots %d and %d %s", apperr.ErrInvalidInput, e.Other, e.Index, e.Reason)
	}
	return fmt.Sprintf("%v: slot %d %s", apperr.ErrInvalidInput, e.Index, e.Reason)
}

func (e *SlotValidationError) Unwrap() error { return apperr.ErrInvalidInput }

type Options struct {
	Events      events.Recorder
	Metrics     *metrics.BookingMetrics
	Logger      *zap.Logger
	ReadRetries int
	ReadBackoff time.Duration
}

// Service is the day availability registry and the time slot catalog.
type Service struct {
	repo    Repository
	locker  lock.Locker
	events  events.Recorder
	metrics *metrics.BookingMetrics
	log     *zap.Logger
	retries int
	backoff time.Duration
}

func NewService(repo Repository, locker lock.Locker, opts Options) *Service {
	return &Service{
		repo:    repo,
		locker:  locker,
		events:  opts.Events,
		metrics: opts.Metrics,
		log:     logger.OrNop(opts.Logger).Named("availability"),
		retries: opts.ReadRetries,
		backoff: opts.ReadBackoff,
	}
}

func checkWeekday(weekday calendar.Weekday) error {
	if !weekday.Valid() {
		return apperr.Invalid("weekday %d out of range", int(weekday))
	}
	return nil
}

// IsOpen reports whether the clinic accepts bookings on weekday.
func (s *Service) IsOpen(ctx context.Context, weekday calendar.Weekday) (bool, error) {
	if err := checkWeekday(weekday); err != nil {
		return false, err
	}
	return db.RetryRead(ctx, s.retries, s.backoff, func(ctx context.Context) (bool, error) {
		return s.repo.IsAvailable(ctx, weekday)
	})
}

// Availability returns the flag for all seven weekdays.
func (s *Service) Availability(ctx context.Context) (map[calendar.Weekday]bool, error) {
	days, err := db.RetryRead(ctx, s.retries, s.backoff, s.repo.ListAvailability)
	if err != nil {
		return nil, err
	}

	result := make(map[calendar.Weekday]bool, 7)
	for _, wd := range calendar.AllWeekdays() {
		result[wd] = false
	}
	for _, d := range days {
		if d.Weekday.Valid() {
			result[d.Weekday] = d.IsAvailable
		}
	}
	return result, nil
}

// SetOpen stores the flag and returns the previous value so a caller that
// applied the change optimistically can restore it on failure.
func (s *Service) SetOpen(ctx context.Context, weekday calendar.Weekday, open bool) (bool, error) {
	if err := checkWeekday(weekday); err != nil {
		return false, err
	}

	previous, err := s.repo.SetAvailability(ctx, weekday, open)
	if err != nil {
		s.log.Error("set day availability failed", zap.Stringer("weekday", weekday), zap.Error(err))
		return false, err
	}

	if previous != open {
		events.Emit(ctx, s.events, s.log, events.Event{
			Type: events.DayAvailabilityChanged,
			Payload: map[string]any{
				"weekday":  weekday.String(),
				"open":     open,
				"previous": previous,
			},
		})
	}
	s.log.Info("day availability set", zap.Stringer("weekday", weekday), zap.Bool("open", open), zap.Bool("previous", previous))
	return previous, nil
}

// SlotsFor returns the weekday's slots ordered by start time.
func (s *Service) SlotsFor(ctx context.Context, weekday calendar.Weekday) ([]TimeSlot, error) {
	if err := checkWeekday(weekday); err != nil {
		return nil, err
	}
	return db.RetryRead(ctx, s.retries, s.backoff, func(ctx context.Context) ([]TimeSlot, error) {
		return s.repo.ListSlots(ctx, weekday)
	})
}

func (s *Service) GetSlot(ctx context.Context, id uuid.UUID) (*TimeSlot, error) {
	return db.RetryRead(ctx, s.retries, s.backoff, func(ctx context.Context) (*TimeSlot, error) {
		return s.repo.GetSlot(ctx, id)
	})
}

// ValidateCandidates applies capacity defaults and checks every candidate
// before anything is written.
func ValidateCandidates(candidates []SlotCandidate) ([]SlotCandidate, error) {
	normalised := make([]SlotCandidate, len(candidates))
	seen := make(map[interval]int, len(candidates))

	for i, c := range candidates {
		if c.Capacity == 0 {
			c.Capacity = DefaultCapacity
		}
		switch {
		case !c.StartTime.Valid() || !c.EndTime.Valid():
			return nil, &SlotValidationError{Index: i, Other: -1, Reason: "has a time outside 00:00-23:59"}
		case !c.StartTime.Before(c.EndTime):
			return nil, &SlotValidationError{Index: i, Other: -1,
				Reason: fmt.Sprintf("start %s is not before end %s", c.StartTime, c.EndTime)}
		case c.Capacity < 1:
			return nil, &SlotValidationError{Index: i, Other: -1,
				Reason: fmt.Sprintf("capacity %d must be at least 1", c.Capacity)}
		}

		key := interval{c.StartTime, c.EndTime}
		if prev, dup := seen[key]; dup {
			return nil, &SlotValidationError{Index: i, Other: prev,
				Reason: fmt.Sprintf("share the interval %s-%s", c.StartTime, c.EndTime)}
		}
		seen[key] = i
		normalised[i] = c
	}
	return normalised, nil
}

// ReplaceSlotsFor atomically swaps the weekday's catalog for candidates.
// Invalid input leaves the existing catalog untouched.
func (s *Service) ReplaceSlotsFor(ctx context.Context, weekday calendar.Weekday, candidates []SlotCandidate) ([]TimeSlot, error) {
	ctx, span := tracer.Start(ctx, "availability.replace_slots")
	defer span.End()
	span.SetAttributes(
		attribute.String("vetclinic.weekday", weekday.String()),
		attribute.Int("vetclinic.candidates", len(candidates)),
	)

	if err := checkWeekday(weekday); err != nil {
		s.metrics.ObserveCatalogReplacement(apperr.Reason(err))
		return nil, err
	}

	normalised, err := ValidateCandidates(candidates)
	if err != nil {
		s.metrics.ObserveCatalogReplacement(apperr.Reason(err))
		s.log.Debug("slot replacement rejected", zap.Stringer("weekday", weekday), zap.Error(err))
		return nil, err
	}

	var committed []TimeSlot
	err = s.locker.WithLock(ctx, lock.CatalogKey(weekday), func(lockCtx context.Context) error {
		slots, err := s.repo.ReplaceSlots(lockCtx, weekday, normalised)
		if err != nil {
			return err
		}
		committed = slots
		return nil
	})
	if err != nil {
		span.RecordError(err)
		s.metrics.ObserveCatalogReplacement(apperr.Reason(err))
		s.log.Error("slot replacement failed", zap.Stringer("weekday", weekday), zap.Error(err))
		return nil, err
	}

	ids := make([]string, 0, len(committed))
	for _, slot := range committed {
		ids = append(ids, slot.ID.String())
	}
	events.Emit(ctx, s.events, s.log, events.Event{
		Type: events.SlotsReplaced,
		Payload: map[string]any{
			"weekday":  weekday.String(),
			"slot_ids": ids,
		},
	})
	s.metrics.ObserveCatalogReplacement("ok")
	s.log.Info("slots replaced", zap.Stringer("weekday", weekday), zap.Int("count", len(committed)))

	return committed, nil
}

// DeleteSlot removes one slot. Appointments booked against it keep their
// own date and reference.
func (s *Service) DeleteSlot(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteSlot(ctx, id); err != nil {
		return err
	}
	events.Emit(ctx, s.events, s.log, events.Event{
		Type:    events.SlotDeleted,
		Payload: map[string]any{"slot_id": id.String()},
	})
	s.log.Info("slot deleted", zap.Stringer("slot_id", id))
	return nil
}
