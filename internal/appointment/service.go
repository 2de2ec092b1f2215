package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/hackgods/vetclinic-scheduling/internal/apperr"
	"github.com/hackgods/vetclinic-scheduling/internal/availability"
	"github.com/hackgods/vetclinic-scheduling/internal/calendar"
	"github.com/hackgods/vetclinic-scheduling/internal/db"
	"github.com/hackgods/vetclinic-scheduling/internal/events"
	"github.com/hackgods/vetclinic-scheduling/internal/lock"
	"github.com/hackgods/vetclinic-scheduling/internal/observability/metrics"
	"github.com/hackgods/vetclinic-scheduling/pkg/logger"
)

var tracer = otel.Tracer("vetclinic.internal.appointment")

var ErrInvalidTransition = fmt.Errorf("%w: appointments only move from scheduled to completed or cancelled", apperr.ErrInvalidInput)

// Catalog is the part of availability.Service the booking engine reads.
type Catalog interface {
	IsOpen(ctx context.Context, weekday calendar.Weekday) (bool, error)
	GetSlot(ctx context.Context, id uuid.UUID) (*availability.TimeSlot, error)
}

type Options struct {
	Validator   PatientValidator
	Doctors     DoctorDirectory
	Events      events.Recorder
	Metrics     *metrics.BookingMetrics
	Logger      *zap.Logger
	ReadRetries int
	ReadBackoff time.Duration
}

type Service struct {
	repo      Repository
	catalog   Catalog
	locker    lock.Locker
	validator PatientValidator
	doctors   DoctorDirectory
	events    events.Recorder
	metrics   *metrics.BookingMetrics
	log       *zap.Logger
	retries   int
	backoff   time.Duration
}

func NewService(repo Repository, catalog Catalog, locker lock.Locker, opts Options) *Service {
	s := &Service{
		repo:      repo,
		catalog:   catalog,
		locker:    locker,
		validator: opts.Validator,
		doctors:   opts.Doctors,
		events:    opts.Events,
		metrics:   opts.Metrics,
		log:       logger.OrNop(opts.Logger).Named("appointment"),
		retries:   opts.ReadRetries,
		backoff:   opts.ReadBackoff,
	}
	if s.validator == nil {
		s.validator = NewFieldValidator()
	}
	if s.doctors == nil {
		s.doctors = NewMemoryDoctorDirectory()
	}
	return s
}

func (s *Service) countScheduled(ctx context.Context, slotID uuid.UUID, date calendar.Date) (int, error) {
	return db.RetryRead(ctx, s.retries, s.backoff, func(ctx context.Context) (int, error) {
		return s.repo.CountScheduled(ctx, slotID, date)
	})
}

// Occupancy counts the scheduled appointments of a slot on date.
// Available never drops below zero.
func (s *Service) Occupancy(ctx context.Context, slotID uuid.UUID, date calendar.Date) (Occupancy, error) {
	if date.IsZero() {
		return Occupancy{}, apperr.Invalid("date is required")
	}
	slot, err := s.catalog.GetSlot(ctx, slotID)
	if err != nil {
		return Occupancy{}, err
	}
	booked, err := s.countScheduled(ctx, slotID, date)
	if err != nil {
		return Occupancy{}, err
	}
	return newOccupancy(slot, date, booked), nil
}

// Book creates a scheduled appointment. Checks run in order and the first
// failing one decides the rejection: closed day, slot/date mismatch, full
// slot, invalid patient fields.
func (s *Service) Book(ctx context.Context, req BookingRequest) (*Appointment, error) {
	ctx, span := tracer.Start(ctx, "appointment.book")
	defer span.End()
	span.SetAttributes(
		attribute.String("vetclinic.slot_id", req.TimeSlotID.String()),
		attribute.String("vetclinic.date", req.Date.String()),
	)

	appt, err := s.book(ctx, req)
	if err != nil {
		reason := apperr.Reason(err)
		s.metrics.ObserveBooking(reason)
		span.SetAttributes(attribute.String("vetclinic.outcome", reason))
		if apperr.IsRejection(err) {
			s.log.Debug("booking rejected",
				zap.Stringer("slot_id", req.TimeSlotID),
				zap.Stringer("date", req.Date),
				zap.String("reason", reason),
				zap.Error(err),
			)
		} else {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			s.log.Error("booking failed",
				zap.Stringer("slot_id", req.TimeSlotID),
				zap.Stringer("date", req.Date),
				zap.Error(err),
			)
		}
		return nil, err
	}

	s.metrics.ObserveBooking("booked")
	span.SetAttributes(attribute.String("vetclinic.appointment_id", appt.ID.String()))
	s.log.Info("appointment booked",
		zap.Stringer("appointment_id", appt.ID),
		zap.Stringer("slot_id", appt.TimeSlotID),
		zap.Stringer("date", appt.Date),
	)
	return appt, nil
}

func (s *Service) book(ctx context.Context, req BookingRequest) (*Appointment, error) {
	if req.Date.IsZero() {
		return nil, apperr.Invalid("appointment date is required")
	}
	weekday := req.Date.Weekday()

	open, err := s.catalog.IsOpen(ctx, weekday)
	if err != nil {
		return nil, err
	}
	if !open {
		return nil, fmt.Errorf("%w: %s", apperr.ErrDayClosed, weekday)
	}

	slot, err := s.catalog.GetSlot(ctx, req.TimeSlotID)
	if err != nil {
		return nil, err
	}
	if slot.Weekday != weekday {
		return nil, fmt.Errorf("%w: slot is on %s, %s is a %s",
			apperr.ErrSlotDateMismatch, slot.Weekday, req.Date, weekday)
	}

	var created *Appointment
	waitStart := time.Now()
	err = s.locker.WithLock(ctx, lock.SlotDateKey(slot.ID, req.Date), func(lockCtx context.Context) error {
		s.metrics.ObserveLockWait(time.Since(waitStart).Seconds())

		booked, err := s.repo.CountScheduled(lockCtx, slot.ID, req.Date)
		if err != nil {
			return err
		}
		if occ := newOccupancy(slot, req.Date, booked); occ.Available <= 0 {
			return fmt.Errorf("%w: %d of %d seats taken", apperr.ErrSlotFull, occ.Booked, occ.Capacity)
		}

		patient := req.Patient.Normalize()
		if err := s.validator.ValidatePatient(patient); err != nil {
			if !errors.Is(err, apperr.ErrInvalidInput) {
				err = fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
			}
			return err
		}

		appt, err := s.repo.InsertScheduled(lockCtx, &Appointment{
			TimeSlotID: slot.ID,
			Date:       req.Date,
			Status:     StatusScheduled,
			Patient:    patient,
		}, slot.Capacity)
		if err != nil {
			return err
		}
		created = appt
		return nil
	})
	if err != nil {
		return nil, err
	}

	events.Emit(ctx, s.events, s.log, events.Event{
		Type:          events.AppointmentBooked,
		AppointmentID: &created.ID,
		Payload: map[string]any{
			"slot_id":          slot.ID.String(),
			"appointment_date": req.Date.String(),
			"pet_name":         created.Patient.PetName,
			"appointment_type": created.Patient.AppointmentType,
		},
	})
	return created, nil
}

// Transition moves a scheduled appointment to completed or cancelled.
// Terminal appointments are never modified.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, target Status) (*Appointment, error) {
	ctx, span := tracer.Start(ctx, "appointment.transition")
	defer span.End()
	span.SetAttributes(
		attribute.String("vetclinic.appointment_id", id.String()),
		attribute.String("vetclinic.target", string(target)),
	)

	updated, err := s.transition(ctx, id, target)
	if err != nil {
		s.metrics.ObserveTransition(string(target), apperr.Reason(err))
		if !apperr.IsRejection(err) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			s.log.Error("status transition failed", zap.Stringer("appointment_id", id), zap.Error(err))
		}
		return nil, err
	}

	s.metrics.ObserveTransition(string(target), "ok")
	s.log.Info("appointment status changed",
		zap.Stringer("appointment_id", id),
		zap.String("status", string(updated.Status)),
	)
	return updated, nil
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, target Status) (*Appointment, error) {
	current, err := s.repo.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status.Terminal() {
		return nil, fmt.Errorf("%w: status is %s", apperr.ErrAlreadyTerminal, current.Status)
	}
	if !target.Terminal() {
		return nil, ErrInvalidTransition
	}

	updated, err := s.repo.UpdateStatus(ctx, id, StatusScheduled, target)
	if err != nil {
		return nil, err
	}

	eventType := events.AppointmentCompleted
	if target == StatusCancelled {
		eventType = events.AppointmentCancelled
	}
	events.Emit(ctx, s.events, s.log, events.Event{
		Type:          eventType,
		AppointmentID: &updated.ID,
		Payload: map[string]any{
			"from":             string(current.Status),
			"to":               string(target),
			"slot_id":          updated.TimeSlotID.String(),
			"appointment_date": updated.Date.String(),
		},
	})
	return updated, nil
}

// AssignDoctor sets the doctor of an appointment in any status.
func (s *Service) AssignDoctor(ctx context.Context, id, doctorID uuid.UUID) (*AppointmentDetail, error) {
	exists, err := s.doctors.DoctorExists(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrDoctorNotFound
	}

	updated, err := s.repo.SetDoctor(ctx, id, doctorID)
	if err != nil {
		return nil, err
	}

	events.Emit(ctx, s.events, s.log, events.Event{
		Type:          events.DoctorAssigned,
		AppointmentID: &updated.ID,
		Payload:       map[string]any{"doctor_id": doctorID.String()},
	})
	s.log.Info("doctor assigned", zap.Stringer("appointment_id", id), zap.Stringer("doctor_id", doctorID))

	return s.detail(ctx, updated)
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*AppointmentDetail, error) {
	appt, err := db.RetryRead(ctx, s.retries, s.backoff, func(ctx context.Context) (*Appointment, error) {
		return s.repo.GetAppointment(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, appt)
}

func (s *Service) detail(ctx context.Context, appt *Appointment) (*AppointmentDetail, error) {
	d := &AppointmentDetail{Appointment: *appt}

	slot, err := s.catalog.GetSlot(ctx, appt.TimeSlotID)
	switch {
	case err == nil:
		d.Slot = slot
	case !errors.Is(err, apperr.ErrNotFound):
		return nil, err
	}

	if appt.DoctorID != nil {
		name, err := s.doctors.DoctorName(ctx, *appt.DoctorID)
		switch {
		case err == nil:
			d.DoctorName = name
		case !errors.Is(err, apperr.ErrNotFound):
			return nil, err
		}
	}
	return d, nil
}

// ListForSlotDate returns the appointments of one slot on date, optionally
// filtered by status.
func (s *Service) ListForSlotDate(ctx context.Context, slotID uuid.UUID, date calendar.Date, status *Status) ([]Appointment, error) {
	if date.IsZero() {
		return nil, apperr.Invalid("date is required")
	}
	if status != nil && !status.Valid() {
		return nil, apperr.Invalid("unknown appointment status %q", *status)
	}
	return db.RetryRead(ctx, s.retries, s.backoff, func(ctx context.Context) ([]Appointment, error) {
		return s.repo.ListForSlotDate(ctx, slotID, date, status)
	})
}

func (s *Service) ListForDate(ctx context.Context, date calendar.Date) ([]Appointment, error) {
	if date.IsZero() {
		return nil, apperr.Invalid("date is required")
	}
	return db.RetryRead(ctx, s.retries, s.backoff, func(ctx context.Context) ([]Appointment, error) {
		return s.repo.ListForDate(ctx, date)
	})
}
