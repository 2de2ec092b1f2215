package appointment

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hackgods/vetclinic-scheduling/internal/apperr"
	"github.com/hackgods/vetclinic-scheduling/internal/calendar"
)

var (
	ErrAppointmentNotFound = fmt.Errorf("appointment %w", apperr.ErrNotFound)
	ErrDoctorNotFound      = fmt.Errorf("doctor %w", apperr.ErrNotFound)
	// ErrStatusChanged is returned by a guarded status update whose expected
	// current status no longer holds.
	ErrStatusChanged = fmt.Errorf("appointment status changed concurrently: %w", apperr.ErrAlreadyTerminal)
)

// Repository contains all appointment storage needed by the service.
type Repository interface {
	GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// Occupancy
	CountScheduled(ctx context.Context, slotID uuid.UUID, date calendar.Date) (int, error)

	// InsertScheduled stores appt as scheduled unless capacity scheduled
	// appointments already exist for its (slot, date). The count and the
	// insert are one atomic unit.
	InsertScheduled(ctx context.Context, appt *Appointment, capacity int) (*Appointment, error)

	// UpdateStatus moves id from one status to another and fails with
	// ErrStatusChanged when the current status is not from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Appointment, error)
	SetDoctor(ctx context.Context, id, doctorID uuid.UUID) (*Appointment, error)

	// Listings, ordered by creation time. A nil status matches every status.
	ListForSlotDate(ctx context.Context, slotID uuid.UUID, date calendar.Date, status *Status) ([]Appointment, error)
	ListForDate(ctx context.Context, date calendar.Date) ([]Appointment, error)
}

// DoctorDirectory resolves doctors owned by the accounts side of the clinic.
type DoctorDirectory interface {
	DoctorExists(ctx context.Context, id uuid.UUID) (bool, error)
	DoctorName(ctx context.Context, id uuid.UUID) (string, error)
}

// PatientValidator checks the patient fields of a booking request.
type PatientValidator interface {
	ValidatePatient(p PatientInfo) error
}
