package appointment

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/vetclinic-scheduling/internal/apperr"
	"github.com/hackgods/vetclinic-scheduling/internal/availability"
	"github.com/hackgods/vetclinic-scheduling/internal/calendar"
)

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Terminal statuses have no outgoing transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func (s Status) Valid() bool {
	return s == StatusScheduled || s.Terminal()
}

func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", apperr.Invalid("unknown appointment status %q", raw)
	}
	return s, nil
}

// PatientInfo is carried on the appointment and only inspected by the
// PatientValidator.
type PatientInfo struct {
	OwnerName       string `json:"owner_name" validate:"required,max=100"`
	ContactNumber   string `json:"contact_number" validate:"required,min=7,max=20,contact"`
	Email           string `json:"email,omitempty" validate:"omitempty,max=254,email"`
	PetName         string `json:"pet_name" validate:"required,max=100"`
	PetSpecies      string `json:"pet_species,omitempty" validate:"max=50"`
	AppointmentType string `json:"appointment_type" validate:"required,max=50"`
	Notes           string `json:"notes,omitempty" validate:"max=500"`
}

// Normalize trims surrounding whitespace from every field.
func (p PatientInfo) Normalize() PatientInfo {
	return PatientInfo{
		OwnerName:       strings.TrimSpace(p.OwnerName),
		ContactNumber:   strings.TrimSpace(p.ContactNumber),
		Email:           strings.TrimSpace(p.Email),
		PetName:         strings.TrimSpace(p.PetName),
		PetSpecies:      strings.TrimSpace(p.PetSpecies),
		AppointmentType: strings.TrimSpace(p.AppointmentType),
		Notes:           strings.TrimSpace(p.Notes),
	}
}

type Appointment struct {
	ID         uuid.UUID
	TimeSlotID uuid.UUID
	Date       calendar.Date
	Status     Status
	DoctorID   *uuid.UUID
	Patient    PatientInfo
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type BookingRequest struct {
	TimeSlotID uuid.UUID
	Date       calendar.Date
	Patient    PatientInfo
}

// Occupancy is the seat count of one slot on one calendar date.
type Occupancy struct {
	SlotID    uuid.UUID
	Date      calendar.Date
	Booked    int
	Capacity  int
	Available int
}

func newOccupancy(slot *availability.TimeSlot, date calendar.Date, booked int) Occupancy {
	return Occupancy{
		SlotID:    slot.ID,
		Date:      date,
		Booked:    booked,
		Capacity:  slot.Capacity,
		Available: max(slot.Capacity-booked, 0),
	}
}

type Doctor struct {
	ID        uuid.UUID
	Name      string
	Specialty *string
	CreatedAt time.Time
}

// AppointmentDetail is an appointment with its slot and doctor resolved.
// Slot is nil once the slot has been removed from the catalog.
type AppointmentDetail struct {
	Appointment
	Slot       *availability.TimeSlot
	DoctorName string
}

func (a *Appointment) String() string {
	return fmt.Sprintf("appointment %s (%s on %s, %s)", a.ID, a.TimeSlotID, a.Date, a.Status)
}
