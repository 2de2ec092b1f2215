package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/vetclinic-scheduling/internal/appointment"
	"github.com/hackgods/vetclinic-scheduling/internal/availability"
	"github.com/hackgods/vetclinic-scheduling/internal/calendar"
)

type SetAvailabilityRequest struct {
	IsAvailable *bool `json:"is_available"`
}

type DayAvailabilityResponse struct {
	Weekday     calendar.Weekday `json:"weekday"`
	IsAvailable bool             `json:"is_available"`
	Previous    bool             `json:"previous"`
}

// SlotCandidateRequest leaves Capacity nil when the field is omitted; only
// then does the default capacity apply.
type SlotCandidateRequest struct {
	StartTime calendar.TimeOfDay `json:"start_time"`
	EndTime   calendar.TimeOfDay `json:"end_time"`
	Capacity  *int               `json:"capacity"`
}

type SlotResponse struct {
	ID        uuid.UUID          `json:"id"`
	Weekday   calendar.Weekday   `json:"weekday"`
	StartTime calendar.TimeOfDay `json:"start_time"`
	EndTime   calendar.TimeOfDay `json:"end_time"`
	Capacity  int                `json:"capacity"`
}

type OccupancyResponse struct {
	SlotID    uuid.UUID     `json:"slot_id"`
	Date      calendar.Date `json:"date"`
	Booked    int           `json:"booked"`
	Capacity  int           `json:"capacity"`
	Available int           `json:"available"`
}

type CreateAppointmentRequest struct {
	TimeSlotID      string                  `json:"time_slot_id"`
	AppointmentDate calendar.Date           `json:"appointment_date"`
	Patient         appointment.PatientInfo `json:"patient"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type AssignDoctorRequest struct {
	DoctorID string `json:"doctor_id"`
}

type AppointmentResponse struct {
	ID              uuid.UUID               `json:"id"`
	TimeSlotID      uuid.UUID               `json:"time_slot_id"`
	AppointmentDate calendar.Date           `json:"appointment_date"`
	Status          string                  `json:"status"`
	DoctorID        *uuid.UUID              `json:"doctor_id"`
	Patient         appointment.PatientInfo `json:"patient"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

type AppointmentDetailResponse struct {
	AppointmentResponse
	Slot       *SlotResponse `json:"slot"`
	DoctorName string        `json:"doctor_name,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func toSlotResponse(s availability.TimeSlot) SlotResponse {
	return SlotResponse{
		ID:        s.ID,
		Weekday:   s.Weekday,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		Capacity:  s.Capacity,
	}
}

func toSlotResponses(slots []availability.TimeSlot) []SlotResponse {
	out := make([]SlotResponse, 0, len(slots))
	for _, s := range slots {
		out = append(out, toSlotResponse(s))
	}
	return out
}

func toAppointmentResponse(a appointment.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:              a.ID,
		TimeSlotID:      a.TimeSlotID,
		AppointmentDate: a.Date,
		Status:          string(a.Status),
		DoctorID:        a.DoctorID,
		Patient:         a.Patient,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func toAppointmentResponses(list []appointment.Appointment) []AppointmentResponse {
	out := make([]AppointmentResponse, 0, len(list))
	for _, a := range list {
		out = append(out, toAppointmentResponse(a))
	}
	return out
}

func toDetailResponse(d *appointment.AppointmentDetail) AppointmentDetailResponse {
	resp := AppointmentDetailResponse{
		AppointmentResponse: toAppointmentResponse(d.Appointment),
		DoctorName:          d.DoctorName,
	}
	if d.Slot != nil {
		slot := toSlotResponse(*d.Slot)
		resp.Slot = &slot
	}
	return resp
}
