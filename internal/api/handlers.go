package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hackgods/vetclinic-scheduling/internal/apperr"
	"github.com/hackgods/vetclinic-scheduling/internal/appointment"
	"github.com/hackgods/vetclinic-scheduling/internal/availability"
	"github.com/hackgods/vetclinic-scheduling/internal/calendar"
)

const maxBodyBytes = 1 << 20

// AvailabilityService is the day registry and slot catalog as seen by the
// transport.
type AvailabilityService interface {
	Availability(ctx context.Context) (map[calendar.Weekday]bool, error)
	SetOpen(ctx context.Context, weekday calendar.Weekday, open bool) (bool, error)
	SlotsFor(ctx context.Context, weekday calendar.Weekday) ([]availability.TimeSlot, error)
	ReplaceSlotsFor(ctx context.Context, weekday calendar.Weekday, candidates []availability.SlotCandidate) ([]availability.TimeSlot, error)
	DeleteSlot(ctx context.Context, id uuid.UUID) error
}

type AppointmentService interface {
	Occupancy(ctx context.Context, slotID uuid.UUID, date calendar.Date) (appointment.Occupancy, error)
	Book(ctx context.Context, req appointment.BookingRequest) (*appointment.Appointment, error)
	GetAppointment(ctx context.Context, id uuid.UUID) (*appointment.AppointmentDetail, error)
	ListForSlotDate(ctx context.Context, slotID uuid.UUID, date calendar.Date, status *appointment.Status) ([]appointment.Appointment, error)
	ListForDate(ctx context.Context, date calendar.Date) ([]appointment.Appointment, error)
	Transition(ctx context.Context, id uuid.UUID, target appointment.Status) (*appointment.Appointment, error)
	AssignDoctor(ctx context.Context, id, doctorID uuid.UUID) (*appointment.AppointmentDetail, error)
}

// Availability

func getAvailabilityHandler(svc AvailabilityService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days, err := svc.Availability(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}

		resp := make(map[string]bool, len(days))
		for wd, open := range days {
			resp[wd.String()] = open
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func setAvailabilityHandler(svc AvailabilityService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		weekday, ok := weekdayParam(w, r)
		if !ok {
			return
		}

		var req SetAvailabilityRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.IsAvailable == nil {
			writeError(w, http.StatusBadRequest, apperr.ReasonInvalidInput, "is_available is required")
			return
		}

		previous, err := svc.SetOpen(r.Context(), weekday, *req.IsAvailable)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, DayAvailabilityResponse{
			Weekday:     weekday,
			IsAvailable: *req.IsAvailable,
			Previous:    previous,
		})
	}
}

// Slots

func listSlotsHandler(svc AvailabilityService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		weekday, ok := weekdayParam(w, r)
		if !ok {
			return
		}

		slots, err := svc.SlotsFor(r.Context(), weekday)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toSlotResponses(slots))
	}
}

func replaceSlotsHandler(svc AvailabilityService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		weekday, ok := weekdayParam(w, r)
		if !ok {
			return
		}

		var req []SlotCandidateRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		// A JSON null decodes to a nil slice; clearing a weekday takes an
		// explicit [].
		if req == nil {
			writeError(w, http.StatusBadRequest, apperr.ReasonInvalidInput, "body must be a JSON array of slots, use [] to clear the weekday")
			return
		}

		candidates := make([]availability.SlotCandidate, 0, len(req))
		for i, c := range req {
			capacity := availability.DefaultCapacity
			if c.Capacity != nil {
				if *c.Capacity < 1 {
					writeError(w, http.StatusBadRequest, apperr.ReasonInvalidInput,
						fmt.Sprintf("slot %d capacity %d must be at least 1", i, *c.Capacity))
					return
				}
				capacity = *c.Capacity
			}
			candidates = append(candidates, availability.SlotCandidate{
				StartTime: c.StartTime,
				EndTime:   c.EndTime,
				Capacity:  capacity,
			})
		}

		slots, err := svc.ReplaceSlotsFor(r.Context(), weekday, candidates)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toSlotResponses(slots))
	}
}

func deleteSlotHandler(svc AvailabilityService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uuidParam(w, r, "key", "slot id")
		if !ok {
			return
		}

		if err := svc.DeleteSlot(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func occupancyHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slotID, ok := uuidParam(w, r, "slotID", "slot id")
		if !ok {
			return
		}
		date, ok := dateQuery(w, r)
		if !ok {
			return
		}

		occ, err := svc.Occupancy(r.Context(), slotID, date)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, OccupancyResponse{
			SlotID:    occ.SlotID,
			Date:      occ.Date,
			Booked:    occ.Booked,
			Capacity:  occ.Capacity,
			Available: occ.Available,
		})
	}
}

// Appointments

func createAppointmentHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateAppointmentRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		slotID, err := uuid.Parse(req.TimeSlotID)
		if err != nil {
			writeError(w, http.StatusBadRequest, apperr.ReasonInvalidInput, "time_slot_id must be a valid UUID")
			return
		}

		appt, err := svc.Book(r.Context(), appointment.BookingRequest{
			TimeSlotID: slotID,
			Date:       req.AppointmentDate,
			Patient:    req.Patient,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(*appt))
	}
}

func getAppointmentHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uuidParam(w, r, "id", "appointment id")
		if !ok {
			return
		}

		detail, err := svc.GetAppointment(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toDetailResponse(detail))
	}
}

func listAppointmentsHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date, ok := dateQuery(w, r)
		if !ok {
			return
		}

		var status *appointment.Status
		if raw := r.URL.Query().Get("status"); raw != "" {
			s, err := appointment.ParseStatus(raw)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			status = &s
		}

		var (
			list []appointment.Appointment
			err  error
		)
		if raw := r.URL.Query().Get("slot_id"); raw != "" {
			slotID, perr := uuid.Parse(raw)
			if perr != nil {
				writeError(w, http.StatusBadRequest, apperr.ReasonInvalidInput, "slot_id must be a valid UUID")
				return
			}
			list, err = svc.ListForSlotDate(r.Context(), slotID, date, status)
		} else {
			list, err = svc.ListForDate(r.Context(), date)
			if err == nil && status != nil {
				list = filterStatus(list, *status)
			}
		}
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponses(list))
	}
}

func filterStatus(list []appointment.Appointment, status appointment.Status) []appointment.Appointment {
	out := list[:0]
	for _, a := range list {
		if a.Status == status {
			out = append(out, a)
		}
	}
	return out
}

func updateStatusHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uuidParam(w, r, "id", "appointment id")
		if !ok {
			return
		}

		var req UpdateStatusRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		// Left unparsed: a terminal appointment is reported before an unknown
		// target.
		target := appointment.Status(strings.ToLower(strings.TrimSpace(req.Status)))

		appt, err := svc.Transition(r.Context(), id, target)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(*appt))
	}
}

func assignDoctorHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uuidParam(w, r, "id", "appointment id")
		if !ok {
			return
		}

		var req AssignDoctorRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		doctorID, err := uuid.Parse(req.DoctorID)
		if err != nil {
			writeError(w, http.StatusBadRequest, apperr.ReasonInvalidInput, "doctor_id must be a valid UUID")
			return
		}

		detail, err := svc.AssignDoctor(r.Context(), id, doctorID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toDetailResponse(detail))
	}
}

// Helpers

func weekdayParam(w http.ResponseWriter, r *http.Request) (calendar.Weekday, bool) {
	weekday, err := calendar.ParseWeekday(chi.URLParam(r, "key"))
	if err != nil {
		writeError(w, http.StatusBadRequest, apperr.ReasonInvalidInput, err.Error())
		return 0, false
	}
	return weekday, true
}

func uuidParam(w http.ResponseWriter, r *http.Request, param, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		writeError(w, http.StatusBadRequest, apperr.ReasonInvalidInput, label+" must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func dateQuery(w http.ResponseWriter, r *http.Request) (calendar.Date, bool) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		writeError(w, http.StatusBadRequest, apperr.ReasonInvalidInput, "date query parameter is required (YYYY-MM-DD)")
		return calendar.Date{}, false
	}
	date, err := calendar.ParseDate(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, apperr.ReasonInvalidInput, err.Error())
		return calendar.Date{}, false
	}
	return date, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON: "+err.Error())
		return false
	}
	return true
}

func writeServiceError(w http.ResponseWriter, err error) {
	reason := apperr.Reason(err)
	status := statusFor(reason)
	details := err.Error()
	if status == http.StatusInternalServerError {
		details = "unexpected error"
	}
	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "1")
	}
	writeError(w, status, reason, details)
}

// statusFor maps a rejection reason to its HTTP status.
func statusFor(reason string) int {
	switch reason {
	case apperr.ReasonDayClosed, apperr.ReasonSlotFull, apperr.ReasonAlreadyTerminal:
		return http.StatusConflict
	case apperr.ReasonSlotDateMismatch:
		return http.StatusUnprocessableEntity
	case apperr.ReasonInvalidInput:
		return http.StatusBadRequest
	case apperr.ReasonNotFound:
		return http.StatusNotFound
	case apperr.ReasonBusy, apperr.ReasonPersistence:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}
