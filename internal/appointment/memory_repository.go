package appointment

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/vetclinic-scheduling/internal/apperr"
	"github.com/hackgods/vetclinic-scheduling/internal/calendar"
)

// MemoryRepository keeps appointments in process. Its mutex plays the role
// of the advisory lock in PgRepository.InsertScheduled.
type MemoryRepository struct {
	mu    sync.Mutex
	byID  map[uuid.UUID]*Appointment
	order []uuid.UUID
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[uuid.UUID]*Appointment)}
}

func (r *MemoryRepository) GetAppointment(_ context.Context, id uuid.UUID) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *MemoryRepository) countLocked(slotID uuid.UUID, date calendar.Date) int {
	n := 0
	for _, a := range r.byID {
		if a.TimeSlotID == slotID && a.Date == date && a.Status == StatusScheduled {
			n++
		}
	}
	return n
}

func (r *MemoryRepository) CountScheduled(_ context.Context, slotID uuid.UUID, date calendar.Date) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.countLocked(slotID, date), nil
}

func (r *MemoryRepository) InsertScheduled(_ context.Context, appt *Appointment, capacity int) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if booked := r.countLocked(appt.TimeSlotID, appt.Date); booked >= capacity {
		return nil, fmt.Errorf("%w: %d of %d seats taken", apperr.ErrSlotFull, booked, capacity)
	}

	now := time.Now().UTC()
	created := *appt
	created.ID = uuid.New()
	created.Status = StatusScheduled
	created.CreatedAt = now
	created.UpdatedAt = now

	r.byID[created.ID] = &created
	r.order = append(r.order, created.ID)

	cp := created
	return &cp, nil
}

func (r *MemoryRepository) UpdateStatus(_ context.Context, id uuid.UUID, from, to Status) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	if a.Status != from {
		return nil, ErrStatusChanged
	}
	a.Status = to
	a.UpdatedAt = time.Now().UTC()

	cp := *a
	return &cp, nil
}

func (r *MemoryRepository) SetDoctor(_ context.Context, id, doctorID uuid.UUID) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	doc := doctorID
	a.DoctorID = &doc
	a.UpdatedAt = time.Now().UTC()

	cp := *a
	return &cp, nil
}

func (r *MemoryRepository) list(match func(*Appointment) bool) []Appointment {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]Appointment, 0)
	for _, id := range r.order {
		if a := r.byID[id]; match(a) {
			result = append(result, *a)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

func (r *MemoryRepository) ListForSlotDate(_ context.Context, slotID uuid.UUID, date calendar.Date, status *Status) ([]Appointment, error) {
	return r.list(func(a *Appointment) bool {
		return a.TimeSlotID == slotID && a.Date == date && (status == nil || a.Status == *status)
	}), nil
}

func (r *MemoryRepository) ListForDate(_ context.Context, date calendar.Date) ([]Appointment, error) {
	return r.list(func(a *Appointment) bool { return a.Date == date }), nil
}
