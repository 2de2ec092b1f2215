package availability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/vetclinic-scheduling/internal/calendar"
)

// MemoryRepository is an in-process Repository used by STORE=memory and by
// tests. It mirrors the Postgres constraints on the slot catalog.
type MemoryRepository struct {
	mu    sync.RWMutex
	days  map[calendar.Weekday]bool
	slots map[uuid.UUID]TimeSlot
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		days:  make(map[calendar.Weekday]bool),
		slots: make(map[uuid.UUID]TimeSlot),
	}
}

func (r *MemoryRepository) ListAvailability(_ context.Context) ([]DayAvailability, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []DayAvailability
	for _, wd := range calendar.AllWeekdays() {
		if open, ok := r.days[wd]; ok {
			result = append(result, DayAvailability{Weekday: wd, IsAvailable: open})
		}
	}
	return result, nil
}

func (r *MemoryRepository) IsAvailable(_ context.Context, weekday calendar.Weekday) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.days[weekday], nil
}

func (r *MemoryRepository) SetAvailability(_ context.Context, weekday calendar.Weekday, open bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	previous := r.days[weekday]
	r.days[weekday] = open
	return previous, nil
}

func (r *MemoryRepository) ListSlots(_ context.Context, weekday calendar.Weekday) ([]TimeSlot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]TimeSlot, 0)
	for _, s := range r.slots {
		if s.Weekday == weekday {
			result = append(result, s)
		}
	}
	sortSlots(result)
	return result, nil
}

func (r *MemoryRepository) GetSlot(_ context.Context, id uuid.UUID) (*TimeSlot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.slots[id]
	if !ok {
		return nil, ErrSlotNotFound
	}
	return &s, nil
}

func (r *MemoryRepository) ReplaceSlots(_ context.Context, weekday calendar.Weekday, candidates []SlotCandidate) ([]TimeSlot, error) {
	seen := make(map[interval]bool, len(candidates))
	for _, c := range candidates {
		key := interval{c.StartTime, c.EndTime}
		if seen[key] || !c.StartTime.Before(c.EndTime) || c.Capacity < 1 {
			return nil, fmt.Errorf("time_slots constraint violated for %s-%s", c.StartTime, c.EndTime)
		}
		seen[key] = true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for id, s := range r.slots {
		if s.Weekday == weekday {
			delete(r.slots, id)
		}
	}

	now := time.Now().UTC()
	result := make([]TimeSlot, 0, len(candidates))
	for _, c := range candidates {
		s := TimeSlot{
			ID:        uuid.New(),
			Weekday:   weekday,
			StartTime: c.StartTime,
			EndTime:   c.EndTime,
			Capacity:  c.Capacity,
			CreatedAt: now,
		}
		r.slots[s.ID] = s
		result = append(result, s)
	}
	sortSlots(result)
	return result, nil
}

func (r *MemoryRepository) DeleteSlot(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.slots[id]; !ok {
		return ErrSlotNotFound
	}
	delete(r.slots, id)
	return nil
}
