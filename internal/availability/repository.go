package availability

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/hackgods/vetclinic-scheduling/internal/apperr"
	"github.com/hackgods/vetclinic-scheduling/internal/calendar"
)

var ErrSlotNotFound = fmt.Errorf("time slot %w", apperr.ErrNotFound)

// Repository persists the clinic-wide availability configuration.
type Repository interface {
	// Day availability. Weekdays without a stored row are closed.
	ListAvailability(ctx context.Context) ([]DayAvailability, error)
	IsAvailable(ctx context.Context, weekday calendar.Weekday) (bool, error)
	SetAvailability(ctx context.Context, weekday calendar.Weekday, open bool) (previous bool, err error)

	// Slot catalog
	ListSlots(ctx context.Context, weekday calendar.Weekday) ([]TimeSlot, error)
	GetSlot(ctx context.Context, id uuid.UUID) (*TimeSlot, error)
	// ReplaceSlots deletes every slot of weekday and inserts candidates as
	// one atomic unit, assigning fresh identities.
	ReplaceSlots(ctx context.Context, weekday calendar.Weekday, candidates []SlotCandidate) ([]TimeSlot, error)
	DeleteSlot(ctx context.Context, id uuid.UUID) error
}

func sortSlots(slots []TimeSlot) {
	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].StartTime != slots[j].StartTime {
			return slots[i].StartTime < slots[j].StartTime
		}
		return slots[i].EndTime < slots[j].EndTime
	})
}
