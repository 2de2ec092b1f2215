package availability

import (
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/vetclinic-scheduling/internal/calendar"
)

// DefaultCapacity applies when a slot candidate leaves capacity unset.
const DefaultCapacity = 1

type DayAvailability struct {
	Weekday     calendar.Weekday
	IsAvailable bool
}

// TimeSlot is a recurring bookable interval on one weekday.
type TimeSlot struct {
	ID        uuid.UUID
	Weekday   calendar.Weekday
	StartTime calendar.TimeOfDay
	EndTime   calendar.TimeOfDay
	Capacity  int
	CreatedAt time.Time
}

// SlotCandidate is one entry of a weekday replacement request. Identity is
// assigned by storage when the candidate is committed.
type SlotCandidate struct {
	StartTime calendar.TimeOfDay
	EndTime   calendar.TimeOfDay
	Capacity  int
}

type interval struct {
	start, end calendar.TimeOfDay
}
