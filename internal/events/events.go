// Package events records booking history in the event_logs table.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hackgods/vetclinic-scheduling/internal/db"
)

const (
	AppointmentBooked      = "APPOINTMENT_BOOKED"
	AppointmentCompleted   = "APPOINTMENT_COMPLETED"
	AppointmentCancelled   = "APPOINTMENT_CANCELLED"
	DoctorAssigned         = "DOCTOR_ASSIGNED"
	SlotsReplaced          = "SLOTS_REPLACED"
	SlotDeleted            = "SLOT_DELETED"
	DayAvailabilityChanged = "DAY_AVAILABILITY_CHANGED"
)

type Event struct {
	ID            int64
	Type          string
	AppointmentID *uuid.UUID
	Payload       map[string]any
	CreatedAt     time.Time
}

type Recorder interface {
	Record(ctx context.Context, ev Event) error
}

// Emit records ev and logs instead of failing when the recorder errors; the
// history trail never blocks a booking operation.
func Emit(ctx context.Context, rec Recorder, log *zap.Logger, ev Event) {
	if rec == nil {
		return
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	if err := rec.Record(ctx, ev); err != nil && log != nil {
		log.Warn("failed to record event", zap.String("event_type", ev.Type), zap.Error(err))
	}
}

type PgRecorder struct {
	pool db.Pool
}

func NewPgRecorder(pool db.Pool) *PgRecorder {
	return &PgRecorder{pool: pool}
}

func (r *PgRecorder) Record(ctx context.Context, ev Event) error {
	var payload []byte
	if ev.Payload != nil {
		data, err := json.Marshal(ev.Payload)
		if err != nil {
			return fmt.Errorf("marshal event payload: %w", err)
		}
		payload = data
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO event_logs (event_type, appointment_id, payload, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
	`, ev.Type, ev.AppointmentID, payload, nullableTime(ev.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert event log: %w", err)
	}
	return nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// MemoryRecorder keeps events in process, for the memory store and tests.
type MemoryRecorder struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

func (r *MemoryRecorder) Record(_ context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ev.ID = int64(len(r.events) + 1)
	r.events = append(r.events, ev)
	return nil
}

func (r *MemoryRecorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Types returns the recorded event types in order.
func (r *MemoryRecorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}
