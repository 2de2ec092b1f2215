package availability

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hackgods/vetclinic-scheduling/internal/apperr"
	"github.com/hackgods/vetclinic-scheduling/internal/calendar"
	"github.com/hackgods/vetclinic-scheduling/internal/db"
)

type PgRepository struct {
	pool db.Pool
}

func NewPgRepository(pool db.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const slotColumns = `id, weekday, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'), capacity, created_at`

func scanSlot(row pgx.Row) (*TimeSlot, error) {
	var (
		s          TimeSlot
		weekday    int
		start, end string
	)

	err := row.Scan(
		&s.ID,
		&weekday,
		&start,
		&end,
		&s.Capacity,
		&s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}

	s.Weekday = calendar.Weekday(weekday)
	if s.StartTime, err = calendar.ParseTimeOfDay(start); err != nil {
		return nil, fmt.Errorf("slot %s start_time: %w", s.ID, err)
	}
	if s.EndTime, err = calendar.ParseTimeOfDay(end); err != nil {
		return nil, fmt.Errorf("slot %s end_time: %w", s.ID, err)
	}
	return &s, nil
}

func (r *PgRepository) ListAvailability(ctx context.Context) ([]DayAvailability, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT weekday, is_available
		FROM day_availability
		ORDER BY weekday
	`)
	if err != nil {
		return nil, apperr.Persistence("list day availability", err)
	}
	defer rows.Close()

	var result []DayAvailability
	for rows.Next() {
		var (
			weekday int
			open    bool
		)
		if err := rows.Scan(&weekday, &open); err != nil {
			return nil, apperr.Persistence("scan day availability", err)
		}
		result = append(result, DayAvailability{Weekday: calendar.Weekday(weekday), IsAvailable: open})
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("list day availability", err)
	}
	return result, nil
}

func (r *PgRepository) IsAvailable(ctx context.Context, weekday calendar.Weekday) (bool, error) {
	var open bool
	err := r.pool.QueryRow(ctx, `
		SELECT is_available
		FROM day_availability
		WHERE weekday = $1
	`, int(weekday)).Scan(&open)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, apperr.Persistence("load day availability", err)
	}
	return open, nil
}

func (r *PgRepository) SetAvailability(ctx context.Context, weekday calendar.Weekday, open bool) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, apperr.Persistence("begin set availability", err)
	}
	defer tx.Rollback(ctx)

	var previous bool
	err = tx.QueryRow(ctx, `
		SELECT is_available
		FROM day_availability
		WHERE weekday = $1
		FOR UPDATE
	`, int(weekday)).Scan(&previous)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return false, apperr.Persistence("lock day availability", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO day_availability (weekday, is_available, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (weekday) DO UPDATE
		SET is_available = EXCLUDED.is_available,
		    updated_at = now()
	`, int(weekday), open)
	if err != nil {
		return false, apperr.Persistence("upsert day availability", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, apperr.Persistence("commit set availability", err)
	}
	return previous, nil
}

func (r *PgRepository) ListSlots(ctx context.Context, weekday calendar.Weekday) ([]TimeSlot, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+slotColumns+`
		FROM time_slots
		WHERE weekday = $1
		ORDER BY start_time, end_time
	`, int(weekday))
	if err != nil {
		return nil, apperr.Persistence("list slots", err)
	}
	defer rows.Close()

	result := make([]TimeSlot, 0)
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, apperr.Persistence("scan slot", err)
		}
		result = append(result, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Persistence("list slots", err)
	}
	return result, nil
}

func (r *PgRepository) GetSlot(ctx context.Context, id uuid.UUID) (*TimeSlot, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+slotColumns+`
		FROM time_slots
		WHERE id = $1
	`, id)
	s, err := scanSlot(row)
	if err != nil {
		return nil, apperr.Persistence("load slot", err)
	}
	return s, nil
}

func (r *PgRepository) ReplaceSlots(ctx context.Context, weekday calendar.Weekday, candidates []SlotCandidate) ([]TimeSlot, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, apperr.Persistence("begin replace slots", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM time_slots WHERE weekday = $1`, int(weekday)); err != nil {
		return nil, apperr.Persistence("delete weekday slots", err)
	}

	result := make([]TimeSlot, 0, len(candidates))
	for _, c := range candidates {
		row := tx.QueryRow(ctx, `
			INSERT INTO time_slots (weekday, start_time, end_time, capacity)
			VALUES ($1, $2::time, $3::time, $4)
			RETURNING `+slotColumns, int(weekday), c.StartTime.String(), c.EndTime.String(), c.Capacity)
		s, err := scanSlot(row)
		if err != nil {
			return nil, apperr.Persistence("insert slot", err)
		}
		result = append(result, *s)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperr.Persistence("commit replace slots", err)
	}

	sortSlots(result)
	return result, nil
}

func (r *PgRepository) DeleteSlot(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM time_slots WHERE id = $1`, id)
	if err != nil {
		return apperr.Persistence("delete slot", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSlotNotFound
	}
	return nil
}
