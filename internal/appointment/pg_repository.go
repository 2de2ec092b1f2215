package appointment

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

const appointmentColumns = `id, time_slot_id, to_char(appointment_date, 'YYYY-MM-DD'), status, doctor_id,
	owner_name, contact_number, email, pet_name, pet_species, appointment_type, notes,
	created_at, updated_at`

// Helpers

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var (
		a      Appointment
		date   string
		status string
	)

	err := row.Scan(
		&a.ID,
		&a.TimeSlotID,
		&date,
		&status,
		&a.DoctorID,
		&a.Patient.OwnerName,
		&a.Patient.ContactNumber,
		&a.Patient.Email,
		&a.Patient.PetName,
		&a.Patient.PetSpecies,
		&a.Patient.AppointmentType,
		&a.Patient.Notes,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	if a.Date, err = calendar.ParseDate(date); err != nil {
		return nil, fmt.Errorf("appointment %s date: %w", a.ID, err)
	}
	a.Status = Status(status)
	return &a, nil
}

func collectAppointments(rows pgx.Rows) ([]Appointment, error) {
	defer rows.Close()

	result := make([]Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// advisoryKey is hashed by Postgres into the transaction scoped advisory
// lock that serialises commits for one (slot, date).
func advisoryKey(slotID uuid.UUID, date calendar.Date) string {
	return fmt.Sprintf("appointments:%s:%s", slotID, date)
}

// Interface methods

func (r *PgRepository) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	a, err := scanAppointment(row)
	if err != nil {
		return nil, apperr.Persistence("load appointment", err)
	}
	return a, nil
}

func (r *PgRepository) CountScheduled(ctx context.Context, slotID uuid.UUID, date calendar.Date) (int, error) {
	var booked int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*)
		FROM appointments
		WHERE time_slot_id = $1
		  AND appointment_date = $2::date
		  AND status = 'scheduled'
	`, slotID, date.String()).Scan(&booked)
	if err != nil {
		return 0, apperr.Persistence("count scheduled appointments", err)
	}
	return booked, nil
}

func (r *PgRepository) InsertScheduled(ctx context.Context, appt *Appointment, capacity int) (*Appointment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, apperr.Persistence("begin insert appointment", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`,
		advisoryKey(appt.TimeSlotID, appt.Date)); err != nil {
		return nil, apperr.Persistence("lock slot date", err)
	}

	var booked int
	err = tx.QueryRow(ctx, `
		SELECT count(*)
		FROM appointments
		WHERE time_slot_id = $1
		  AND appointment_date = $2::date
		  AND status = 'scheduled'
	`, appt.TimeSlotID, appt.Date.String()).Scan(&booked)
	if err != nil {
		return nil, apperr.Persistence("recount scheduled appointments", err)
	}
	if booked >= capacity {
		return nil, fmt.Errorf("%w: %d of %d seats taken", apperr.ErrSlotFull, booked, capacity)
	}

	p := appt.Patient
	row := tx.QueryRow(ctx, `
		INSERT INTO appointments (
			time_slot_id, appointment_date, status, doctor_id,
			owner_name, contact_number, email, pet_name, pet_species, appointment_type, notes
		)
		VALUES ($1, $2::date, 'scheduled', $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+appointmentColumns,
		appt.TimeSlotID, appt.Date.String(), appt.DoctorID,
		p.OwnerName, p.ContactNumber, p.Email, p.PetName, p.PetSpecies, p.AppointmentType, p.Notes)
	created, err := scanAppointment(row)
	if err != nil {
		return nil, apperr.Persistence("insert appointment", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperr.Persistence("commit insert appointment", err)
	}
	return created, nil
}

func (r *PgRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
		  AND status = $3
		RETURNING `+appointmentColumns, id, string(to), string(from))

	a, err := scanAppointment(row)
	if errors.Is(err, ErrAppointmentNotFound) {
		return nil, ErrStatusChanged
	}
	if err != nil {
		return nil, apperr.Persistence("update appointment status", err)
	}
	return a, nil
}

func (r *PgRepository) SetDoctor(ctx context.Context, id, doctorID uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET doctor_id = $2,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+appointmentColumns, id, doctorID)

	a, err := scanAppointment(row)
	if err != nil {
		return nil, apperr.Persistence("assign doctor", err)
	}
	return a, nil
}

func (r *PgRepository) ListForSlotDate(ctx context.Context, slotID uuid.UUID, date calendar.Date, status *Status) ([]Appointment, error) {
	var statusArg *string
	if status != nil {
		s := string(*status)
		statusArg = &s
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE time_slot_id = $1
		  AND appointment_date = $2::date
		  AND ($3::text IS NULL OR status = $3)
		ORDER BY created_at, id
	`, slotID, date.String(), statusArg)
	if err != nil {
		return nil, apperr.Persistence("list appointments for slot", err)
	}

	result, err := collectAppointments(rows)
	if err != nil {
		return nil, apperr.Persistence("scan appointments for slot", err)
	}
	return result, nil
}

func (r *PgRepository) ListForDate(ctx context.Context, date calendar.Date) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE appointment_date = $1::date
		ORDER BY created_at, id
	`, date.String())
	if err != nil {
		return nil, apperr.Persistence("list appointments for date", err)
	}

	result, err := collectAppointments(rows)
	if err != nil {
		return nil, apperr.Persistence("scan appointments for date", err)
	}
	return result, nil
}
