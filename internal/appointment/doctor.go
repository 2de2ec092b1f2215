package appointment

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hackgods/vetclinic-scheduling/internal/apperr"
	"github.com/hackgods/vetclinic-scheduling/internal/db"
)

// PgDoctorDirectory reads the doctors table.
type PgDoctorDirectory struct {
	pool db.Pool
}

func NewPgDoctorDirectory(pool db.Pool) *PgDoctorDirectory {
	return &PgDoctorDirectory{pool: pool}
}

func (d *PgDoctorDirectory) DoctorExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := d.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM doctors WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, apperr.Persistence("check doctor", err)
	}
	return exists, nil
}

func (d *PgDoctorDirectory) DoctorName(ctx context.Context, id uuid.UUID) (string, error) {
	var name string
	err := d.pool.QueryRow(ctx, `SELECT name FROM doctors WHERE id = $1`, id).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrDoctorNotFound
	}
	if err != nil {
		return "", apperr.Persistence("load doctor name", err)
	}
	return name, nil
}

// AddDoctor inserts a doctor; used by the seed command.
func (d *PgDoctorDirectory) AddDoctor(ctx context.Context, name string, specialty *string) (*Doctor, error) {
	var doc Doctor
	err := d.pool.QueryRow(ctx, `
		INSERT INTO doctors (name, specialty)
		VALUES ($1, $2)
		RETURNING id, name, specialty, created_at
	`, name, specialty).Scan(&doc.ID, &doc.Name, &doc.Specialty, &doc.CreatedAt)
	if err != nil {
		return nil, apperr.Persistence("insert doctor", err)
	}
	return &doc, nil
}

type MemoryDoctorDirectory struct {
	mu      sync.RWMutex
	doctors map[uuid.UUID]Doctor
}

func NewMemoryDoctorDirectory(doctors ...Doctor) *MemoryDoctorDirectory {
	d := &MemoryDoctorDirectory{doctors: make(map[uuid.UUID]Doctor, len(doctors))}
	for _, doc := range doctors {
		d.doctors[doc.ID] = doc
	}
	return d
}

func (d *MemoryDoctorDirectory) DoctorExists(_ context.Context, id uuid.UUID) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.doctors[id]
	return ok, nil
}

func (d *MemoryDoctorDirectory) DoctorName(_ context.Context, id uuid.UUID) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	doc, ok := d.doctors[id]
	if !ok {
		return "", ErrDoctorNotFound
	}
	return doc.Name, nil
}

func (d *MemoryDoctorDirectory) AddDoctor(_ context.Context, name string, specialty *string) (*Doctor, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	doc := Doctor{ID: uuid.New(), Name: name, Specialty: specialty, CreatedAt: time.Now().UTC()}
	d.doctors[doc.ID] = doc
	return &doc, nil
}
