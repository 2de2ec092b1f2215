package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"go.uber.org/zap"

	"github.com/hackgods/vetclinic-scheduling/internal/apperr"
	"github.com/hackgods/vetclinic-scheduling/internal/appointment"
	"github.com/hackgods/vetclinic-scheduling/internal/availability"
	"github.com/hackgods/vetclinic-scheduling/internal/calendar"
	"github.com/hackgods/vetclinic-scheduling/internal/config"
	"github.com/hackgods/vetclinic-scheduling/internal/db"
	"github.com/hackgods/vetclinic-scheduling/internal/events"
	"github.com/hackgods/vetclinic-scheduling/internal/lock"
	"github.com/hackgods/vetclinic-scheduling/pkg/logger"
)

var specialties = []string{
	"General Practice",
	"Surgery",
	"Dermatology",
	"Dentistry",
	"Cardiology",
	"Exotics",
	"Ophthalmology",
	"Emergency",
}

var appointmentTypes = []string{"checkup", "vaccination", "dental", "surgery", "grooming", "follow-up"}

var visitNotes = []string{
	"",
	"first visit",
	"limping on front left leg",
	"annual boosters due",
	"owner reports reduced appetite",
	"nervous around other animals",
}

func main() {
	doctorCount := flag.Int("doctors", 8, "number of doctors to create")
	bookingCount := flag.Int("appointments", 40, "number of demo appointments to book")
	days := flag.Int("days", 14, "how many days ahead demo appointments may fall")
	capacity := flag.Int("capacity", 2, "capacity of each seeded slot")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}
	if cfg.Store != config.StorePostgres {
		fmt.Fprintln(os.Stderr, "seed requires STORE=postgres")
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	log.Info("seed starting")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN, db.PoolOptions{})
	cancel()
	if err != nil {
		log.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	recorder := events.NewPgRecorder(pool)
	locker := lock.NewLocalLocker(cfg.LockWait)
	doctors := appointment.NewPgDoctorDirectory(pool)

	catalog := availability.NewService(availability.NewPgRepository(pool), locker, availability.Options{
		Events: recorder,
		Logger: log,
	})
	appointments := appointment.NewService(appointment.NewPgRepository(pool), catalog, locker, appointment.Options{
		Doctors: doctors,
		Events:  recorder,
		Logger:  log,
	})

	ctx = context.Background()

	if err := seedDoctors(ctx, log, doctors, *doctorCount); err != nil {
		log.Fatal("seed doctors", zap.Error(err))
	}
	if err := seedSchedule(ctx, log, catalog, *capacity); err != nil {
		log.Fatal("seed schedule", zap.Error(err))
	}
	if err := seedAppointments(ctx, log, catalog, appointments, cfg.ClinicTimezone, *bookingCount, *days); err != nil {
		log.Fatal("seed appointments", zap.Error(err))
	}

	log.Info("seed complete")
}

func seedDoctors(ctx context.Context, log *zap.Logger, dir *appointment.PgDoctorDirectory, count int) error {
	log.Info("seeding doctors", zap.Int("count", count))

	for i := 0; i < count; i++ {
		name := "Dr. " + gofakeit.LastName()
		spec := specialties[gofakeit.Number(0, len(specialties)-1)]

		doc, err := dir.AddDoctor(ctx, name, &spec)
		if err != nil {
			return err
		}
		log.Debug("doctor created", zap.String("doctor_id", doc.ID.String()), zap.String("name", doc.Name))
	}

	log.Info("doctors seeded")
	return nil
}

// seedSchedule opens Monday to Friday with hourly slots from 09:00 to 17:00
// and a lunch break at noon. Weekends stay closed.
func seedSchedule(ctx context.Context, log *zap.Logger, catalog *availability.Service, capacity int) error {
	var candidates []availability.SlotCandidate
	for hour := 9; hour < 17; hour++ {
		if hour == 12 {
			continue
		}
		candidates = append(candidates, availability.SlotCandidate{
			StartTime: calendar.NewTimeOfDay(hour, 0),
			EndTime:   calendar.NewTimeOfDay(hour+1, 0),
			Capacity:  capacity,
		})
	}

	for _, wd := range calendar.AllWeekdays() {
		open := wd != calendar.Saturday && wd != calendar.Sunday
		if _, err := catalog.SetOpen(ctx, wd, open); err != nil {
			return fmt.Errorf("set %s availability: %w", wd, err)
		}
		if !open {
			continue
		}
		created, err := catalog.ReplaceSlotsFor(ctx, wd, candidates)
		if err != nil {
			return fmt.Errorf("replace %s slots: %w", wd, err)
		}
		log.Info("weekday seeded", zap.Stringer("weekday", wd), zap.Int("slots", len(created)))
	}
	return nil
}

func seedAppointments(
	ctx context.Context,
	log *zap.Logger,
	catalog *availability.Service,
	svc *appointment.Service,
	loc *time.Location,
	count, days int,
) error {
	log.Info("seeding appointments", zap.Int("count", count))
	if days < 1 {
		days = 1
	}

	today := calendar.Today(loc)
	booked, rejected := 0, 0

	for attempt := 0; attempt < count*3 && booked < count; attempt++ {
		date := today.AddDays(gofakeit.Number(1, days))
		slots, err := catalog.SlotsFor(ctx, date.Weekday())
		if err != nil {
			return err
		}
		if len(slots) == 0 {
			continue
		}
		slot := slots[gofakeit.Number(0, len(slots)-1)]

		_, err = svc.Book(ctx, appointment.BookingRequest{
			TimeSlotID: slot.ID,
			Date:       date,
			Patient:    fakePatient(),
		})
		switch {
		case err == nil:
			booked++
		case apperr.IsRejection(err):
			rejected++
		default:
			return err
		}
	}

	log.Info("appointments seeded", zap.Int("booked", booked), zap.Int("rejected", rejected))
	return nil
}

func fakePatient() appointment.PatientInfo {
	return appointment.PatientInfo{
		OwnerName:       gofakeit.Name(),
		ContactNumber:   gofakeit.Numerify("555-###-####"),
		Email:           gofakeit.Email(),
		PetName:         gofakeit.PetName(),
		PetSpecies:      gofakeit.Animal(),
		AppointmentType: appointmentTypes[gofakeit.Number(0, len(appointmentTypes)-1)],
		Notes:           visitNotes[gofakeit.Number(0, len(visitNotes)-1)],
	}
}
