package appointment

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/vetclinic-scheduling/internal/apperr"
	"github.com/hackgods/vetclinic-scheduling/internal/availability"
	"github.com/hackgods/vetclinic-scheduling/internal/calendar"
	"github.com/hackgods/vetclinic-scheduling/internal/events"
	"github.com/hackgods/vetclinic-scheduling/internal/lock"
	"github.com/hackgods/vetclinic-scheduling/internal/observability/metrics"
	redisclient "github.com/hackgods/vetclinic-scheduling/internal/redis"
)

// 2026-10-19 is a Monday.
var (
	nextMonday  = calendar.NewDate(2026, time.October, 19)
	nextTuesday = calendar.NewDate(2026, time.October, 20)
)

type fixture struct {
	catalog *availability.Service
	repo    *MemoryRepository
	doctors *MemoryDoctorDirectory
	events  *events.MemoryRecorder
	svc     *Service
}

func newFixture(t *testing.T, locker lock.Locker) *fixture {
	t.Helper()
	if locker == nil {
		locker = lock.NewLocalLocker(5 * time.Second)
	}
	reg := prometheus.NewRegistry()
	m := metrics.NewBookingMetrics(reg)
	rec := events.NewMemoryRecorder()

	catalog := availability.NewService(availability.NewMemoryRepository(), locker, availability.Options{Events: rec, Metrics: m})
	repo := NewMemoryRepository()
	doctors := NewMemoryDoctorDirectory()

	return &fixture{
		catalog: catalog,
		repo:    repo,
		doctors: doctors,
		events:  rec,
		svc: NewService(repo, catalog, locker, Options{
			Doctors: doctors,
			Events:  rec,
			Metrics: m,
		}),
	}
}

func (f *fixture) open(t *testing.T, days ...calendar.Weekday) {
	t.Helper()
	for _, d := range days {
		_, err := f.catalog.SetOpen(context.Background(), d, true)
		require.NoError(t, err)
	}
}

// slots installs one slot per capacity on weekday, starting 08:00, and
// returns them in catalog order. It replaces the weekday's catalog.
func (f *fixture) slots(t *testing.T, weekday calendar.Weekday, capacities ...int) []availability.TimeSlot {
	t.Helper()
	candidates := make([]availability.SlotCandidate, 0, len(capacities))
	for i, c := range capacities {
		candidates = append(candidates, availability.SlotCandidate{
			StartTime: calendar.NewTimeOfDay(8+i, 0),
			EndTime:   calendar.NewTimeOfDay(9+i, 0),
			Capacity:  c,
		})
	}
	committed, err := f.catalog.ReplaceSlotsFor(context.Background(), weekday, candidates)
	require.NoError(t, err)
	require.Len(t, committed, len(capacities))
	return committed
}

func (f *fixture) slot(t *testing.T, weekday calendar.Weekday, capacity int) availability.TimeSlot {
	t.Helper()
	return f.slots(t, weekday, capacity)[0]
}

func validPatient() PatientInfo {
	return PatientInfo{
		OwnerName:       "Maria Lopez",
		ContactNumber:   "+1 (555) 010-2030",
		Email:           "maria@example.com",
		PetName:         "Biscuit",
		PetSpecies:      "dog",
		AppointmentType: "vaccination",
	}
}

func (f *fixture) book(slot availability.TimeSlot, date calendar.Date) (*Appointment, error) {
	return f.svc.Book(context.Background(), BookingRequest{TimeSlotID: slot.ID, Date: date, Patient: validPatient()})
}

func TestBookClosedDayThenFull(t *testing.T) {
	f := newFixture(t, nil)
	slot := f.slot(t, calendar.Monday, 1)

	_, err := f.book(slot, nextMonday)
	require.ErrorIs(t, err, apperr.ErrDayClosed)

	f.open(t, calendar.Monday)

	appt, err := f.book(slot, nextMonday)
	require.NoError(t, err)
	assert.Equal(t, StatusScheduled, appt.Status)
	assert.Equal(t, slot.ID, appt.TimeSlotID)
	assert.Equal(t, nextMonday, appt.Date)
	assert.Nil(t, appt.DoctorID)

	_, err = f.book(slot, nextMonday)
	require.ErrorIs(t, err, apperr.ErrSlotFull)

	// the following Monday is a separate (slot, date)
	_, err = f.book(slot, nextMonday.AddDays(7))
	require.NoError(t, err)
}

func TestBookSlotDateMismatch(t *testing.T) {
	f := newFixture(t, nil)
	f.open(t, calendar.Monday, calendar.Tuesday)
	slot := f.slot(t, calendar.Monday, 2)

	_, err := f.book(slot, nextTuesday)
	require.ErrorIs(t, err, apperr.ErrSlotDateMismatch)
	assert.Equal(t, apperr.ReasonSlotDateMismatch, apperr.Reason(err))
}

func TestBookUnknownSlot(t *testing.T) {
	f := newFixture(t, nil)
	f.open(t, calendar.Monday)

	_, err := f.svc.Book(context.Background(), BookingRequest{TimeSlotID: uuid.New(), Date: nextMonday, Patient: validPatient()})
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestBookClosedDayCheckedBeforeSlot(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.Book(context.Background(), BookingRequest{TimeSlotID: uuid.New(), Date: nextMonday, Patient: validPatient()})
	require.ErrorIs(t, err, apperr.ErrDayClosed)
}

func TestBookRejectsInvalidPatient(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(p *PatientInfo)
		field  string
	}{
		{"missing owner", func(p *PatientInfo) { p.OwnerName = "   " }, "owner_name"},
		{"missing pet", func(p *PatientInfo) { p.PetName = "" }, "pet_name"},
		{"missing type", func(p *PatientInfo) { p.AppointmentType = "" }, "appointment_type"},
		{"short contact", func(p *PatientInfo) { p.ContactNumber = "123" }, "contact_number"},
		{"letters in contact", func(p *PatientInfo) { p.ContactNumber = "call me maybe" }, "contact_number"},
		{"bad email", func(p *PatientInfo) { p.Email = "not-an-email" }, "email"},
		{"long notes", func(p *PatientInfo) { p.Notes = string(make([]byte, 501)) }, "notes"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, nil)
			f.open(t, calendar.Monday)
			slot := f.slot(t, calendar.Monday, 1)

			p := validPatient()
			tc.mutate(&p)
			_, err := f.svc.Book(context.Background(), BookingRequest{TimeSlotID: slot.ID, Date: nextMonday, Patient: p})
			require.ErrorIs(t, err, apperr.ErrInvalidInput)
			assert.Contains(t, err.Error(), tc.field)

			occ, err := f.svc.Occupancy(context.Background(), slot.ID, nextMonday)
			require.NoError(t, err)
			assert.Zero(t, occ.Booked)
		})
	}
}

func TestBookFullSlotReportedBeforeInvalidPatient(t *testing.T) {
	f := newFixture(t, nil)
	f.open(t, calendar.Monday)
	slot := f.slot(t, calendar.Monday, 1)

	_, err := f.book(slot, nextMonday)
	require.NoError(t, err)

	_, err = f.svc.Book(context.Background(), BookingRequest{TimeSlotID: slot.ID, Date: nextMonday})
	require.ErrorIs(t, err, apperr.ErrSlotFull)
}

func TestBookStoresTrimmedPatient(t *testing.T) {
	f := newFixture(t, nil)
	f.open(t, calendar.Monday)
	slot := f.slot(t, calendar.Monday, 1)

	p := validPatient()
	p.PetName = "  Biscuit  "
	appt, err := f.svc.Book(context.Background(), BookingRequest{TimeSlotID: slot.ID, Date: nextMonday, Patient: p})
	require.NoError(t, err)
	assert.Equal(t, "Biscuit", appt.Patient.PetName)
}

func TestOccupancyAlwaysSumsToCapacity(t *testing.T) {
	f := newFixture(t, nil)
	f.open(t, calendar.Monday)
	slot := f.slot(t, calendar.Monday, 3)
	ctx := context.Background()

	check := func(wantBooked int) {
		t.Helper()
		occ, err := f.svc.Occupancy(ctx, slot.ID, nextMonday)
		require.NoError(t, err)
		assert.Equal(t, wantBooked, occ.Booked)
		assert.Equal(t, slot.Capacity, occ.Booked+occ.Available)
	}

	check(0)
	var ids []uuid.UUID
	for i := 1; i <= 3; i++ {
		appt, err := f.book(slot, nextMonday)
		require.NoError(t, err)
		ids = append(ids, appt.ID)
		check(i)
	}

	_, err := f.svc.Transition(ctx, ids[0], StatusCompleted)
	require.NoError(t, err)
	check(2)
	_, err = f.svc.Transition(ctx, ids[1], StatusCancelled)
	require.NoError(t, err)
	check(1)
}

func TestOccupancyUnknownSlot(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.svc.Occupancy(context.Background(), uuid.New(), nextMonday)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestOccupancyNeverNegative(t *testing.T) {
	slot := &availability.TimeSlot{ID: uuid.New(), Capacity: 2}
	occ := newOccupancy(slot, nextMonday, 5)
	assert.Equal(t, 0, occ.Available)
}

// Random (slot, date, open days) tuples: a booking succeeds exactly when the
// day is open, the slot belongs to the date's weekday and a seat is left.
func TestBookSucceedsOnlyWhenAllConditionsHold(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))

	for round := 0; round < 20; round++ {
		f := newFixture(t, nil)
		ctx := context.Background()

		openDays := map[calendar.Weekday]bool{}
		for _, wd := range calendar.AllWeekdays() {
			if rng.IntN(2) == 0 {
				f.open(t, wd)
				openDays[wd] = true
			}
		}

		var slots []availability.TimeSlot
		for _, wd := range calendar.AllWeekdays() {
			if rng.IntN(2) == 0 {
				slots = append(slots, f.slots(t, wd, 1+rng.IntN(2), 1)...)
			}
		}
		if len(slots) == 0 {
			slots = f.slots(t, calendar.Monday, 1)
		}

		for i := 0; i < 25; i++ {
			slot := slots[rng.IntN(len(slots))]
			date := nextMonday.AddDays(rng.IntN(14))

			occ, err := f.svc.Occupancy(ctx, slot.ID, date)
			require.NoError(t, err)
			want := openDays[date.Weekday()] && slot.Weekday == date.Weekday() && occ.Available > 0

			_, err = f.book(slot, date)
			if want {
				assert.NoError(t, err, "round %d: slot %s on %s", round, slot.Weekday, date)
			} else {
				assert.Error(t, err, "round %d: slot %s on %s", round, slot.Weekday, date)
			}
		}
	}
}

func stressBooking(t *testing.T, locker lock.Locker, n, capacity int) {
	t.Helper()
	f := newFixture(t, locker)
	f.open(t, calendar.Monday)
	slot := f.slot(t, calendar.Monday, capacity)

	var (
		wg     sync.WaitGroup
		booked atomic.Int32
		full   atomic.Int32
		start  = make(chan struct{})
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.book(slot, nextMonday)
			switch {
			case err == nil:
				booked.Add(1)
			case errors.Is(err, apperr.ErrSlotFull):
				full.Add(1)
			default:
				t.Errorf("unexpected booking error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(capacity), booked.Load())
	assert.Equal(t, int32(n-capacity), full.Load())

	status := StatusScheduled
	scheduled, err := f.svc.ListForSlotDate(context.Background(), slot.ID, nextMonday, &status)
	require.NoError(t, err)
	assert.Len(t, scheduled, capacity)
}

func TestConcurrentBookingLocalLock(t *testing.T) {
	stressBooking(t, lock.NewLocalLocker(10*time.Second), 50, 3)
}

func TestConcurrentBookingRedisLock(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb, err := redisclient.NewRedisClient(context.Background(), mr.Addr(), redisclient.ClientOptions{})
	require.NoError(t, err)
	defer rdb.Close()

	stressBooking(t, redisclient.NewRedisLocker(rdb, 5*time.Second, 20*time.Second), 30, 4)
}

// noLock lets every booking through the critical section at once, leaving
// the repository's commit-time check as the only guard.
type noLock struct{}

func (noLock) WithLock(ctx context.Context, _ string, fn func(context.Context) error) error {
	return fn(ctx)
}

func TestConcurrentBookingRepositoryGuard(t *testing.T) {
	stressBooking(t, noLock{}, 50, 2)
}

func TestBookBusyWhenLockUnavailable(t *testing.T) {
	f := newFixture(t, nil)
	f.open(t, calendar.Monday)
	slot := f.slot(t, calendar.Monday, 1)

	f.svc.locker = busyLocker{}
	_, err := f.book(slot, nextMonday)
	require.ErrorIs(t, err, apperr.ErrBusy)
}

func TestBookWithCancelledContextIsBusy(t *testing.T) {
	f := newFixture(t, nil)
	f.open(t, calendar.Monday)
	slot := f.slot(t, calendar.Monday, 3)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for i := 0; i < 20; i++ {
		_, err := f.svc.Book(ctx, BookingRequest{TimeSlotID: slot.ID, Date: nextMonday, Patient: validPatient()})
		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, apperr.ReasonBusy, apperr.Reason(err))
	}

	occ, err := f.svc.Occupancy(context.Background(), slot.ID, nextMonday)
	require.NoError(t, err)
	assert.Zero(t, occ.Booked)
}

// failingWrites fails every write with a storage error and counts the calls.
type failingWrites struct {
	*MemoryRepository
	inserts atomic.Int32
	updates atomic.Int32
}

func (r *failingWrites) InsertScheduled(context.Context, *Appointment, int) (*Appointment, error) {
	r.inserts.Add(1)
	return nil, apperr.Persistence("insert appointment", errors.New("connection reset by peer"))
}

func (r *failingWrites) UpdateStatus(context.Context, uuid.UUID, Status, Status) (*Appointment, error) {
	r.updates.Add(1)
	return nil, apperr.Persistence("update appointment status", errors.New("connection reset by peer"))
}

func TestWriteFailuresAreNotRetried(t *testing.T) {
	f := newFixture(t, nil)
	f.open(t, calendar.Monday)
	slot := f.slot(t, calendar.Monday, 2)

	existing, err := f.book(slot, nextMonday)
	require.NoError(t, err)

	repo := &failingWrites{MemoryRepository: f.repo}
	svc := NewService(repo, f.catalog, lock.NewLocalLocker(time.Second), Options{
		Events:      f.events,
		ReadRetries: 5,
		ReadBackoff: time.Millisecond,
	})

	_, err = svc.Book(context.Background(), BookingRequest{TimeSlotID: slot.ID, Date: nextMonday, Patient: validPatient()})
	require.ErrorIs(t, err, apperr.ErrPersistence)
	assert.Equal(t, apperr.ReasonPersistence, apperr.Reason(err))
	assert.Equal(t, int32(1), repo.inserts.Load())

	_, err = svc.Transition(context.Background(), existing.ID, StatusCompleted)
	require.ErrorIs(t, err, apperr.ErrPersistence)
	assert.Equal(t, int32(1), repo.updates.Load())

	got, err := f.repo.GetAppointment(context.Background(), existing.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusScheduled, got.Status)
	booked := 0
	for _, typ := range f.events.Types() {
		if typ == events.AppointmentBooked {
			booked++
		}
	}
	assert.Equal(t, 1, booked)
	assert.NotContains(t, f.events.Types(), events.AppointmentCompleted)
}

type busyLocker struct{}

func (busyLocker) WithLock(context.Context, string, func(context.Context) error) error {
	return lock.ErrNotAcquired
}

func TestTransitionTerminalIsRejectedAndUnchanged(t *testing.T) {
	for _, first := range []Status{StatusCompleted, StatusCancelled} {
		t.Run(string(first), func(t *testing.T) {
			f := newFixture(t, nil)
			f.open(t, calendar.Monday)
			slot := f.slot(t, calendar.Monday, 1)
			ctx := context.Background()

			appt, err := f.book(slot, nextMonday)
			require.NoError(t, err)

			done, err := f.svc.Transition(ctx, appt.ID, first)
			require.NoError(t, err)
			assert.Equal(t, first, done.Status)

			for _, target := range []Status{StatusCompleted, StatusCancelled, StatusScheduled, Status("archived")} {
				_, err := f.svc.Transition(ctx, appt.ID, target)
				require.ErrorIs(t, err, apperr.ErrAlreadyTerminal, "target %s", target)
			}

			got, err := f.repo.GetAppointment(ctx, appt.ID)
			require.NoError(t, err)
			assert.Equal(t, done, got)
		})
	}
}

func TestTransitionToScheduledIsInvalid(t *testing.T) {
	f := newFixture(t, nil)
	f.open(t, calendar.Monday)
	slot := f.slot(t, calendar.Monday, 1)

	appt, err := f.book(slot, nextMonday)
	require.NoError(t, err)

	_, err = f.svc.Transition(context.Background(), appt.ID, StatusScheduled)
	require.ErrorIs(t, err, apperr.ErrInvalidInput)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestTransitionUnknownAppointment(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.svc.Transition(context.Background(), uuid.New(), StatusCancelled)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestConcurrentTransitionsOnlyOneWins(t *testing.T) {
	f := newFixture(t, nil)
	f.open(t, calendar.Monday)
	slot := f.slot(t, calendar.Monday, 1)

	appt, err := f.book(slot, nextMonday)
	require.NoError(t, err)

	var (
		wg       sync.WaitGroup
		wins     atomic.Int32
		terminal atomic.Int32
	)
	for i := 0; i < 20; i++ {
		target := StatusCompleted
		if i%2 == 0 {
			target = StatusCancelled
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Transition(context.Background(), appt.ID, target)
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, apperr.ErrAlreadyTerminal):
				terminal.Add(1)
			default:
				t.Errorf("unexpected transition error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, int32(19), terminal.Load())
}

func TestCancellationReleasesSeat(t *testing.T) {
	f := newFixture(t, nil)
	f.open(t, calendar.Monday)
	slot := f.slot(t, calendar.Monday, 1)
	ctx := context.Background()

	first, err := f.book(slot, nextMonday)
	require.NoError(t, err)

	_, err = f.book(slot, nextMonday)
	require.ErrorIs(t, err, apperr.ErrSlotFull)

	before, err := f.svc.Occupancy(ctx, slot.ID, nextMonday)
	require.NoError(t, err)

	_, err = f.svc.Transition(ctx, first.ID, StatusCancelled)
	require.NoError(t, err)

	after, err := f.svc.Occupancy(ctx, slot.ID, nextMonday)
	require.NoError(t, err)
	assert.Equal(t, before.Booked-1, after.Booked)

	_, err = f.book(slot, nextMonday)
	require.NoError(t, err)
}

func TestAssignDoctor(t *testing.T) {
	f := newFixture(t, nil)
	f.open(t, calendar.Monday)
	slot := f.slot(t, calendar.Monday, 1)
	ctx := context.Background()

	doc, err := f.doctors.AddDoctor(ctx, "Dr. Ana Ruiz", nil)
	require.NoError(t, err)

	appt, err := f.book(slot, nextMonday)
	require.NoError(t, err)

	_, err = f.svc.AssignDoctor(ctx, appt.ID, uuid.New())
	require.ErrorIs(t, err, ErrDoctorNotFound)

	_, err = f.svc.AssignDoctor(ctx, uuid.New(), doc.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	// terminal appointments still accept a doctor
	_, err = f.svc.Transition(ctx, appt.ID, StatusCompleted)
	require.NoError(t, err)

	detail, err := f.svc.AssignDoctor(ctx, appt.ID, doc.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.DoctorID)
	assert.Equal(t, doc.ID, *detail.DoctorID)
	assert.Equal(t, "Dr. Ana Ruiz", detail.DoctorName)
	assert.Equal(t, StatusCompleted, detail.Status)
}

func TestGetAppointmentAfterSlotDeleted(t *testing.T) {
	f := newFixture(t, nil)
	f.open(t, calendar.Monday)
	slot := f.slot(t, calendar.Monday, 1)
	ctx := context.Background()

	appt, err := f.book(slot, nextMonday)
	require.NoError(t, err)

	detail, err := f.svc.GetAppointment(ctx, appt.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Slot)
	assert.Equal(t, slot.ID, detail.Slot.ID)

	require.NoError(t, f.catalog.DeleteSlot(ctx, slot.ID))

	detail, err = f.svc.GetAppointment(ctx, appt.ID)
	require.NoError(t, err)
	assert.Nil(t, detail.Slot)
	assert.Equal(t, slot.ID, detail.TimeSlotID)
}

func TestListings(t *testing.T) {
	f := newFixture(t, nil)
	f.open(t, calendar.Monday)
	pair := f.slots(t, calendar.Monday, 2, 1)
	a, b := pair[0], pair[1]
	ctx := context.Background()

	first, err := f.book(a, nextMonday)
	require.NoError(t, err)
	_, err = f.book(a, nextMonday)
	require.NoError(t, err)
	_, err = f.book(b, nextMonday)
	require.NoError(t, err)
	_, err = f.svc.Transition(ctx, first.ID, StatusCancelled)
	require.NoError(t, err)

	all, err := f.svc.ListForSlotDate(ctx, a.ID, nextMonday, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	cancelled := StatusCancelled
	onlyCancelled, err := f.svc.ListForSlotDate(ctx, a.ID, nextMonday, &cancelled)
	require.NoError(t, err)
	require.Len(t, onlyCancelled, 1)
	assert.Equal(t, first.ID, onlyCancelled[0].ID)

	day, err := f.svc.ListForDate(ctx, nextMonday)
	require.NoError(t, err)
	assert.Len(t, day, 3)

	bogus := Status("pending")
	_, err = f.svc.ListForSlotDate(ctx, a.ID, nextMonday, &bogus)
	require.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestEventsRecorded(t *testing.T) {
	f := newFixture(t, nil)
	f.open(t, calendar.Monday)
	slot := f.slot(t, calendar.Monday, 1)
	ctx := context.Background()

	doc, err := f.doctors.AddDoctor(ctx, "Dr. Lee", nil)
	require.NoError(t, err)

	appt, err := f.book(slot, nextMonday)
	require.NoError(t, err)
	_, err = f.svc.AssignDoctor(ctx, appt.ID, doc.ID)
	require.NoError(t, err)
	_, err = f.svc.Transition(ctx, appt.ID, StatusCancelled)
	require.NoError(t, err)

	assert.Equal(t, []string{
		events.DayAvailabilityChanged,
		events.SlotsReplaced,
		events.AppointmentBooked,
		events.DoctorAssigned,
		events.AppointmentCancelled,
	}, f.events.Types())
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus(" Cancelled ")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, s)

	_, err = ParseStatus("pending")
	require.ErrorIs(t, err, apperr.ErrInvalidInput)
}
