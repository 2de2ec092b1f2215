package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hackgods/vetclinic-scheduling/internal/api"
	"github.com/hackgods/vetclinic-scheduling/internal/appointment"
	"github.com/hackgods/vetclinic-scheduling/internal/calendar"
	"github.com/hackgods/vetclinic-scheduling/pkg/logger"
)

type SimConfig struct {
	APIBaseURL      string
	Duration        time.Duration
	Workers         int
	BookingRatio    float64
	TransitionRatio float64
	ReadRatio       float64
	DaysAhead       int
	Timezone        *time.Location
}

// target is one bookable (slot, date) pair.
type target struct {
	SlotID   uuid.UUID
	Date     calendar.Date
	Capacity int
}

type DataPool struct {
	Targets      []target
	mu           sync.RWMutex
	appointments []uuid.UUID
}

func (dp *DataPool) AddAppointment(id uuid.UUID) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	dp.appointments = append(dp.appointments, id)
}

func (dp *DataPool) GetRandomAppointment(rng *rand.Rand) (uuid.UUID, bool) {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	if len(dp.appointments) == 0 {
		return uuid.Nil, false
	}
	return dp.appointments[rng.IntN(len(dp.appointments))], true
}

type OperationMetrics struct {
	Total     int64
	Success   int64
	Conflict  int64
	Error     int64
	Latencies []time.Duration
	mu        sync.Mutex
}

func (om *OperationMetrics) Record(latency time.Duration, success bool, conflict bool) {
	atomic.AddInt64(&om.Total, 1)
	switch {
	case success:
		atomic.AddInt64(&om.Success, 1)
	case conflict:
		atomic.AddInt64(&om.Conflict, 1)
	default:
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.Latencies = append(om.Latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, low, high, p50, p95 time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.Latencies) == 0 {
		return 0, 0, 0, 0, 0
	}

	latencies := make([]time.Duration, len(om.Latencies))
	copy(latencies, om.Latencies)
	sort.Slice(latencies, func(i, j int) bool {
		return latencies[i] < latencies[j]
	})

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}

	avg = sum / time.Duration(len(latencies))
	low = latencies[0]
	high = latencies[len(latencies)-1]
	p50 = latencies[min(len(latencies)*50/100, len(latencies)-1)]
	p95 = latencies[min(len(latencies)*95/100, len(latencies)-1)]
	return avg, low, high, p50, p95
}

type Metrics struct {
	Booking    OperationMetrics
	Transition OperationMetrics
	Occupancy  OperationMetrics
	ReadByID   OperationMetrics
	ListByDate OperationMetrics
}

type Simulator struct {
	config  SimConfig
	pool    *DataPool
	client  *http.Client
	log     *zap.Logger
	metrics Metrics
}

func main() {
	_ = godotenv.Load()

	log, err := logger.New(getEnv("LOG_LEVEL", "info"), getEnv("LOG_FORMAT", "console"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatal("invalid config", zap.Error(err))
	}

	log.Info("simulator starting",
		zap.String("api", cfg.APIBaseURL),
		zap.Duration("duration", cfg.Duration),
		zap.Int("workers", cfg.Workers),
		zap.Float64("booking", cfg.BookingRatio),
		zap.Float64("transition", cfg.TransitionRatio),
		zap.Float64("read", cfg.ReadRatio),
	)

	sim := &Simulator{
		config: cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		log:    log,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	sim.pool, err = sim.loadDataPool(ctx)
	cancel()
	if err != nil {
		log.Fatal("load data pool", zap.Error(err))
	}
	log.Info("targets loaded", zap.Int("targets", len(sim.pool.Targets)))

	sim.Run()
	sim.PrintReport()

	verifyCtx, cancelVerify := context.WithTimeout(context.Background(), time.Minute)
	defer cancelVerify()
	if violations := sim.VerifyCapacity(verifyCtx); violations > 0 {
		log.Error("capacity violated", zap.Int("targets", violations))
		os.Exit(2)
	}
	log.Info("no slot exceeded its capacity")
}

func loadConfig() (SimConfig, error) {
	loc, err := time.LoadLocation(getEnv("CLINIC_TIMEZONE", "UTC"))
	if err != nil {
		return SimConfig{}, fmt.Errorf("invalid CLINIC_TIMEZONE: %w", err)
	}

	cfg := SimConfig{
		APIBaseURL:      strings.TrimRight(getEnv("SIM_API_BASE_URL", "http://localhost:8080"), "/"),
		Duration:        getDuration("SIM_DURATION", 30*time.Second),
		Workers:         getInt("SIM_WORKERS", 10),
		BookingRatio:    getFloat("SIM_BOOKING_RATIO", 0.5),
		TransitionRatio: getFloat("SIM_TRANSITION_RATIO", 0.2),
		ReadRatio:       getFloat("SIM_READ_RATIO", 0.3),
		DaysAhead:       getInt("SIM_DAYS_AHEAD", 7),
		Timezone:        loc,
	}

	total := cfg.BookingRatio + cfg.TransitionRatio + cfg.ReadRatio
	if total > 0 {
		cfg.BookingRatio /= total
		cfg.TransitionRatio /= total
		cfg.ReadRatio /= total
	}

	if cfg.Workers <= 0 {
		return SimConfig{}, fmt.Errorf("SIM_WORKERS must be > 0")
	}
	if cfg.Duration <= 0 {
		return SimConfig{}, fmt.Errorf("SIM_DURATION must be > 0")
	}
	if cfg.DaysAhead <= 0 {
		return SimConfig{}, fmt.Errorf("SIM_DAYS_AHEAD must be > 0")
	}
	return cfg, nil
}

// loadDataPool asks the API for the open weekdays and their slots, then
// expands them over the next DaysAhead days.
func (s *Simulator) loadDataPool(ctx context.Context) (*DataPool, error) {
	var open map[string]bool
	if _, err := s.getJSON(ctx, "/availability", &open); err != nil {
		return nil, fmt.Errorf("load availability: %w", err)
	}

	slotsByDay := make(map[calendar.Weekday][]api.SlotResponse)
	for _, wd := range calendar.AllWeekdays() {
		if !open[wd.String()] {
			continue
		}
		var slots []api.SlotResponse
		if _, err := s.getJSON(ctx, "/slots/"+wd.String(), &slots); err != nil {
			return nil, fmt.Errorf("load %s slots: %w", wd, err)
		}
		slotsByDay[wd] = slots
	}

	pool := &DataPool{}
	today := calendar.Today(s.config.Timezone)
	for i := 1; i <= s.config.DaysAhead; i++ {
		date := today.AddDays(i)
		for _, slot := range slotsByDay[date.Weekday()] {
			pool.Targets = append(pool.Targets, target{SlotID: slot.ID, Date: date, Capacity: slot.Capacity})
		}
	}

	if len(pool.Targets) == 0 {
		return nil, fmt.Errorf("no open slots in the next %d days, run the seed first", s.config.DaysAhead)
	}
	return pool, nil
}

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	s.log.Info("starting simulation")

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}

	wg.Wait()
	s.log.Info("simulation complete")
}

func (s *Simulator) worker(ctx context.Context, workerID int) {
	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), uint64(workerID)))

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		r := rng.Float64()
		switch {
		case r < s.config.BookingRatio:
			s.doBooking(ctx, rng)
		case r < s.config.BookingRatio+s.config.TransitionRatio:
			s.doTransition(ctx, rng)
		default:
			switch rng.IntN(3) {
			case 0:
				s.doOccupancy(ctx, rng)
			case 1:
				s.doReadByID(ctx, rng)
			case 2:
				s.doListByDate(ctx, rng)
			}
		}
	}
}

func (s *Simulator) doBooking(ctx context.Context, rng *rand.Rand) {
	t := s.pool.Targets[rng.IntN(len(s.pool.Targets))]

	body := api.CreateAppointmentRequest{
		TimeSlotID:      t.SlotID.String(),
		AppointmentDate: t.Date,
		Patient: appointment.PatientInfo{
			OwnerName:       gofakeit.Name(),
			ContactNumber:   gofakeit.Numerify("555-###-####"),
			Email:           gofakeit.Email(),
			PetName:         gofakeit.PetName(),
			PetSpecies:      gofakeit.Animal(),
			AppointmentType: "checkup",
		},
	}

	var created api.AppointmentResponse
	start := time.Now()
	status, err := s.sendJSON(ctx, http.MethodPost, "/appointments", body, &created)
	latency := time.Since(start)

	success := err == nil && status == http.StatusCreated
	if success && created.ID != uuid.Nil {
		s.pool.AddAppointment(created.ID)
	}
	s.metrics.Booking.Record(latency, success, status == http.StatusConflict)
}

func (s *Simulator) doTransition(ctx context.Context, rng *rand.Rand) {
	apptID, ok := s.pool.GetRandomAppointment(rng)
	if !ok {
		return
	}

	next := appointment.StatusCompleted
	if rng.IntN(2) == 0 {
		next = appointment.StatusCancelled
	}

	start := time.Now()
	status, err := s.sendJSON(ctx, http.MethodPut, "/appointments/"+apptID.String()+"/status",
		api.UpdateStatusRequest{Status: string(next)}, nil)
	latency := time.Since(start)

	s.metrics.Transition.Record(latency, err == nil && status == http.StatusOK, status == http.StatusConflict)
}

func (s *Simulator) doOccupancy(ctx context.Context, rng *rand.Rand) {
	t := s.pool.Targets[rng.IntN(len(s.pool.Targets))]

	start := time.Now()
	status, err := s.getJSON(ctx, occupancyPath(t), nil)
	s.metrics.Occupancy.Record(time.Since(start), err == nil && status == http.StatusOK, false)
}

func (s *Simulator) doReadByID(ctx context.Context, rng *rand.Rand) {
	apptID, ok := s.pool.GetRandomAppointment(rng)
	if !ok {
		return
	}

	start := time.Now()
	status, err := s.getJSON(ctx, "/appointments/"+apptID.String(), nil)
	s.metrics.ReadByID.Record(time.Since(start), err == nil && status == http.StatusOK, false)
}

func (s *Simulator) doListByDate(ctx context.Context, rng *rand.Rand) {
	t := s.pool.Targets[rng.IntN(len(s.pool.Targets))]

	start := time.Now()
	status, err := s.getJSON(ctx, "/appointments?date="+t.Date.String()+"&status=scheduled", nil)
	s.metrics.ListByDate.Record(time.Since(start), err == nil && status == http.StatusOK, false)
}

// VerifyCapacity reads the occupancy of every target and returns how many
// hold more scheduled appointments than their capacity.
func (s *Simulator) VerifyCapacity(ctx context.Context) int {
	violations := 0
	for _, t := range s.pool.Targets {
		var occ api.OccupancyResponse
		status, err := s.getJSON(ctx, occupancyPath(t), &occ)
		if err != nil || status != http.StatusOK {
			s.log.Warn("occupancy check failed",
				zap.String("slot_id", t.SlotID.String()),
				zap.String("date", t.Date.String()),
				zap.Int("status", status),
				zap.Error(err),
			)
			continue
		}
		if occ.Booked > occ.Capacity {
			violations++
			s.log.Error("slot overbooked",
				zap.String("slot_id", t.SlotID.String()),
				zap.String("date", t.Date.String()),
				zap.Int("booked", occ.Booked),
				zap.Int("capacity", occ.Capacity),
			)
		}
	}
	return violations
}

func occupancyPath(t target) string {
	return "/occupancy/" + t.SlotID.String() + "?date=" + t.Date.String()
}

func (s *Simulator) getJSON(ctx context.Context, path string, out any) (int, error) {
	return s.sendJSON(ctx, http.MethodGet, path, nil, out)
}

// sendJSON performs one request and decodes a 2xx body into out when out is
// non-nil. The status code is returned even when decoding fails.
func (s *Simulator) sendJSON(ctx context.Context, method, path string, in, out any) (int, error) {
	var body *bytes.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return 0, err
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.config.APIBaseURL+path, body)
	if err != nil {
		return 0, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, nil
	}
	return resp.StatusCode, json.NewDecoder(resp.Body).Decode(out)
}

func (s *Simulator) PrintReport() {
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("SIMULATION REPORT")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Duration: %s\n", s.config.Duration)
	fmt.Printf("Workers: %d\n", s.config.Workers)
	fmt.Printf("Targets: %d\n", len(s.pool.Targets))
	fmt.Println()

	printOperationReport("Booking", &s.metrics.Booking)
	printOperationReport("Transition", &s.metrics.Transition)
	printOperationReport("Occupancy", &s.metrics.Occupancy)
	printOperationReport("Read by ID", &s.metrics.ReadByID)
	printOperationReport("List by Date", &s.metrics.ListByDate)
}

func printOperationReport(name string, om *OperationMetrics) {
	total := atomic.LoadInt64(&om.Total)
	if total == 0 {
		return
	}

	success := atomic.LoadInt64(&om.Success)
	conflict := atomic.LoadInt64(&om.Conflict)
	failed := atomic.LoadInt64(&om.Error)

	avg, low, high, p50, p95 := om.Stats()

	fmt.Printf("%s:\n", name)
	fmt.Printf("  Total: %d\n", total)
	fmt.Printf("  Success: %d (%.1f%%)\n", success, float64(success)/float64(total)*100)
	if conflict > 0 {
		fmt.Printf("  Conflicts: %d (%.1f%%)\n", conflict, float64(conflict)/float64(total)*100)
	}
	if failed > 0 {
		fmt.Printf("  Errors: %d (%.1f%%)\n", failed, float64(failed)/float64(total)*100)
	}
	fmt.Printf("  Latency: avg=%s min=%s max=%s p50=%s p95=%s\n",
		avg.Round(time.Millisecond), low.Round(time.Millisecond), high.Round(time.Millisecond),
		p50.Round(time.Millisecond), p95.Round(time.Millisecond))
	fmt.Println()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
