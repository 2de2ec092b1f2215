package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hackgods/vetclinic-scheduling/pkg/logger"
)

type RouterConfig struct {
	Availability AvailabilityService
	Appointments AppointmentService
	Health       *HealthHandler
	// Gatherer backs /metrics; nil leaves the route out.
	Gatherer prometheus.Gatherer
	// RateLimiter guards the mutating routes; nil disables limiting.
	RateLimiter *RateLimiter
	Logger      *zap.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply middleware
	r.Use(RequestIDMiddleware)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware(logger.OrNop(cfg.Logger).Named("http")))
	r.Use(middleware.Recoverer)

	// Health endpoints
	health := cfg.Health
	if health == nil {
		health = NewHealthHandler(nil, "", "")
	}
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	// Reads
	r.Get("/availability", getAvailabilityHandler(cfg.Availability))
	r.Get("/slots/{key}", listSlotsHandler(cfg.Availability))
	r.Get("/occupancy/{slotID}", occupancyHandler(cfg.Appointments))
	r.Get("/appointments", listAppointmentsHandler(cfg.Appointments))
	r.Get("/appointments/{id}", getAppointmentHandler(cfg.Appointments))

	// Writes
	r.Group(func(r chi.Router) {
		if cfg.RateLimiter != nil {
			r.Use(cfg.RateLimiter.Middleware)
		}

		r.Put("/availability/{key}", setAvailabilityHandler(cfg.Availability))
		r.Put("/slots/{key}", replaceSlotsHandler(cfg.Availability))
		r.Delete("/slots/{key}", deleteSlotHandler(cfg.Availability))

		r.Post("/appointments", createAppointmentHandler(cfg.Appointments))
		r.Put("/appointments/{id}/status", updateStatusHandler(cfg.Appointments))
		r.Put("/appointments/{id}/doctor", assignDoctorHandler(cfg.Appointments))
	})

	return r
}
