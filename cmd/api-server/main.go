package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/hackgods/vetclinic-scheduling/internal/api"
	"github.com/hackgods/vetclinic-scheduling/internal/appointment"
	"github.com/hackgods/vetclinic-scheduling/internal/availability"
	"github.com/hackgods/vetclinic-scheduling/internal/config"
	"github.com/hackgods/vetclinic-scheduling/internal/db"
	"github.com/hackgods/vetclinic-scheduling/internal/events"
	"github.com/hackgods/vetclinic-scheduling/internal/lock"
	"github.com/hackgods/vetclinic-scheduling/internal/observability/metrics"
	redisclient "github.com/hackgods/vetclinic-scheduling/internal/redis"
	"github.com/hackgods/vetclinic-scheduling/pkg/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "api-server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load error: %w", err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	log.Info("api-server starting up",
		zap.String("env", cfg.Env),
		zap.String("http_port", cfg.HTTPPort),
		zap.String("store", cfg.Store),
		zap.String("lock_backend", cfg.LockBackend),
		zap.String("version", version),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		checks     []api.HealthCheck
		availRepo  availability.Repository
		apptRepo   appointment.Repository
		doctors    appointment.DoctorDirectory
		recorder   events.Recorder
		lockerImpl lock.Locker
	)

	switch cfg.Store {
	case config.StorePostgres:
		pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
		pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN, db.PoolOptions{})
		cancelPg()
		if err != nil {
			return fmt.Errorf("postgres connection error: %w", err)
		}
		defer pgPool.Close()
		log.Info("connected to Postgres")

		availRepo = availability.NewPgRepository(pgPool)
		apptRepo = appointment.NewPgRepository(pgPool)
		doctors = appointment.NewPgDoctorDirectory(pgPool)
		recorder = events.NewPgRecorder(pgPool)
		checks = append(checks, api.HealthCheck{Name: "postgres", Critical: true, Ping: pgPool.Ping})
	default:
		log.Warn("using in-memory store, data is lost on restart")
		availRepo = availability.NewMemoryRepository()
		apptRepo = appointment.NewMemoryRepository()
		doctors = appointment.NewMemoryDoctorDirectory()
		recorder = events.NewMemoryRecorder()
	}

	switch cfg.LockBackend {
	case config.LockRedis:
		rdb, err := redisclient.NewRedisClient(rootCtx, cfg.RedisAddr, redisclient.ClientOptions{
			Username:     cfg.RedisUsername,
			Password:     cfg.RedisPassword,
			PoolSize:     cfg.RedisPoolSize,
			MinIdleConns: cfg.RedisMinIdle,
			IOTimeout:    cfg.RedisTimeout,
		})
		if err != nil {
			return fmt.Errorf("redis connection error: %w", err)
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Warn("error closing redis", zap.Error(err))
			}
		}()
		log.Info("connected to Redis", zap.String("addr", cfg.RedisAddr))

		lockerImpl = redisclient.NewRedisLocker(rdb, cfg.LockTTL, cfg.LockWait)
		checks = append(checks, api.HealthCheck{
			Name:     "redis",
			Critical: true,
			Ping:     func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
	default:
		log.Warn("using in-process locks, run a single instance only")
		lockerImpl = lock.NewLocalLocker(cfg.LockWait)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	bookingMetrics := metrics.NewBookingMetrics(reg)

	catalog := availability.NewService(availRepo, lockerImpl, availability.Options{
		Events:      recorder,
		Metrics:     bookingMetrics,
		Logger:      log,
		ReadRetries: cfg.ReadRetries,
		ReadBackoff: cfg.ReadBackoff,
	})
	appointments := appointment.NewService(apptRepo, catalog, lockerImpl, appointment.Options{
		Validator:   appointment.NewFieldValidator(),
		Doctors:     doctors,
		Events:      recorder,
		Metrics:     bookingMetrics,
		Logger:      log,
		ReadRetries: cfg.ReadRetries,
		ReadBackoff: cfg.ReadBackoff,
	})

	limiter := api.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.RunEviction(rootCtx, 5*time.Minute, 10*time.Minute)

	router := api.NewRouter(api.RouterConfig{
		Availability: catalog,
		Appointments: appointments,
		Health:       api.NewHealthHandler(checks, cfg.Env, version),
		Gatherer:     reg,
		RateLimiter:  limiter,
		Logger:       log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-rootCtx.Done():
	}

	log.Info("shutting down api-server", zap.Duration("timeout", cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	log.Info("api-server stopped")
	return nil
}
