package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"kayit/internal/backend"
	"kayit/internal/location"
	"kayit/internal/onboarding"
	"kayit/internal/platform/config"
	"kayit/internal/platform/httpserver"
	"kayit/internal/platform/logger"
	"kayit/internal/platform/metrics"
	"kayit/internal/platform/redis"
	ratelimit "kayit/internal/ratelimit/middleware"
	"kayit/internal/ratelimit/models"
	"kayit/internal/ratelimit/store/bucket"
	"kayit/internal/session"
	httptransport "kayit/internal/transport/http"
	"kayit/internal/ttlcache"
	"kayit/pkg/platform/circuit"
)

// main wires the gateway's dependencies, exposes the HTTP router, and keeps
// the server lifecycle small. Business logic lives in the internal packages.
func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New(prometheus.DefaultRegisterer)

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		log.Error("redis unavailable", "error", err)
		os.Exit(1)
	}
	var store ttlcache.Store
	checks := map[string]httptransport.HealthCheck{}
	if redisClient != nil {
		defer redisClient.Close()
		store = ttlcache.NewStore(redisClient.Client, ttlcache.WithLogger(log), ttlcache.WithMetrics(m))
		checks["redis"] = redisClient.Health
	} else {
		store = ttlcache.NewStore(nil, ttlcache.WithLogger(log), ttlcache.WithMetrics(m))
	}

	breaker := circuit.New("backend",
		circuit.WithFailureThreshold(cfg.Backend.FailureThreshold),
		circuit.WithCooldown(cfg.Backend.Cooldown),
	)
	erp, err := backend.New(cfg.Backend.BaseURL, cfg.Backend.Timeout,
		backend.WithBreaker(breaker),
		backend.WithMetrics(m),
		backend.WithLogger(log),
	)
	if err != nil {
		log.Error("backend client", "error", err)
		os.Exit(1)
	}
	checks["backend"] = func(context.Context) error {
		if breaker.IsOpen() {
			return errors.New("circuit open")
		}
		return nil
	}

	sessions := session.NewManager(erp, store,
		session.WithWindow(cfg.Session.Window),
		session.WithLogger(log),
		session.WithMetrics(m),
	)
	locations := location.NewResolver(erp, store,
		location.WithCacheTTL(cfg.Location.CacheTTL),
		location.WithLogger(log),
		location.WithMetrics(m),
	)
	orchestrator := onboarding.NewOrchestrator(erp,
		onboarding.WithLogger(log),
		onboarding.WithMetrics(m),
	)

	buckets := bucket.NewInMemoryBucketStore()
	buckets.StartSweeper(ctx, cfg.RateLimit.Window)
	limiter := ratelimit.New(buckets, log,
		ratelimit.WithDisabled(!cfg.RateLimit.Enabled),
		ratelimit.WithMetrics(m),
	)
	perIP := limiter.RateLimit(models.Policy{
		Class:  "onboarding",
		Limit:  cfg.RateLimit.Requests,
		Window: cfg.RateLimit.Window,
	})

	router := httptransport.NewRouter(log,
		httptransport.NewOnboardingHandler(sessions, locations, orchestrator, log,
			cfg.Server.RequestTimeout, cfg.Session.TickInterval,
			httptransport.WithRateLimit(perIP),
		),
		httptransport.NewOpsHandler(checks, prometheus.DefaultGatherer, log),
	)
	srv := httpserver.New(cfg.Server.Addr, router)

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting kayit gateway", "addr", cfg.Server.Addr, "backend", cfg.Backend.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		log.Error("server error", "error", err)
		os.Exit(1)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
