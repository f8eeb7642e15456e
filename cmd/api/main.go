package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ghuser/catalog/pkg/app"
	"github.com/ghuser/catalog/pkg/cache"
	"github.com/ghuser/catalog/pkg/config"
	"github.com/ghuser/catalog/pkg/database"
	"github.com/ghuser/catalog/pkg/errhttp"
	"github.com/ghuser/catalog/pkg/events"
	"github.com/ghuser/catalog/pkg/httpx"
	"github.com/ghuser/catalog/pkg/logger"
	"github.com/ghuser/catalog/pkg/telemetry"
	catalogApi "github.com/ghuser/catalog/services/catalog/application/api"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := config.ValidateForProduction(cfg); err != nil {
		slog.Error("production config validation failed", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg)

	// Telemetry: OTel tracing + metrics
	ctx := context.Background()
	otelShutdown, metricsHandler, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelShutdown(ctx) //nolint:errcheck

	// Crash reporting: Sentry (optional, log and continue on failure)
	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	pool, err := database.NewPool(ctx, cfg, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1) //nolint:gocritic // intentional: startup failure, deferred flushes are best-effort
	}
	defer pool.Close()
	log.Info("database pool connected")

	eventBus, err := events.NewEventBus(cfg, log)
	if err != nil {
		log.Error("failed to setup event bus", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer eventBus.Close() //nolint:errcheck

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		// The cache is an accelerator, not a dependency: the API keeps
		// serving from Postgres when Redis is down.
		log.Warn("failed to connect to redis, continuing without cache", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close() //nolint:errcheck
		log.Info("redis connected")
	}

	responder := errhttp.New(log, cfg.Environment)

	appConfig := &app.Application{
		Db:        pool,
		Logger:    log,
		EventBus:  eventBus,
		Redis:     redisClient,
		Responder: responder,
	}

	r := httpx.NewRouter(
		httpx.ServerConfig{
			ServiceName:    cfg.ServiceName,
			IsDevelopment:  cfg.Environment == config.EnvDevelopment,
			IsTesting:      cfg.Environment == config.EnvTesting,
			FrontendOrigin: cfg.FrontendOrigin,
		},
		logger.Middleware(log),
		logger.Recovery(log),
		telemetry.SentryMiddleware(),
		otelhttp.NewMiddleware(cfg.ServiceName),
	)

	var cachePinger httpx.Pinger
	if redisClient != nil {
		cachePinger = redisClient
	}
	r.Get("/health", httpx.HealthHandler(httpx.ServiceInfo{
		Name:        cfg.ServiceName,
		Version:     cfg.ServiceVersion,
		Environment: cfg.Environment,
	}, pool, cachePinger))
	r.Get("/metrics", metricsHandler.ServeHTTP)
	r.Route("/api", func(r chi.Router) {
		r.Use(httpx.RateLimit(
			cfg.RateLimitMax,
			time.Duration(cfg.RateLimitWindow)*time.Minute,
			responder.RateLimitHandler(),
		))
		// Subrouters do not inherit the parent's NotFound handler.
		r.NotFound(responder.NotFoundHandler())
		registerRoutes(r, appConfig)
	})
	r.NotFound(responder.NotFoundHandler())

	srv := httpx.NewServer(":"+cfg.Port, r)

	go func() {
		log.Info("server listening", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

// registerRoutes mounts all service routes under /api.
// Add each new service's route function here.
func registerRoutes(r chi.Router, a *app.Application) {
	catalogApi.ItemRoutes(r, a)
}
