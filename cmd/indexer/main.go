package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/The-Social-Proof-Foundation/mys-social-indexer/internal/chain"
	"github.com/The-Social-Proof-Foundation/mys-social-indexer/internal/config"
	"github.com/The-Social-Proof-Foundation/mys-social-indexer/internal/database"
	"github.com/The-Social-Proof-Foundation/mys-social-indexer/internal/events"
	"github.com/The-Social-Proof-Foundation/mys-social-indexer/internal/handlers"
	"github.com/The-Social-Proof-Foundation/mys-social-indexer/internal/logging"
	"github.com/The-Social-Proof-Foundation/mys-social-indexer/internal/middleware"
	"github.com/The-Social-Proof-Foundation/mys-social-indexer/internal/projectors"
	"github.com/The-Social-Proof-Foundation/mys-social-indexer/internal/routes"
	"github.com/The-Social-Proof-Foundation/mys-social-indexer/internal/services"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

const (
	workerProfile     = "profile"
	workerPlatform    = "platform"
	workerSocialGraph = "social_graph"
	workerBlocking    = "blocking"
)

func main() {
	cfg := config.Load()

	// Structured logging (JSON to stdout)
	logging.Setup(cfg.LogLevel)

	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		slog.NewJSONHandler(os.Stdout, nil),
		pgLogHandler,
	)))

	// Log cleanup (30-day retention)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cleanupDone)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Projection pipeline
	router := events.NewRouter(cfg.PackageAddress)
	progress := projectors.NewProgressTracker(database.DB)

	listener := chain.NewListener(cfg.RPCWebsocketURL, cfg.RPCHTTPURL, cfg.PollInterval, cfg.EventBatchSize)
	listener.SetResumePoint(progress.ResumePoint(
		workerProfile, workerPlatform, workerSocialGraph, workerBlocking,
	))

	consumers := []*projectors.Consumer{
		projectors.NewConsumer(workerProfile, router,
			projectors.NewProfileProjector(database.DB), progress,
			listener.Register(workerProfile)),
		projectors.NewConsumer(workerPlatform, router,
			projectors.NewPlatformProjector(database.DB), progress,
			listener.Register(workerPlatform)),
		projectors.NewConsumer(workerSocialGraph, router,
			projectors.NewSocialGraphProjector(database.DB), progress,
			listener.Register(workerSocialGraph)),
		projectors.NewConsumer(workerBlocking, router,
			projectors.NewBlockingProjector(database.DB), progress,
			listener.Register(workerBlocking)),
	}

	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	for _, c := range consumers {
		wg.Add(1)
		go func(c *projectors.Consumer) {
			defer wg.Done()
			c.Run(ctx)
		}(c)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		listener.Run(ctx)
	}()

	// Counter reconciliation sweep
	reconciler := projectors.NewReconciler(database.DB, cfg.ReconcileCron, cfg.ReconcileWorkers)
	if err := reconciler.Start(); err != nil {
		slog.Error("reconciler start failed", "error", err)
		os.Exit(1)
	}

	// Read-only query API
	profileService := services.NewProfileService(database.DB)
	platformService := services.NewPlatformService(database.DB)

	healthHandler := handlers.NewHealthHandler()
	profileHandler := handlers.NewProfileHandler(profileService)
	platformHandler := handlers.NewPlatformHandler(platformService)

	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))

	routes.Setup(app, healthHandler, profileHandler, platformHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(cfg.Host + ":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down...")

	cancel()
	wg.Wait()
	reconciler.Stop()

	close(cleanupDone)
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("shutdown complete")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}
