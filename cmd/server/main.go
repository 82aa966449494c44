package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/newsroom-tools/newsletter-backend/internal/config"
	"github.com/newsroom-tools/newsletter-backend/internal/database"
	"github.com/newsroom-tools/newsletter-backend/internal/handlers"
	"github.com/newsroom-tools/newsletter-backend/internal/logging"
	"github.com/newsroom-tools/newsletter-backend/internal/metrics"
	"github.com/newsroom-tools/newsletter-backend/internal/middleware"
	"github.com/newsroom-tools/newsletter-backend/internal/routes"
	"github.com/newsroom-tools/newsletter-backend/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Structured logging (JSON to stdout)
	stdout := logging.Setup(cfg.Debug)

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(database.DB); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// Database log handler (ERROR+ async batch)
	dbLogHandler := logging.NewDBHandler(database.DB, 5*time.Second)
	slog.SetDefault(slog.New(logging.NewMultiHandler(stdout, dbLogHandler)))

	// Log cleanup (30-day retention)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cleanupDone)

	// Services
	perms := services.NewPermissions(database.DB, cfg.SuperAdminEmails)
	authService := services.NewAuthService(database.DB, cfg, perms)

	var generator services.TextGenerator
	if cfg.OpenAIAPIKey != "" {
		generator = services.NewOpenAIClient(cfg.OpenAIAPIURL, cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.AITimeout)
	} else {
		slog.Info("OPENAI_API_KEY not set, AI drafts will be deterministic")
	}
	newsletterService := services.NewNewsletterService(
		database.DB, perms, services.NewRenderer(), services.NewDraftGenerator(generator, cfg.AITimeout),
	)

	// Handlers
	h := routes.Handlers{
		Auth:          handlers.NewAuthHandler(authService),
		Health:        handlers.NewHealthHandler(database.DB, cfg.ProjectName),
		Users:         handlers.NewUserHandler(services.NewUserService(database.DB)),
		Groups:        handlers.NewGroupHandler(services.NewGroupService(database.DB)),
		Newsletters:   handlers.NewNewsletterHandler(newsletterService),
		Contributions: handlers.NewContributionHandler(services.NewContributionService(database.DB, perms)),
		Templates:     handlers.NewTemplateHandler(services.NewTemplateService(database.DB, perms)),
	}

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		AppName:      cfg.ProjectName,
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())
	app.Use(metrics.Middleware())

	routes.Setup(app, cfg, authService, perms, h)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.APIPort, "environment", cfg.Environment)
		if err := app.Listen(":" + cfg.APIPort); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	close(cleanupDone)
	dbLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}
