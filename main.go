// @title           Feedback Backend API
// @version         1.0
// @description     Client feedback collection: public submission form, staff and service lists, admin review and export.
// @BasePath        /api
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/feedbackdesk/feedback-backend/config"
	"github.com/feedbackdesk/feedback-backend/db"
	_ "github.com/feedbackdesk/feedback-backend/docs"
	"github.com/feedbackdesk/feedback-backend/handlers"
	"github.com/feedbackdesk/feedback-backend/internal/storage"
	"github.com/feedbackdesk/feedback-backend/internal/store/postgres"
	"github.com/feedbackdesk/feedback-backend/logger"
	"github.com/feedbackdesk/feedback-backend/router"
	"github.com/feedbackdesk/feedback-backend/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Initialize logger
	logger.InitLogger()
	log := logger.GetLogger()
	defer func() { _ = logger.Close() }()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := db.RunMigrations(cfg.Database.URL()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	pool, err := db.NewPool(context.Background(), &cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Redis backs the roster cache and the rate limiter. Both degrade
	// gracefully, so a failed ping is not fatal.
	redisClient := redis.NewClient(config.ConfigureRedisOptions(&cfg.Redis))
	defer func() { _ = redisClient.Close() }()
	if err := config.TestRedisConnection(redisClient); err != nil {
		log.Warnw("Redis unavailable, continuing without cache", "error", err)
	}

	if err := handlers.RegisterValidators(); err != nil {
		log.Fatalf("Failed to register validators: %v", err)
	}

	// Stores
	feedbackStore := postgres.NewFeedbackStore(pool)
	rosterStore := postgres.NewRosterStore(pool)
	settingsStore := postgres.NewSettingsStore(pool)
	adminStore := postgres.NewAdminStore(pool)

	// Background email delivery
	workerPool := services.NewWorkerPool(cfg.WorkerPool)
	workerPool.Start()
	emailService := services.NewEmailService(&cfg.Email)
	dispatcher := services.NewNotificationDispatcher(emailService, workerPool)

	// Services
	location := cfg.Server.Location()
	rosterService := services.NewRosterService(rosterStore, redisClient, cfg.Roster.CacheTTL(), cfg.DuplicatePolicy)
	settingsService := services.NewSettingsService(settingsStore, rosterService, cfg.Capabilities)
	feedbackService := services.NewFeedbackService(feedbackStore, rosterService, cfg.Capabilities,
		dispatcher, location, prometheus.DefaultRegisterer)
	authService := services.NewAuthService(adminStore, cfg.Auth.JWTSecretKey, cfg.Auth.TokenTTL())
	rateLimitService := services.NewRateLimitService(redisClient)

	healthService := services.NewHealthService(pool, redisClient, cfg.Server.Version).
		WithEmail(emailService.Enabled()).
		WithCapabilities(cfg.Capabilities)

	var exportStorage services.ExportStorage
	if cfg.Export.Enabled {
		s3Storage, err := storage.NewS3Storage(context.Background(), &cfg.Export)
		if err != nil {
			log.Fatalf("Failed to configure export storage: %v", err)
		}
		exportStorage = s3Storage
		healthService.WithExportStorage(s3Storage)
	}
	exportService := services.NewExportService(feedbackService, exportStorage, location)

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 10*time.Second)
	if err := authService.SeedAdmin(seedCtx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		log.Errorw("Failed to seed admin account", "error", err)
	}
	cancelSeed()

	r := router.SetupRouter(router.Dependencies{
		Config:          cfg,
		JWTValidator:    authService,
		RateLimiter:     rateLimitService,
		FeedbackHandler: handlers.NewFeedbackHandler(feedbackService),
		ListsHandler:    handlers.NewListsHandler(rosterService),
		SettingsHandler: handlers.NewSettingsHandler(settingsService),
		AuthHandler:     handlers.NewAuthHandler(authService),
		MailHandler:     handlers.NewMailHandler(dispatcher),
		ExportHandler:   handlers.NewExportHandler(exportService),
		HealthHandler:   handlers.NewHealthHandler(healthService),
		Logger:          log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Infow("Starting server",
			"port", cfg.Server.Port,
			"environment", cfg.Server.Environment,
			"email_enabled", emailService.Enabled(),
			"export_uploads", exportService.UploadsEnabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownTimeout := time.Duration(cfg.WorkerPool.ShutdownTimeoutSeconds) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("Server forced to shutdown", "error", err)
	}
	if err := workerPool.Shutdown(ctx); err != nil {
		log.Warnw("Worker pool did not drain before timeout", "error", err)
	}

	log.Info("Server exited")
}
