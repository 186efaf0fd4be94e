package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/SAP-F-2025/student-service/internal/auth"
	"github.com/SAP-F-2025/student-service/internal/cache"
	"github.com/SAP-F-2025/student-service/internal/config"
	"github.com/SAP-F-2025/student-service/internal/events"
	"github.com/SAP-F-2025/student-service/internal/handlers"
	"github.com/SAP-F-2025/student-service/internal/jobs"
	"github.com/SAP-F-2025/student-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/student-service/internal/services"
	"github.com/SAP-F-2025/student-service/internal/utils"
	"github.com/SAP-F-2025/student-service/internal/validator"
	"github.com/SAP-F-2025/student-service/pkg"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	slogLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(slogLogger)
	logger := utils.NewSlogLogger(slogLogger)

	// Initialize database
	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize Redis (if configured)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Redis unavailable, caching disabled", "error", err)
			redisClient = nil
		}
	}

	// Initialize repositories
	repoManager := postgres.NewRepositoryManager(postgres.RepositoryConfig{
		DB:          db,
		RedisClient: redisClient,
	})
	if err := repoManager.Initialize(); err != nil {
		log.Fatalf("Failed to initialize repositories: %v", err)
	}
	repo := repoManager.GetRepository()

	tokens, err := auth.NewTokenService(cfg.JWT.Secret, cfg.JWT.AccessTokenTTL)
	if err != nil {
		log.Fatalf("Failed to initialize token service: %v", err)
	}

	// Event bus and the audit subscriber that turns events into system logs
	bus, err := events.NewBus(cfg.Event, slogLogger)
	if err != nil {
		log.Fatalf("Failed to initialize event bus: %v", err)
	}
	subscriberCtx, stopSubscriber := context.WithCancel(context.Background())
	audit := events.NewAuditSubscriber(bus, repo.SystemLog(), slogLogger)
	if err := audit.Start(subscriberCtx); err != nil {
		log.Fatalf("Failed to start audit subscriber: %v", err)
	}

	// Initialize services
	deps := services.Dependencies{
		Tokens: tokens,
		Cache:  cache.NewCacheManager(redisClient),
		Events: bus,
		AI:     cfg.AI,
	}
	var serviceManager services.ServiceManager
	if cfg.Environment == config.EnvDevelopment {
		serviceManager = services.CreateDevelopmentServiceManager(db, repo, slogLogger, validator.New(), deps)
	} else {
		serviceManager = services.NewDefaultServiceManager(db, repo, slogLogger, validator.New(), deps)
	}
	if err := serviceManager.Initialize(context.Background()); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	if err := serviceManager.Auth().EnsureAdmin(context.Background(), cfg.Admin); err != nil {
		log.Fatalf("Failed to bootstrap admin: %v", err)
	}

	// Background jobs
	scheduler := jobs.NewScheduler(slogLogger)
	retention := jobs.NewLogRetentionJob(repo.SystemLog(), cfg.LogRetentionDays, slogLogger)
	if err := scheduler.AddLogRetention(jobs.DefaultRetentionSchedule, retention); err != nil {
		log.Fatalf("Failed to schedule log retention: %v", err)
	}
	scheduler.Start()

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handlers.SetupMiddleware(router, logger, cfg.CORSOrigins)
	handlers.NewHandlerManager(serviceManager, logger).SetupRoutes(router)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Closing the bus ends the subscriber's stream
	if err := serviceManager.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown services", "error", err)
	}
	stopSubscriber()
	select {
	case <-audit.Done():
	case <-ctx.Done():
		logger.Warn("Audit subscriber did not drain before timeout")
	}

	scheduler.Stop(ctx)

	// Closes the database pool and the redis client
	if err := repoManager.Shutdown(ctx); err != nil {
		logger.Error("Failed to close connections", "error", err)
	}

	logger.Info("Server exited")
}
