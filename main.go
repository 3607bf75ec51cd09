package main

import (
	"context"
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

	"github.com/research-hub/submission-service/internal/config"
	"github.com/research-hub/submission-service/internal/events"
	"github.com/research-hub/submission-service/internal/handlers"
	"github.com/research-hub/submission-service/internal/ratelimit"
	"github.com/research-hub/submission-service/internal/repositories/postgres"
	"github.com/research-hub/submission-service/internal/services"
	"github.com/research-hub/submission-service/internal/sessions"
	"github.com/research-hub/submission-service/internal/storage"
	"github.com/research-hub/submission-service/internal/utils"
	"github.com/research-hub/submission-service/internal/validator"
	"github.com/research-hub/submission-service/pkg"
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
			log.Fatalf("Failed to initialize Redis: %v", err)
		}
	}
	if redisClient == nil {
		log.Fatalf("REDIS_URL is required: sessions and sign-in throttling live in Redis")
	}

	// Initialize repositories
	repoManager := postgres.NewRepositoryManager(&postgres.RepositoryConfig{
		DB:          db,
		RedisClient: redisClient,
	})
	if err := repoManager.Initialize(context.Background()); err != nil {
		log.Fatalf("Failed to initialize repositories: %v", err)
	}

	// Initialize validator with the shared index allowlist
	allowlist := cfg.Allowlist()
	v := validator.New(allowlist)

	// Sessions and sign-in throttle
	sessionStore := sessions.NewRedisStore(redisClient, cfg.SessionTTL)
	signInLimiter := ratelimit.NewLimiter(redisClient, "signin:", cfg.SignInRateLimit, cfg.SignInRateWindow)

	// Upload storage, served statically at /uploads
	uploads := storage.NewUploadStore(cfg.UploadDir, "/uploads")
	if err := uploads.Ensure(); err != nil {
		log.Fatalf("Failed to prepare upload directory: %v", err)
	}

	// Lifecycle event publisher: Kafka when brokers are configured
	var publisher events.EventPublisher = events.NewNoopPublisher()
	if len(cfg.KafkaBrokers) > 0 {
		publisher, err = events.NewKafkaPublisher(cfg.KafkaBrokers, slogLogger)
		if err != nil {
			log.Fatalf("Failed to initialize Kafka publisher: %v", err)
		}
	}

	// Initialize services
	serviceManager := services.NewServiceManager(db, repoManager.GetRepository(), slogLogger, v, services.ServiceManagerConfig{
		SessionStore:   sessionStore,
		Uploads:        uploads,
		Publisher:      publisher,
		AdminSecretKey: cfg.AdminSecretKey,
	})
	if err := serviceManager.Initialize(context.Background()); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	// Initialize handlers
	authMiddleware := handlers.NewSessionAuthMiddleware(sessionStore, repoManager.GetRepository().User(), allowlist)
	cookieOpts := sessions.CookieOptions{
		MaxAge: int(cfg.SessionTTL.Seconds()),
		Secure: cfg.IsProduction(),
	}
	handlerManager := handlers.NewHandlerManager(serviceManager, logger, authMiddleware, signInLimiter, cookieOpts)

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Setup middleware
	handlers.SetupMiddleware(router, logger, cfg)

	// Setup routes
	handlerManager.SetupRoutes(router, uploads.Dir())

	// Create HTTP server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	// Shutdown services (closes the event publisher)
	if err := serviceManager.Shutdown(ctx); err != nil {
		log.Printf("Failed to shutdown services: %v", err)
	}

	// Shutdown repositories and close the database connection
	if err := repoManager.Shutdown(); err != nil {
		log.Printf("Failed to shutdown repositories: %v", err)
	}

	// Close Redis connection
	if err := redisClient.Close(); err != nil {
		log.Printf("Failed to close Redis: %v", err)
	}

	logger.Info("Server exited")
}
