package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/skillforge/skillforge-backend/internal/clients/redis"
	"github.com/skillforge/skillforge-backend/internal/data/db"
	"github.com/skillforge/skillforge-backend/internal/data/repos/embeddings"
	"github.com/skillforge/skillforge-backend/internal/data/repos/jobs"
	"github.com/skillforge/skillforge-backend/internal/data/repos/learning"
	"github.com/skillforge/skillforge-backend/internal/data/repos/notifications"
	"github.com/skillforge/skillforge-backend/internal/data/repos/students"
	httpserver "github.com/skillforge/skillforge-backend/internal/http"
	"github.com/skillforge/skillforge-backend/internal/http/handlers"
	"github.com/skillforge/skillforge-backend/internal/http/middleware"
	"github.com/skillforge/skillforge-backend/internal/observability"
	"github.com/skillforge/skillforge-backend/internal/platform/envutil"
	"github.com/skillforge/skillforge-backend/internal/platform/gemini"
	"github.com/skillforge/skillforge-backend/internal/platform/logger"
	"github.com/skillforge/skillforge-backend/internal/services"
)

func main() {
	_ = godotenv.Load()

	// Logger
	logMode := envutil.Str("LOG_MODE", "development")
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Tracing
	ctx := context.Background()
	shutdownOTel := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: envutil.Str("OTEL_SERVICE_NAME", "skillforge-backend"),
		Environment: envutil.Str("APP_ENV", "development"),
		Version:     envutil.Str("APP_VERSION", "dev"),
	})
	defer func() { _ = shutdownOTel(ctx) }()

	// Env
	jwtSecretKey := envutil.Str("JWT_SECRET_KEY", "")
	if jwtSecretKey == "" {
		log.Fatal("JWT_SECRET_KEY is required")
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	thePG := postgresService.DB()
	if err := db.AutoMigrateAll(thePG); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}

	// Repos
	log.Info("Setting up repos...")
	studentRepo := students.NewStudentRepo(thePG, log)
	studentSkillRepo := students.NewStudentSkillRepo(thePG, log)
	jobRepo := jobs.NewJobRepo(thePG, log)
	jobSkillRepo := jobs.NewJobSkillRepo(thePG, log)
	applicationRepo := jobs.NewApplicationRepo(thePG, log)
	courseRepo := learning.NewCourseRepo(thePG, log)
	enrollmentRepo := learning.NewEnrollmentRepo(thePG, log)
	embeddingRepo := embeddings.NewEmbeddingRepo(thePG, log)
	notificationRepo := notifications.NewNotificationRepo(thePG, log)

	// Clients
	embedder, err := gemini.New(log)
	if err != nil {
		log.Fatal("Gemini client init failed", "error", err)
	}
	notificationBus, err := redis.NewNotificationBus(log)
	if err != nil {
		log.Warn("Redis notification bus unavailable, notifications persist only", "error", err)
		notificationBus = nil
	}
	if notificationBus != nil {
		defer func() { _ = notificationBus.Close() }()
		err := notificationBus.StartForwarder(ctx, func(m redis.BusMessage) {
			log.Info("notification delivered", "user_id", m.UserID, "type", m.Type, "title", m.Title)
		})
		if err != nil {
			log.Warn("notification forwarder not started", "error", err)
		}
	}

	// Services
	log.Info("Setting up services...")
	matchingService := services.NewMatchingService(log, jobRepo, jobSkillRepo, studentSkillRepo, embeddingRepo, courseRepo)
	embeddingService := services.NewEmbeddingService(log, embedder, studentRepo, studentSkillRepo, jobRepo, jobSkillRepo, enrollmentRepo, embeddingRepo)
	notifierService := services.NewNotifierService(log, notificationRepo, notificationBus)
	applicationService := services.NewApplicationService(log, jobRepo, applicationRepo, notificationRepo, matchingService, notifierService)

	// Handlers
	studentJobHandler := handlers.NewStudentJobHandler(log, studentRepo, matchingService, applicationService)
	embeddingHandler := handlers.NewEmbeddingHandler(log, studentRepo, embeddingService)
	notificationHandler := handlers.NewNotificationHandler(log, notificationRepo)
	healthHandler := handlers.NewHealthHandler()

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(log, jwtSecretKey)

	// Server
	server := httpserver.NewServer(httpserver.RouterConfig{
		ServiceName:         envutil.Str("OTEL_SERVICE_NAME", "skillforge-backend"),
		AuthMiddleware:      authMiddleware,
		StudentJobHandler:   studentJobHandler,
		EmbeddingHandler:    embeddingHandler,
		NotificationHandler: notificationHandler,
		HealthHandler:       healthHandler,
	})

	address := envutil.Str("HTTP_ADDR", ":8080")
	log.Info("Starting HTTP server", "address", address)
	if err := server.Run(address); err != nil {
		log.Fatal("HTTP server exited", "error", err)
	}
}
