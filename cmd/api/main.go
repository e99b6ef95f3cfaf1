package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/caretrip/coordination-api/internal/config"
	"github.com/caretrip/coordination-api/internal/email"
	"github.com/caretrip/coordination-api/internal/handler"
	auditHandler "github.com/caretrip/coordination-api/internal/handler/audit"
	authHandler "github.com/caretrip/coordination-api/internal/handler/auth"
	directoryHandler "github.com/caretrip/coordination-api/internal/handler/directory"
	rbacHandler "github.com/caretrip/coordination-api/internal/handler/rbac"
	referenceHandler "github.com/caretrip/coordination-api/internal/handler/reference"
	"github.com/caretrip/coordination-api/internal/middleware"
	"github.com/caretrip/coordination-api/internal/repository/postgres"
	"github.com/caretrip/coordination-api/internal/router"
	auditService "github.com/caretrip/coordination-api/internal/service/audit"
	authService "github.com/caretrip/coordination-api/internal/service/auth"
	directoryService "github.com/caretrip/coordination-api/internal/service/directory"
	jwtauth "github.com/caretrip/coordination-api/pkg/auth"
	"github.com/caretrip/coordination-api/pkg/logger"
	"github.com/caretrip/coordination-api/pkg/messaging/redis"
	"github.com/caretrip/coordination-api/pkg/metrics"
	"github.com/caretrip/coordination-api/pkg/security"
	"github.com/caretrip/coordination-api/pkg/validator"
	"github.com/caretrip/coordination-api/pkg/worker"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	if err := validator.RegisterCustomValidations(); err != nil {
		log.Fatal().Err(err).Msg("failed to register validations")
	}

	// Initialize database
	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	appMetrics := metrics.NewMetrics("coordination_api")

	// Initialize repositories
	base := postgres.NewBaseRepository(db)
	profileRepo := postgres.NewProfileRepository(base)
	auditRepo := postgres.NewAuditRepository(base)
	outboxRepo := postgres.NewOutboxRepository(base)

	// Initialize services
	auditSvc := auditService.NewService(auditRepo)
	emailSvc := email.NewService(cfg.Email)
	jwtSvc := jwtauth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	hasher := security.NewBcryptHasher(0)
	authSvc := authService.NewService(profileRepo, jwtSvc, hasher, auditSvc, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	directorySvc := directoryService.NewService(profileRepo, outboxRepo, auditSvc, emailSvc, appLogger, appMetrics)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(authSvc)

	// Initialize handlers
	h := handler.NewHandler(db)
	authH := authHandler.NewHandler(authSvc)
	directoryH := directoryHandler.NewHandler(directorySvc)
	rbacH := rbacHandler.NewHandler()
	referenceH := referenceHandler.NewHandler()
	auditH := auditHandler.NewHandler(auditSvc)

	// Setup router
	r := router.NewRouter(
		authMiddleware,
		authH,
		directoryH,
		rbacH,
		referenceH,
		auditH,
		h,
		router.Config{
			RateLimit:     rate.Limit(cfg.Server.RateLimitRPS),
			RateBurst:     cfg.Server.RateLimitBurst,
			CORSConfig:    middleware.DefaultCORSConfig(),
			MetricsPrefix: "coordination_api_http",
		},
	)
	r.Setup()

	// Create server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	// Initialize Redis message broker
	broker, err := redis.NewRedisBroker(cfg.ToBrokerConfig(), &appLogger.ZL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}

	// Start outbox processor alongside the API so directory events flow
	// even without a dedicated worker deployment.
	processorCtx, stopProcessor := context.WithCancel(context.Background())
	defer stopProcessor()
	outboxProcessor := worker.NewOutboxProcessor(outboxRepo, broker, cfg.Outbox.ToWorkerConfig(), appLogger, appMetrics)
	go outboxProcessor.Start(processorCtx)

	// Start server
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	stopProcessor()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
