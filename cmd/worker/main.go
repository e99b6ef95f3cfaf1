package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/caretrip/coordination-api/internal/config"
	"github.com/caretrip/coordination-api/internal/repository/postgres"
	"github.com/caretrip/coordination-api/pkg/logger"
	"github.com/caretrip/coordination-api/pkg/messaging/redis"
	"github.com/caretrip/coordination-api/pkg/metrics"
	"github.com/caretrip/coordination-api/pkg/worker"
)

func setupHealthCheck(port int, db *sqlx.DB, logger *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(fmt.Sprintf(":%d", port), mux); err != nil {
			logger.ZL.Error().Err(err).Msg("Health check server failed")
			os.Exit(1)
		}
	}()
}

func main() {
	// Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	env, err := config.LoadWorkerEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load worker env")
	}

	// Initialize logger
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	logger := &logger.Logger{ZL: log.Logger}

	// Initialize database
	dbURL := env.DatabaseURL
	if dbURL == "" {
		dbURL = fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Database.Host,
			cfg.Database.Port,
			cfg.Database.User,
			cfg.Database.Password,
			cfg.Database.Name,
			cfg.Database.SSLMode,
		)
	}
	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		logger.ZL.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Initialize Redis broker
	brokerCfg := cfg.ToBrokerConfig()
	if env.RedisURL != "" {
		brokerCfg.URL = env.RedisURL
	}
	broker, err := redis.NewRedisBroker(brokerCfg, &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Redis broker")
	}
	defer broker.Close()

	// Initialize repositories
	baseRepo := postgres.NewBaseRepository(db)
	outboxRepo := postgres.NewOutboxRepository(baseRepo)

	// Initialize outbox processor
	processor := worker.NewOutboxProcessor(
		outboxRepo,
		broker,
		cfg.Outbox.ToWorkerConfig(),
		logger,
		metrics.NewMetrics("outbox_processor"),
	)

	// Setup health check endpoints
	setupHealthCheck(env.MetricsPort, db, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.ZL.Info().Msg("Shutting down...")
		cancel()
	}()

	processor.Start(ctx)
}
