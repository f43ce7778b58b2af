package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/patient-api/internal/config"
	"github.com/jwalitptl/patient-api/internal/repository/postgres"
	"github.com/jwalitptl/patient-api/pkg/logger"
	"github.com/jwalitptl/patient-api/pkg/messaging/redis"
	"github.com/jwalitptl/patient-api/pkg/metrics"
	"github.com/jwalitptl/patient-api/pkg/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	outboxRepo := postgres.NewOutboxRepository(db)

	broker, err := redis.NewRedisBroker(redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	workerLogger := logger.NewLogger(nil).WithFields(map[string]interface{}{
		"component": "outbox-worker",
	})
	m := metrics.NewMetrics("patient_api", "worker")

	processor := worker.NewOutboxProcessor(outboxRepo, broker, worker.OutboxProcessorConfig{
		BatchSize:       cfg.Outbox.BatchSize,
		PollInterval:    cfg.Outbox.PollInterval,
		RetryAttempts:   cfg.Outbox.RetryAttempts,
		RetryDelay:      cfg.Outbox.RetryDelay,
		RetentionPeriod: cfg.Outbox.RetentionPeriod,
		CleanupInterval: cfg.Outbox.CleanupInterval,
	}, workerLogger, m)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go processor.Start(ctx)

	// Liveness and metrics endpoints for orchestration probes and scrapes.
	go func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			fmt.Fprint(w, "ok")
		})
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(":8081", mux); err != nil {
			log.Error().Err(err).Msg("health endpoint stopped")
		}
	}()

	log.Info().Msg("outbox worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker...")
	cancel()
	log.Info().Msg("worker exited properly")
}
