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

	"github.com/jwalitptl/patient-api/internal/billing"
	"github.com/jwalitptl/patient-api/internal/config"
	"github.com/jwalitptl/patient-api/internal/handler"
	authHandler "github.com/jwalitptl/patient-api/internal/handler/auth"
	patientHandler "github.com/jwalitptl/patient-api/internal/handler/patient"
	prometheusHandler "github.com/jwalitptl/patient-api/internal/handler/prometheus"
	"github.com/jwalitptl/patient-api/internal/middleware"
	"github.com/jwalitptl/patient-api/internal/repository/postgres"
	"github.com/jwalitptl/patient-api/internal/router"
	authService "github.com/jwalitptl/patient-api/internal/service/auth"
	eventService "github.com/jwalitptl/patient-api/internal/service/event"
	patientService "github.com/jwalitptl/patient-api/internal/service/patient"
	"github.com/jwalitptl/patient-api/pkg/auth"
	"github.com/jwalitptl/patient-api/pkg/metrics"
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

	patientRepo := postgres.NewPatientRepository(db)
	userRepo := postgres.NewUserRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	tokenSvc, err := auth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize token service")
	}

	m := metrics.NewMetrics("patient_api", "api")

	billingClient, err := billing.NewClient(billing.Config{
		Host:    cfg.Billing.Host,
		Port:    cfg.Billing.Port,
		Timeout: time.Duration(cfg.Billing.TimeoutSeconds) * time.Second,
	}, m)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize billing client")
	}
	defer billingClient.Close()

	eventSvc := eventService.NewService(outboxRepo)
	patientSvc := patientService.NewService(patientRepo, billingClient, eventSvc)
	authSvc := authService.NewService(userRepo, tokenSvc)

	authMiddleware := middleware.NewAuthMiddleware(authSvc)

	h := handler.NewHandler()
	authH := authHandler.NewHandler(authSvc)
	patientH := patientHandler.NewHandler(patientSvc)
	promH := prometheusHandler.New()

	r := router.NewRouter(authMiddleware, authH, patientH, h, promH, router.Config{
		RateLimit: rate.Limit(cfg.RateLimit.RequestsPerSecond),
		RateBurst: cfg.RateLimit.Burst,
	})
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
