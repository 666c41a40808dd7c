package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mentorias-app/slots-service/internal/app"
	"github.com/mentorias-app/slots-service/internal/config"
	"github.com/mentorias-app/slots-service/internal/httpapi"
	"github.com/mentorias-app/slots-service/internal/notify"
	"github.com/mentorias-app/slots-service/internal/payment"
	"github.com/mentorias-app/slots-service/internal/repository"
	"github.com/mentorias-app/slots-service/internal/service"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	logger.Info("Starting slots service",
		zap.String("environment", cfg.Environment),
		zap.String("http_addr", cfg.HTTPAddr),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create database pool", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Failed to reach database", zap.Error(err))
	}

	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath, logger)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	_ = migrator.Close()

	var publisher notify.Publisher = notify.NopPublisher{}
	if cfg.NATSURL != "" {
		natsPublisher, err := notify.NewNATSPublisher(cfg.NATSURL)
		if err != nil {
			logger.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		defer natsPublisher.Close()
		publisher = natsPublisher
	} else {
		logger.Warn("NATS_URL not set, notification events are dropped")
	}

	slotRepo := repository.NewSlotRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	mentorRepo := repository.NewMentorRepository(pool)

	gateway := payment.NewClient(cfg.PaymentBaseURL)

	availability := service.NewAvailabilityService(slotRepo, logger)
	reservations := service.NewReservationService(slotRepo, publisher, logger)
	bookings := service.NewBookingService(slotRepo, sessionRepo, gateway, publisher, cfg.AllowedEmailDomain, logger)
	mentors := service.NewMentorService(mentorRepo, logger)

	sweeper := app.NewSweeper(reservations, cfg.SweepInterval, logger)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	api := httpapi.NewAPI(availability, reservations, bookings, mentors, cfg.JWTSecret, logger)
	api.RegisterRoutes()

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	logger.Info("Slots service is ready")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
	}
}
