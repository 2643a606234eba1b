package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/airbooking-desk/config"
	"github.com/Domenick1991/airbooking-desk/internal/backend"
	"github.com/Domenick1991/airbooking-desk/internal/bootstrap"
	"github.com/Domenick1991/airbooking-desk/internal/cache"
	"github.com/Domenick1991/airbooking-desk/internal/kafka"
	"github.com/Domenick1991/airbooking-desk/internal/repository"
	"github.com/Domenick1991/airbooking-desk/internal/service/reference"
	"github.com/Domenick1991/airbooking-desk/internal/service/reservation"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logger.Error("connect postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, cfg.Booking.ReferenceCacheTTL())
	defer redisCache.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()
	if err := producer.CheckConnection(ctx); err != nil {
		logger.Warn("kafka unavailable, events will be dropped until it recovers", "error", err)
	}

	client := backend.NewClient(cfg.Backend)
	referenceService := reference.NewReferenceService(client, redisCache, logger)
	reservationService := reservation.NewReservationService(
		redisCache,
		client,
		referenceService,
		cfg.Booking.SessionTTL(),
		cfg.Booking.SubmitLockTTL(),
		reservation.WithEvents(producer, cfg.Kafka.ReservationEventsTopic, cfg.Kafka.NotificationsTopic),
		reservation.WithSubmissionLedger(repository.NewSubmissionRepository(pool)),
		reservation.WithTicketText(cfg.Booking.TicketText),
		reservation.WithPaymentMarkerTTL(cfg.Booking.PaymentMarkerTTL()),
		reservation.WithLogger(logger),
	)

	if err := bootstrap.Run(ctx, cfg, logger, referenceService, reservationService); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
