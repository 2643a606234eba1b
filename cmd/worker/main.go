package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/airbooking-desk/config"
	"github.com/Domenick1991/airbooking-desk/internal/backend"
	"github.com/Domenick1991/airbooking-desk/internal/cache"
	"github.com/Domenick1991/airbooking-desk/internal/email"
	"github.com/Domenick1991/airbooking-desk/internal/kafka"
	"github.com/Domenick1991/airbooking-desk/internal/repository"
	"github.com/Domenick1991/airbooking-desk/internal/service/notification"
	"github.com/Domenick1991/airbooking-desk/internal/service/reference"
	"github.com/Domenick1991/airbooking-desk/internal/service/reservation"
	"github.com/Domenick1991/airbooking-desk/internal/storage"
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

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()
	redisCache := cache.NewRedisCache(cfg.Redis, cfg.Booking.ReferenceCacheTTL())
	defer redisCache.Close()

	client := backend.NewClient(cfg.Backend)
	reservationService := reservation.NewReservationService(
		redisCache,
		client,
		reference.NewReferenceService(client, redisCache, logger),
		cfg.Booking.SessionTTL(),
		cfg.Booking.SubmitLockTTL(),
		reservation.WithEvents(producer, cfg.Kafka.ReservationEventsTopic, cfg.Kafka.NotificationsTopic),
		reservation.WithSubmissionLedger(repository.NewSubmissionRepository(pool)),
		reservation.WithLogger(logger),
	)

	notifyOpts := []notification.NotificationServiceOption{
		notification.WithTicketText(cfg.Booking.TicketText),
		notification.WithLogger(logger),
	}
	if cfg.Storage.Bucket != "" {
		archive, err := storage.NewS3Archive(ctx, cfg.Storage)
		if err != nil {
			logger.Warn("ticket archive disabled", "error", err)
		} else {
			notifyOpts = append(notifyOpts, notification.WithArchive(archive))
		}
	}
	notifier := notification.NewNotificationService(email.NewSender(cfg.SMTP), notifyOpts...)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	go func() {
		if err := consumer.Consume(ctx, kafka.EventHandler(notifier.HandleEvent)); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("consumer stopped", "error", err)
		}
	}()

	staleAfter := time.Duration(cfg.Worker.StaleSubmissionMinutes) * time.Minute
	sweepTicker := time.NewTicker(time.Duration(cfg.Worker.SweepIntervalMinutes) * time.Minute)
	defer sweepTicker.Stop()

	for {
		select {
		case <-sweepTicker.C:
			stale, err := reservationService.FailStaleSubmissions(ctx, staleAfter)
			if err != nil {
				logger.Error("sweep stale submissions", "error", err)
				continue
			}
			if len(stale) > 0 {
				logger.Info("failed stale submissions", "count", len(stale))
			}
		case <-ctx.Done():
			logger.Info("shutting down")
			return
		}
	}
}
