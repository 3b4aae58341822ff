package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/ec-storefront/internal/app"
	"github.com/example/ec-storefront/internal/config"
	"github.com/example/ec-storefront/internal/infrastructure/kafka"
	"github.com/example/ec-storefront/internal/logging"
	"go.uber.org/zap"
)

// The projector consumes cart events from Kafka into the read store.
func main() {
	boot, _ := zap.NewDevelopment()
	cfg, err := config.Load()
	if err != nil {
		boot.Fatal("failed to load config", zap.Error(err))
	}
	logger, err := logging.Setup(cfg.Log)
	if err != nil {
		boot.Fatal("failed to set up logging", zap.Error(err))
	}
	logger = logger.Named("projector")
	defer func() { _ = logger.Sync() }()

	if !cfg.Kafka.Enabled() {
		logger.Fatal("KAFKA_BROKERS is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to start", zap.Error(err))
	}
	defer a.Close()

	if cfg.Store.Rebuild {
		n, err := a.Projector.Rebuild(ctx, a.EventStore)
		if err != nil {
			logger.Fatal("rebuild failed", zap.Error(err))
		}
		logger.Info("replayed event store", zap.Int("events", n))
	}

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID, logger)
	defer consumer.Close()

	logger.Info("consuming",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("topic", cfg.Kafka.Topic),
		zap.String("group", cfg.Kafka.GroupID))
	if err := consumer.Consume(ctx, a.Projector.HandleEvent); err != nil && ctx.Err() == nil {
		logger.Error("consumer stopped", zap.Error(err))
	}
	logger.Info("shutting down")
}
