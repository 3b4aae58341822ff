package main

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/example/ec-storefront/internal/config"
	"github.com/example/ec-storefront/internal/infrastructure/kinesis"
	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/logging"
	"github.com/example/ec-storefront/internal/projection"
	"github.com/example/ec-storefront/internal/readmodel"
	"go.uber.org/zap"
)

// eventApplier is the part of projection.Projector the handler needs.
type eventApplier interface {
	Apply(ctx context.Context, event store.Event) error
}

// newHandler projects the inserts of a DynamoDB->Kinesis batch. Records that
// fail are reported back so Lambda retries only those.
func newHandler(projector eventApplier, logger *zap.Logger) func(context.Context, events.KinesisEvent) (events.KinesisEventResponse, error) {
	return func(ctx context.Context, batch events.KinesisEvent) (events.KinesisEventResponse, error) {
		decoded, failures := kinesis.DecodeBatch(batch)
		for _, f := range failures {
			logger.Warn("failed to decode record", zap.String("sequence_number", f.ItemIdentifier))
		}

		for _, d := range decoded {
			if err := projector.Apply(ctx, d.Event); err != nil {
				logger.Error("failed to project event",
					zap.String("event_id", d.Event.ID),
					zap.String("aggregate_id", d.Event.AggregateID),
					zap.Error(err))
				failures = append(failures, events.KinesisBatchItemFailure{ItemIdentifier: d.SequenceNumber})
			}
		}

		logger.Info("batch processed",
			zap.Int("records", len(batch.Records)),
			zap.Int("projected", len(decoded)),
			zap.Int("failed", len(failures)))
		return events.KinesisEventResponse{BatchItemFailures: failures}, nil
	}
}

func main() {
	boot, _ := zap.NewProduction()
	cfg, err := config.Load()
	if err != nil {
		boot.Fatal("failed to load config", zap.Error(err))
	}
	logger, err := logging.Setup(cfg.Log)
	if err != nil {
		boot.Fatal("failed to set up logging", zap.Error(err))
	}
	logger = logger.Named("lambda-projector")

	dsn := cfg.Store.DatabaseURL
	if dsn == "" {
		logger.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	db, err := store.ConnectPostgres(ctx, dsn)
	if err != nil {
		logger.Fatal("failed to connect to PostgreSQL", zap.Error(err))
	}

	readStore := store.NewPostgresReadStore(db)
	readStore.RegisterCollection(readmodel.CollectionCarts, func() any { return &readmodel.CartReadModel{} })
	projector := projection.NewProjector(readStore, cfg.Pricing.Pricing(), logger)

	lambda.Start(newHandler(projector, logger))
}
