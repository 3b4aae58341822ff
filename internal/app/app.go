// Package app wires configuration into the stores, catalog and session
// registry shared by the binaries.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/example/ec-storefront/internal/auth"
	"github.com/example/ec-storefront/internal/catalog"
	"github.com/example/ec-storefront/internal/config"
	"github.com/example/ec-storefront/internal/infrastructure/kafka"
	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/projection"
	"github.com/example/ec-storefront/internal/readmodel"
	"github.com/example/ec-storefront/internal/session"
	"go.uber.org/zap"
)

type App struct {
	Config     *config.Config
	Logger     *zap.Logger
	DB         *sql.DB
	EventStore store.EventStoreInterface
	ReadStore  store.ReadStoreInterface
	Projector  *projection.Projector
	Catalog    *catalog.Service
	Registry   *session.Registry
	JWT        *auth.JWTService

	closers []func() error
}

// New connects the configured backends. Events are published to Kafka when
// brokers are configured and projected in-process otherwise. The dynamo
// backend publishes nothing itself; its table stream feeds the Lambda
// projector.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	if cfg.Store.DatabaseURL != "" {
		db, err := store.ConnectPostgres(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.DB = db
		a.closers = append(a.closers, db.Close)
		if err := store.Migrate(ctx, db); err != nil {
			a.Close()
			return nil, err
		}
	}

	a.ReadStore = a.newReadStore()
	a.Projector = projection.NewProjector(a.ReadStore, cfg.Pricing.Pricing(), logger)

	var publisher store.Publisher = projection.NewLocalPublisher(a.Projector)
	if cfg.Kafka.Enabled() {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		a.closers = append(a.closers, producer.Close)
		publisher = producer
	}

	eventStore, err := a.newEventStore(ctx, publisher)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.EventStore = eventStore

	provider, err := a.newCatalogProvider()
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Catalog = catalog.NewService(provider, logger)

	a.Registry = session.NewRegistry(a.EventStore, session.Options{
		Pricing:      cfg.Pricing.Pricing(),
		PriceCeiling: cfg.Catalog.PriceCeiling,
		Logger:       logger,
	})
	a.JWT = auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.SessionTTL, cfg.JWT.AdminTTL)

	logger.Info("storefront wired",
		zap.String("event_store", cfg.Store.Backend),
		zap.Bool("kafka", cfg.Kafka.Enabled()),
		zap.String("catalog", cfg.Catalog.Source))
	return a, nil
}

func (a *App) newReadStore() store.ReadStoreInterface {
	if a.Config.Store.Backend != "postgres" {
		return store.NewReadStore()
	}
	rs := store.NewPostgresReadStore(a.DB)
	rs.RegisterCollection(readmodel.CollectionCarts, func() any { return &readmodel.CartReadModel{} })
	return rs
}

func (a *App) newEventStore(ctx context.Context, publisher store.Publisher) (store.EventStoreInterface, error) {
	switch a.Config.Store.Backend {
	case "postgres":
		return store.NewPostgresEventStore(a.DB, publisher, a.Logger), nil
	case "dynamo":
		client, err := NewDynamoClient(ctx, a.Config.Dynamo)
		if err != nil {
			return nil, err
		}
		return store.NewDynamoEventStore(client, store.DynamoTables{
			Events:    a.Config.Dynamo.EventsTable,
			Snapshots: a.Config.Dynamo.SnapshotsTable,
			Retention: a.Config.Dynamo.Retention,
		}), nil
	default:
		return store.NewEventStore(publisher, a.Logger), nil
	}
}

func (a *App) newCatalogProvider() (catalog.Provider, error) {
	cfg := a.Config.Catalog
	switch cfg.Source {
	case "yaml":
		products, err := catalog.LoadSeedFile(cfg.SeedFile)
		if err != nil {
			return nil, err
		}
		return catalog.NewStaticProvider(products, cfg.FetchDelay), nil
	case "postgres":
		if a.DB == nil {
			return nil, errors.New("postgres catalog needs DATABASE_URL")
		}
		return catalog.NewPostgresProvider(a.DB), nil
	default:
		return catalog.NewStaticProvider(catalog.DefaultProducts(), cfg.FetchDelay), nil
	}
}

// NewDynamoClient builds a client from the default AWS credential chain.
// Endpoint overrides the service URL, e.g. for DynamoDB Local.
func NewDynamoClient(ctx context.Context, cfg config.DynamoConfig) (*dynamodb.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

// Close releases connections in reverse order of opening.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Logger.Warn("close failed", zap.Error(err))
		}
	}
	a.closers = nil
}
