package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/ec-storefront/internal/api"
	"github.com/example/ec-storefront/internal/api/middleware"
	"github.com/example/ec-storefront/internal/app"
	"github.com/example/ec-storefront/internal/command"
	"github.com/example/ec-storefront/internal/config"
	"github.com/example/ec-storefront/internal/infrastructure/kafka"
	"github.com/example/ec-storefront/internal/logging"
	"github.com/example/ec-storefront/internal/query"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

func main() {
	boot, _ := zap.NewDevelopment()
	cfg, err := config.Load()
	if err == nil {
		err = cfg.RequireJWT()
	}
	if err != nil {
		boot.Fatal("failed to load config", zap.Error(err))
	}
	logger, err := logging.Setup(cfg.Log)
	if err != nil {
		boot.Fatal("failed to set up logging", zap.Error(err))
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("api stopped", zap.Error(err))
	}
	logger.Info("api stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	a.Catalog.Start(ctx)

	if cfg.Store.Rebuild && !cfg.Kafka.Enabled() {
		if _, err := a.Projector.Rebuild(ctx, a.EventStore); err != nil {
			return err
		}
	}

	limiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst)
	sweeper, err := app.NewSweeper(cfg.Session.SweepSchedule, cfg.Session.IdleTTL, logger,
		a.Registry, app.SweepFunc(limiter.Sweep))
	if err != nil {
		return err
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	handlers := api.NewHandlers(
		command.NewHandler(a.Catalog, a.Registry),
		query.NewHandler(a.Catalog, a.Registry, a.ReadStore, logger),
		a.JWT,
		cfg.Catalog.PriceCeiling,
		logger,
	)
	var limiterOpt *middleware.RateLimiter
	if cfg.RateLimit.RequestsPerSecond > 0 {
		limiterOpt = limiter
	}
	server := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: api.NewRouter(api.RouterConfig{
			Handlers:    handlers,
			JWTService:  a.JWT,
			RateLimiter: limiterOpt,
			Logger:      logger,
		}),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server listening", zap.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		sweeper.Start()
		<-ctx.Done()
		<-sweeper.Stop().Done()
		return nil
	})

	// With Kafka in front of the read models, this process projects its own
	// events under a dedicated group so admin reads stay current.
	if cfg.Kafka.Enabled() {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID+"-api", logger)
		g.Go(func() error {
			defer consumer.Close()
			if err := consumer.Consume(ctx, a.Projector.HandleEvent); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		})
	}

	start := time.Now()
	g.Go(func() error {
		select {
		case <-a.Catalog.Done():
			logger.Info("catalog ready", zap.Duration("after", time.Since(start)), zap.Int("products", a.Catalog.Status().Count))
		case <-ctx.Done():
		}
		return nil
	})

	return g.Wait()
}
