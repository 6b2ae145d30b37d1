package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/quickkart/storefront-gateway/api/controllers"
	"github.com/quickkart/storefront-gateway/api/routes"
	"github.com/quickkart/storefront-gateway/internal/cart"
	"github.com/quickkart/storefront-gateway/internal/checkout"
	"github.com/quickkart/storefront-gateway/internal/events"
	"github.com/quickkart/storefront-gateway/internal/orders"
	"github.com/quickkart/storefront-gateway/internal/session"
	"github.com/quickkart/storefront-gateway/internal/upstream"
	"github.com/quickkart/storefront-gateway/pkg/config"
	"github.com/quickkart/storefront-gateway/pkg/logger"
	"github.com/quickkart/storefront-gateway/pkg/metrics"
	"github.com/quickkart/storefront-gateway/pkg/pubsub"
	"github.com/quickkart/storefront-gateway/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront-gateway"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront-gateway",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx := context.Background()

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}

	upstreamClient, err := upstream.NewClient(cfg.Upstream)
	if err != nil {
		logg.Error(ctx, "failed to build upstream client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	gatewayMetrics := metrics.NewGatewayMetrics(registry)

	var pubsubClient *pubsub.Client
	var publisher *events.Publisher
	if cfg.EventingEnabled() {
		pubsubClient, err = pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap pubsub", err)
			os.Exit(1)
		}
		publisher = events.NewPublisher(pubsubClient.OrdersPublisher(), logg)
	} else {
		logg.Info(ctx, "eventing disabled, no gcp project configured")
	}

	build := func(tokens session.TokenSource) (*session.Engine, error) {
		api := upstreamClient.SessionClient(tokens)
		submitter, err := checkout.NewSubmitter(api, gatewayMetrics)
		if err != nil {
			return nil, err
		}
		pager, err := orders.NewPager(api, cfg.History.PageSize, gatewayMetrics)
		if err != nil {
			return nil, err
		}
		return &session.Engine{
			Cart:      cart.NewStore(),
			Catalog:   api,
			Submitter: submitter,
			Pager:     pager,
		}, nil
	}

	sessions, err := session.NewManager(redisClient, redisClient, cfg.JWT.SessionTTL(), build)
	if err != nil {
		logg.Error(ctx, "failed to create session manager", err)
		os.Exit(1)
	}

	health := controllers.NewHealthController(logg)
	health.Register("redis", redisClient)
	if pubsubClient != nil {
		health.Register("pubsub", pubsubClient)
	}

	router, err := routes.NewRouter(routes.Dependencies{
		Config:   cfg,
		Logger:   logg,
		Metrics:  gatewayMetrics,
		Gatherer: registry,
		Upstream: upstreamClient,
		Sessions: sessions,
		Events:   publisher,
		Redis:    redisClient,
		Health:   health,
	})
	if err != nil {
		logg.Error(ctx, "failed to build router", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	runCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(runCtx, "starting gateway")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(runCtx, "gateway stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-signalCtx.Done():
		logg.Info(runCtx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	var closeErr error
	closeErr = multierr.Append(closeErr, server.Shutdown(shutdownCtx))
	closeErr = multierr.Append(closeErr, redisClient.Close())
	if pubsubClient != nil {
		closeErr = multierr.Append(closeErr, pubsubClient.Close())
	}
	if closeErr != nil {
		logg.Error(runCtx, "shutdown finished with errors", closeErr)
		os.Exit(1)
	}
	logg.Info(runCtx, "gateway stopped")
}
