package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/farmfed/delivery-system/internal/api"
	"github.com/farmfed/delivery-system/internal/core/service"
	"github.com/farmfed/delivery-system/internal/infrastructure/config"
	mongodb "github.com/farmfed/delivery-system/internal/infrastructure/db/mongo"
	redisdb "github.com/farmfed/delivery-system/internal/infrastructure/db/redis"
	"github.com/farmfed/delivery-system/internal/infrastructure/delivery"
	"github.com/farmfed/delivery-system/internal/infrastructure/geocode"
	"github.com/farmfed/delivery-system/internal/infrastructure/marketplace"
	"github.com/farmfed/delivery-system/internal/infrastructure/payment"
	"github.com/farmfed/delivery-system/internal/infrastructure/queue"
	"github.com/farmfed/delivery-system/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		panic(err)
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})
	log.Info().Str("env", cfg.Env).Str("port", cfg.Port).Msg("starting delivery system")

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		_ = mongoClient.Disconnect(context.Background())
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() {
		_ = rdb.Close()
	}()

	runRepo := mongodb.NewCheckoutRepository(db)
	if err := runRepo.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("could not ensure mongo indexes")
	}
	settingsStore := redisdb.NewSettingsStore(rdb)
	cartStore := redisdb.NewCartStore(rdb)

	// --- External collaborators ---
	geocoder := geocode.NewMapboxClient(cfg.Mapbox.BaseURL, cfg.Mapbox.AccessToken, log)
	marketplaceClient := marketplace.NewClient(cfg.Marketplace.BaseURL, cfg.Marketplace.IntegrationToken, log)
	paymentClient := payment.NewStripeClient(cfg.Stripe.BaseURL, cfg.Stripe.SecretKey, log)
	deliveryProvider := delivery.NewOnfleetClient(cfg.Onfleet.BaseURL, cfg.Onfleet.APIKey, log)
	if !deliveryProvider.Configured() {
		log.Warn().Msg("delivery provider not configured, task creation disabled")
	}

	// --- Core services ---
	resolver := service.NewAddressResolver(geocoder, log)
	estimator := service.NewRouteCostEstimator(log)
	estimation := service.NewEstimationService(marketplaceClient, settingsStore, geocoder, resolver, estimator, log)
	geofence := service.NewGeofenceService(settingsStore, geocoder, log)
	settings := service.NewSettingsService(settingsStore, marketplaceClient, log)
	checkout := service.NewCheckoutService(marketplaceClient, paymentClient, deliveryProvider, cartStore, estimation, runRepo, log)
	tasks := service.NewDeliveryTaskService(marketplaceClient, deliveryProvider, log)
	webhooks := service.NewWebhookService(marketplaceClient, runRepo, log)

	dispatcher := queue.NewDispatcher(cfg.WebhookWorkers, webhooks, log)
	dispatcher.Start(ctx)

	e := api.NewRouter(api.Dependencies{
		Estimation: estimation,
		Geofence:   geofence,
		Settings:   settings,
		Checkout:   checkout,
		Tasks:      tasks,
		Cart:       cartStore,
		Runs:       runRepo,
		Dispatcher: dispatcher,
		Mongo:      db,
		Redis:      rdb,
		Logger:     log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown did not complete cleanly")
	}
}
