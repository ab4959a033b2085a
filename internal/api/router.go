package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/farmfed/delivery-system/internal/api/handler"
	"github.com/farmfed/delivery-system/internal/core/ports"
	"github.com/farmfed/delivery-system/internal/infrastructure/queue"
)

// Dependencies carries everything the router needs, built in main.
type Dependencies struct {
	Estimation ports.EstimationService
	Geofence   ports.GeofenceService
	Settings   ports.SettingsService
	Checkout   ports.CheckoutService
	Tasks      ports.DeliveryTaskService
	Cart       ports.CartStore
	Runs       ports.CheckoutRunRepository
	Dispatcher *queue.Dispatcher

	Mongo  *mongo.Database
	Redis  *redis.Client
	Logger zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("delivery"))

	// --- Handlers ---
	estimateHandler := handler.NewEstimateHandler(deps.Estimation)
	geofenceHandler := handler.NewGeofenceHandler(deps.Geofence)
	settingsHandler := handler.NewSettingsHandler(deps.Settings)
	cartHandler := handler.NewCartHandler(deps.Cart)
	checkoutHandler := handler.NewCheckoutHandler(deps.Checkout, deps.Runs)
	taskHandler := handler.NewDeliveryTaskHandler(deps.Tasks)
	webhookHandler := handler.NewWebhookHandler(deps.Dispatcher, deps.Logger)

	// --- Quotes and geofence ---
	v1 := e.Group("/v1")
	v1.POST("/delivery/estimate", estimateHandler.Estimate)
	v1.POST("/geofence/validate", geofenceHandler.Validate)

	// --- Admin settings ---
	v1.GET("/admin/delivery-settings", settingsHandler.GetDeliverySettings)
	v1.PUT("/admin/delivery-settings", settingsHandler.UpdateDeliverySettings)
	v1.GET("/admin/geofence-settings", settingsHandler.GetGeofenceSettings)
	v1.PUT("/admin/geofence-settings", settingsHandler.UpdateGeofenceSettings)

	// --- Cart and checkout ---
	v1.GET("/cart", cartHandler.GetCart)
	v1.PUT("/cart", cartHandler.SaveCart)
	v1.POST("/checkout", checkoutHandler.Checkout)
	v1.GET("/checkout/runs", checkoutHandler.ListRuns)

	// --- Delivery tasks and provider webhook ---
	v1.POST("/delivery/tasks", taskHandler.CreateTask)
	v1.GET("/webhooks/delivery", webhookHandler.Verify)
	v1.POST("/webhooks/delivery", webhookHandler.Receive)

	// --- Health probes and metrics ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
