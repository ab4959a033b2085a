package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	WebhookWorkers int `env:"WEBHOOK_WORKERS, default=4"`

	Mapbox      MapboxConfig
	Marketplace MarketplaceConfig
	Stripe      StripeConfig
	Onfleet     OnfleetConfig
	Mongo       MongoConfig
	Redis       RedisConfig
}

type MapboxConfig struct {
	BaseURL     string `env:"MAPBOX_BASE_URL, default=https://api.mapbox.com"`
	AccessToken string `env:"MAPBOX_ACCESS_TOKEN"`
}

type MarketplaceConfig struct {
	BaseURL string `env:"MARKETPLACE_BASE_URL"`
	// IntegrationToken enables the privileged data-access path. When empty
	// the service degrades to public listing data.
	IntegrationToken string `env:"MARKETPLACE_INTEGRATION_TOKEN"`
}

type StripeConfig struct {
	BaseURL   string `env:"STRIPE_BASE_URL, default=https://api.stripe.com"`
	SecretKey string `env:"STRIPE_SECRET_KEY"`
}

type OnfleetConfig struct {
	BaseURL string `env:"ONFLEET_BASE_URL, default=https://onfleet.com"`
	// APIKey empty means the delivery-task integration is disabled.
	APIKey string `env:"ONFLEET_API_KEY"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=delivery_system"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	return &cfg, nil
}
