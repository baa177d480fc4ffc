// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"os"
)

type Config struct {
	// Addr is the listen address for the HTTP server, e.g. ":8080".
	Addr string

	// DSN is the MySQL data source name. parseTime=true is required so
	// DATETIME columns scan into time.Time.
	DSN string

	// JWTSecret signs the HS256 bearer tokens.
	JWTSecret string

	// Stripe-side settings. WebhookSecret is the endpoint signing secret
	// used to verify inbound event signatures.
	StripeAPIKey        string
	StripeWebhookSecret string
	StripeBaseURL       string

	// Currency is the three-letter code passed on payment intents.
	Currency string
}

// Load reads configuration from environment variables. Secrets have no
// fallbacks: a missing one is a startup error, not a silent default.
func Load() (Config, error) {
	cfg := Config{
		Addr:                getEnv("ADDR", ":8080"),
		DSN:                 os.Getenv("DB_DSN"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		StripeAPIKey:        os.Getenv("STRIPE_API_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		StripeBaseURL:       os.Getenv("STRIPE_BASE_URL"),
		Currency:            getEnv("PAYMENT_CURRENCY", "usd"),
	}

	if cfg.DSN == "" {
		return cfg, fmt.Errorf("config: DB_DSN is not set")
	}
	if cfg.JWTSecret == "" {
		return cfg, fmt.Errorf("config: JWT_SECRET is not set")
	}
	if cfg.StripeAPIKey == "" {
		return cfg, fmt.Errorf("config: STRIPE_API_KEY is not set")
	}
	if cfg.StripeWebhookSecret == "" {
		return cfg, fmt.Errorf("config: STRIPE_WEBHOOK_SECRET is not set")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
