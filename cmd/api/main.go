package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/mwarren02/storefront-api/internal/auth"
	"github.com/mwarren02/storefront-api/internal/config"
	"github.com/mwarren02/storefront-api/internal/database"
	"github.com/mwarren02/storefront-api/internal/handlers"
	"github.com/mwarren02/storefront-api/internal/routes"
	"github.com/mwarren02/storefront-api/internal/service"
	"github.com/mwarren02/storefront-api/internal/store/mysql"
	"github.com/mwarren02/storefront-api/internal/stripe"
)

func main() {
	// 1. Load the .env file if present. In production the variables come
	// from the environment directly, so a missing file is only a notice.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading configuration from environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}

	// 2. Structured logger for everything past startup.
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("FATAL: could not create logger: %v", err)
	}
	defer logger.Sync()

	// 3. Database pool and schema.
	db, err := database.OpenDB(cfg.DSN)
	if err != nil {
		logger.Fatal("could not connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.Fatal("could not run migrations", zap.Error(err))
	}
	logger.Info("database ready")

	// 4. Wire the store, services and handlers.
	st := mysql.New(db)
	tokens := auth.NewTokenManager(cfg.JWTSecret)

	var processorOpts []stripe.Option
	if cfg.StripeBaseURL != "" {
		processorOpts = append(processorOpts, stripe.WithBaseURL(cfg.StripeBaseURL))
	}
	processor := stripe.NewClient(cfg.StripeAPIKey, processorOpts...)

	h := &handlers.Handlers{
		Auth:          service.NewAuthService(st, tokens, logger),
		Catalog:       service.NewCatalogService(st, logger),
		Cart:          service.NewCartService(st, logger),
		Orders:        service.NewOrderService(st, logger),
		Payments:      service.NewPaymentService(st, processor, cfg.Currency, logger),
		WebhookSecret: cfg.StripeWebhookSecret,
		Logger:        logger,
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// 5. Build the router and serve.
	router := routes.SetupRouter(h, tokens, reg)
	logger.Info("starting server", zap.String("addr", cfg.Addr))
	if err := router.Run(cfg.Addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
