package main

import (
	"log"

	"github.com/redis/go-redis/v9"
	"github.com/remedyroot/remedyroot-golang/internal/cart"
	"github.com/remedyroot/remedyroot-golang/internal/catalog"
	"github.com/remedyroot/remedyroot-golang/internal/config"
	"github.com/remedyroot/remedyroot-golang/internal/gateway"
	gwmysql "github.com/remedyroot/remedyroot-golang/internal/gateway/mysql"
	gwrest "github.com/remedyroot/remedyroot-golang/internal/gateway/rest"
	"github.com/remedyroot/remedyroot-golang/internal/handlers"
	"github.com/remedyroot/remedyroot-golang/internal/logger"
	"github.com/remedyroot/remedyroot-golang/internal/payments"
	"github.com/remedyroot/remedyroot-golang/internal/routes"
	"github.com/remedyroot/remedyroot-golang/internal/state"
)

func main() {
	// 1. --- Configuration & Logging ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logg := logger.New(cfg.LogLevel, cfg.LogJSON)

	// 2. --- Remote Data Gateway ---
	// "rest" talks to the hosted row API; "mysql" runs the data service
	// in-process against a local database.
	var gw gateway.Gateway
	switch cfg.GatewayMode {
	case "mysql":
		store, err := gwmysql.Open(cfg.MySQLDSN, logg)
		if err != nil {
			logg.Fatalf("Failed to connect to primary database: %v", err)
		}
		defer store.Close()
		if err := store.Migrate(); err != nil {
			logg.Fatalf("Failed to migrate database schema: %v", err)
		}
		gw = store
	case "rest":
		if cfg.GatewayBaseURL == "" {
			logg.Fatal("GATEWAY_BASE_URL is required in rest mode")
		}
		gw = gwrest.NewClient(cfg.GatewayBaseURL, cfg.GatewayAPIKey, logg)
	default:
		logg.Fatalf("Unknown GATEWAY_MODE %q (want rest or mysql)", cfg.GatewayMode)
	}

	// 3. --- Catalog Read Side (redis-backed listings) ---
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer redisClient.Close()
	catalogSvc := catalog.NewService(gw, catalog.NewRedisCache(redisClient, cfg.CatalogTTL), logg)

	// 4. --- Payments & Per-User State ---
	paymentClient := payments.NewHTTPClient(cfg.PaymentBaseURL)
	states := state.NewRegistry(gw, paymentClient, cfg.MutationTimeout, cfg.CheckoutTimeout, logg)

	// --- Application Setup ---
	app := &handlers.Handlers{
		Gateway: gw,
		Catalog: catalogSvc,
		Syncer:  cart.NewSyncer(gw, logg),
		States:  states,
		Log:     logg,
	}

	// --- Router Setup ---
	router := routes.SetupRouter(app, []byte(cfg.JWTSecret), cfg.AllowedOrigin)

	// --- Start Server ---
	logg.Infof("Starting RemedyRoot API server on port %s...", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		logg.Fatalf("Failed to start server: %v", err)
	}
}
