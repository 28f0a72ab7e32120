package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every knob the API server reads from the environment.
// Values come from the process environment, optionally seeded from a .env
// file during local development.
type Config struct {
	Port          string `envconfig:"PORT" default:"8080"`
	AllowedOrigin string `envconfig:"CORS_ALLOWED_ORIGIN" default:"http://localhost:5173"`
	LogLevel      string `envconfig:"LOG_LEVEL" default:"info"`
	LogJSON       bool   `envconfig:"LOG_JSON" default:"false"`

	// JWTSecret verifies session bearer tokens issued by the auth service.
	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	// GatewayMode selects the Remote Data Gateway implementation:
	// "rest" talks to the hosted row API, "mysql" runs against a local MySQL.
	GatewayMode    string `envconfig:"GATEWAY_MODE" default:"rest"`
	GatewayBaseURL string `envconfig:"GATEWAY_BASE_URL"`
	GatewayAPIKey  string `envconfig:"GATEWAY_API_KEY"`
	MySQLDSN       string `envconfig:"DB_DSN_PRIMARY"`

	PaymentBaseURL string `envconfig:"PAYMENT_BASE_URL"`

	RedisAddr     string        `envconfig:"REDIS_ADDR"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	CatalogTTL    time.Duration `envconfig:"CATALOG_CACHE_TTL" default:"5m"`

	// MutationTimeout bounds every optimistic remote call so a hung request
	// cannot leave an entity pending forever.
	MutationTimeout time.Duration `envconfig:"MUTATION_TIMEOUT" default:"10s"`
	CheckoutTimeout time.Duration `envconfig:"CHECKOUT_TIMEOUT" default:"30s"`
}

// Load reads the .env file (if present) and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: Could not find or load .env file. Relying on system environment variables.")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
