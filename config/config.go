package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             string
	Env              string
	FrontendURL      string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     string
	PostgresSSLMode  string
	RedisURL         string
	KafkaBrokers     string // comma separated; empty disables the event producer
	OrderEventsTopic string
	S3Bucket         string // empty disables presigned image uploads
	S3Region         string
	JWTSecret        string
	JWTRefreshSecret string
	StripeSecretKey  string // empty selects demo mode
	StripeWebhookKey string
	CurrencyDefault  string
}

// Load reads configuration from the environment. A local .env file is
// honored when present. Stripe keys are optional: without them the
// payment flow runs in demo mode and webhooks are acknowledged unprocessed.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		Env:              getEnv("APP_ENV", "development"),
		FrontendURL:      getEnv("FRONTEND_URL", "http://localhost:3000"),
		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		RedisURL:         getEnv("REDIS_URL", ""),
		KafkaBrokers:     getEnv("KAFKA_BROKERS", ""),
		OrderEventsTopic: getEnv("ORDER_EVENTS_TOPIC", "order-events"),
		S3Bucket:         getEnv("S3_BUCKET", ""),
		S3Region:         getEnv("S3_REGION", "eu-west-2"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		JWTRefreshSecret: os.Getenv("JWT_REFRESH_SECRET"),
		StripeSecretKey:  os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookKey: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		CurrencyDefault:  getEnv("CURRENCY_DEFAULT", "usd"),
	}

	if cfg.PostgresUser == "" || cfg.PostgresDB == "" {
		return nil, fmt.Errorf("missing required environment variables POSTGRES_USER/POSTGRES_DB")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("missing required environment variable JWT_SECRET")
	}
	if cfg.JWTRefreshSecret == "" {
		cfg.JWTRefreshSecret = cfg.JWTSecret
	}

	return cfg, nil
}

// PostgresDSN builds the gorm/postgres connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.PostgresHost, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresPort, c.PostgresSSLMode)
}

// StripeConfigured reports whether live payment credentials are present.
func (c *Config) StripeConfigured() bool {
	return c.StripeSecretKey != ""
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
