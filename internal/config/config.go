package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the process reads from the environment.
type Config struct {
	DBDSN              string
	Environment        string
	HTTPAddr           string
	NATSURL            string
	JWTSecret          string
	PaymentBaseURL     string
	AllowedEmailDomain string
	MigrationsPath     string
	SweepInterval      time.Duration
}

// Load reads configuration from .env (when present) and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		DBDSN:              os.Getenv("DB_DSN"),
		Environment:        getEnv("ENV", "development"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		NATSURL:            os.Getenv("NATS_URL"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		PaymentBaseURL:     os.Getenv("PAYMENT_BASE_URL"),
		AllowedEmailDomain: getEnv("ALLOWED_EMAIL_DOMAIN", "frre.utn.edu.ar"),
		MigrationsPath:     getEnv("MIGRATIONS_PATH", "migrations"),
		SweepInterval:      time.Minute,
	}

	if interval := os.Getenv("SWEEP_INTERVAL"); interval != "" {
		parsed, err := time.ParseDuration(interval)
		if err != nil {
			return nil, fmt.Errorf("parse SWEEP_INTERVAL: %w", err)
		}
		cfg.SweepInterval = parsed
	}

	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}
	if cfg.PaymentBaseURL == "" {
		return nil, fmt.Errorf("PAYMENT_BASE_URL is required but not set")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
