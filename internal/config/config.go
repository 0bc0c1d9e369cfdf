// Package config loads service configuration from the environment and an optional .env file.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Storage. Empty URLs select the in-memory repositories.
	DatabaseURL string
	RedisURL    string

	// MultiSafepay
	MSPAPIKey      string
	MSPEnvironment string
	MSPTimeout     time.Duration

	// Payment token
	TokenSecret string

	// Shop
	ShopRootURL string

	// CORS
	AllowedOrigins []string

	// Observability
	LogLevel   string
	OtelStdout bool
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}
	return FromEnv()
}

// FromEnv reads the configuration without touching .env files.
func FromEnv() *Config {
	return &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),

		MSPAPIKey:      getEnv("MSP_API_KEY", ""),
		MSPEnvironment: strings.ToLower(getEnv("MSP_ENVIRONMENT", "test")),
		MSPTimeout:     parseDuration(getEnv("MSP_TIMEOUT", "30s"), 30*time.Second),

		TokenSecret: getEnv("TOKEN_SECRET", "change-me-payment-token-secret"),

		ShopRootURL: strings.TrimRight(getEnv("SHOP_ROOT_URL", "http://localhost:8000"), "/"),

		AllowedOrigins: parseStringSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:8000")),

		LogLevel:   getEnv("LOG_LEVEL", "info"),
		OtelStdout: parseBool(getEnv("OTEL_STDOUT", "false"), false),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func parseDuration(s string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultValue
	}
	return d
}

func parseBool(s string, defaultValue bool) bool {
	value, err := strconv.ParseBool(s)
	if err != nil {
		return defaultValue
	}
	return value
}

func parseStringSlice(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "dev"
}

// UsesPostgres reports whether platform storage is backed by PostgreSQL.
func (c *Config) UsesPostgres() bool {
	return c.DatabaseURL != ""
}
