package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Port        string
	Env         string
	DatabaseURL string // Postgres room store; empty selects SQLite
	SQLitePath  string
	RedisURL    string // message store + pub/sub bus; empty selects in-memory
	NatsURL     string // optional NATS bus, preferred over Redis pub/sub when set

	// AuthTokens maps bearer tokens to user identifiers for the static
	// identity provider (token:user pairs, comma separated).
	AuthTokens map[string]string
}

// Load reads configuration from environment variables.
// In development, it loads from .env file if present.
// In production, it panics on missing required variables.
func Load() *Config {
	// Load .env file if it exists (for development)
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		SQLitePath:  os.Getenv("SQLITE_PATH"),
		RedisURL:    os.Getenv("REDIS_URL"),
		NatsURL:     os.Getenv("NATS_URL"),
		AuthTokens:  make(map[string]string),
	}

	// Parse token table (comma-separated token:user pairs)
	if tokens := os.Getenv("AUTH_TOKENS"); tokens != "" {
		for _, entry := range strings.Split(tokens, ",") {
			entry = strings.TrimSpace(entry)
			token, user, ok := strings.Cut(entry, ":")
			if ok && token != "" && user != "" {
				cfg.AuthTokens[token] = user
			}
		}
	}

	// In production, require a durable message store
	if cfg.Env == "production" {
		if cfg.RedisURL == "" {
			panic("REDIS_URL is required in production")
		}
	}

	return cfg
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
