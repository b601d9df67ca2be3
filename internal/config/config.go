package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all environment-driven settings for the server. Defaults
// target local development; production deployments set every value.
type Config struct {
	Addr        string
	GinMode     string
	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret string

	OpenRouterAPIKey  string
	OpenRouterBaseURL string
	OpenRouterModel   string
	GenerationTimeout time.Duration
}

// Load reads configuration from the environment. godotenv is expected to
// have been loaded by the caller before this runs.
func Load() Config {
	return Config{
		Addr:        ":" + getEnvOrDefault("PORT", "5000"),
		GinMode:     getEnvOrDefault("GIN_MODE", "debug"),
		DatabaseURL: databaseURL(),

		RedisAddr: fmt.Sprintf("%s:%s",
			getEnvOrDefault("REDIS_HOST", "localhost"),
			getEnvOrDefault("REDIS_PORT", "6379")),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getIntOrDefault("REDIS_DB", 0),

		JWTSecret: getEnvOrDefault("JWT_SECRET", "dev-secret-change-me"),

		OpenRouterAPIKey:  os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterBaseURL: getEnvOrDefault("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		OpenRouterModel:   getEnvOrDefault("OPENROUTER_MODEL", "meta-llama/llama-3.2-3b-instruct:free"),
		GenerationTimeout: getDurationOrDefault("GENERATION_TIMEOUT", 12*time.Second),
	}
}

// databaseURL prefers DATABASE_URL and otherwise composes a URL from the
// individual POSTGRES_* variables for local development.
func databaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		getEnvOrDefault("POSTGRES_USER", "postgres"),
		getEnvOrDefault("POSTGRES_PASSWORD", ""),
		getEnvOrDefault("POSTGRES_HOST", "localhost"),
		getEnvOrDefault("POSTGRES_PORT", "5432"),
		getEnvOrDefault("POSTGRES_DB", "beaverbuddy"),
		getEnvOrDefault("POSTGRES_SSLMODE", "disable"))
}

// IsProduction reports whether the server runs in release mode. Error
// detail is withheld from responses when true.
func (c Config) IsProduction() bool {
	return c.GinMode == "release"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
