package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Environment
	Environment string

	// Database
	DatabaseURL      string
	PostgresDB       string
	PostgresUser     string
	PostgresPassword string
	PostgresHost     string
	PostgresPort     string

	// Redis
	RedisURL      string
	RedisPassword string

	// Server
	Port string

	// Authentication
	JWTSecret string

	// Game defaults
	SmallBlind      int64
	BigBlind        int64
	StartingChips   int64
	MaxHands        int
	DecisionTimeout time.Duration
}

func Load() *Config {
	return &Config{
		// Environment
		Environment: getEnvOrDefault("ENVIRONMENT", "development"),

		// Database
		DatabaseURL:      getEnvOrDefault("DATABASE_URL", ""),
		PostgresDB:       getEnvOrDefault("POSTGRES_DB", "holdem_arena"),
		PostgresUser:     getEnvOrDefault("POSTGRES_USER", "arena_user"),
		PostgresPassword: getEnvOrDefault("POSTGRES_PASSWORD", "arena_password"),
		PostgresHost:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnvOrDefault("POSTGRES_PORT", "5432"),

		// Redis
		RedisURL:      getEnvOrDefault("REDIS_URL", "redis://localhost:6379"),
		RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),

		// Server
		Port: getEnvOrDefault("PORT", "8080"),

		// Authentication
		JWTSecret: getEnvOrDefault("JWT_SECRET", "holdem-arena-secret-key-change-in-production"),

		// Game defaults
		SmallBlind:      getEnvInt64OrDefault("SMALL_BLIND", 10),
		BigBlind:        getEnvInt64OrDefault("BIG_BLIND", 20),
		StartingChips:   getEnvInt64OrDefault("STARTING_CHIPS", 1000),
		MaxHands:        int(getEnvInt64OrDefault("MAX_HANDS", 100)),
		DecisionTimeout: getEnvDurationOrDefault("DECISION_TIMEOUT", 10*time.Second),
	}
}

func (c *Config) GetDatabaseURL() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.PostgresUser,
		c.PostgresPassword,
		c.PostgresHost,
		c.PostgresPort,
		c.PostgresDB,
	)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
