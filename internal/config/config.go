package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort        string
	DBDriver          string
	DatabaseDSN       string
	ResetDB           bool
	SeedOnStart       bool
	RedisAddr         string
	RedisDB           int
	RedisPass         string
	NATSURL           string
	JWTSecret         string
	SwaggerHost       string
	LogLevel          string
	ReconcileSchedule string
	StalePendingAfter time.Duration
}

// Load builds Config from environment with sensible defaults.
// A .env file in the working directory is applied first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		DBDriver:          getEnv("DB_DRIVER", "mysql"),
		DatabaseDSN:       getEnv("DATABASE_DSN", "user:password@tcp(localhost:3306)/stayledger?charset=utf8mb4&parseTime=True&loc=Local"),
		ResetDB:           getEnvBool("RESET_DB", false),
		SeedOnStart:       getEnvBool("SEED_ON_START", true),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:           getEnvInt("REDIS_DB", 0),
		RedisPass:         os.Getenv("REDIS_PASSWORD"),
		NATSURL:           os.Getenv("NATS_URL"),
		JWTSecret:         getEnv("JWT_SECRET", "change-me"),
		SwaggerHost:       os.Getenv("SWAGGER_HOST"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		ReconcileSchedule: getEnv("RECONCILE_SCHEDULE", "@every 5m"),
		StalePendingAfter: getEnvDuration("STALE_PENDING_AFTER", 15*time.Minute),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}
