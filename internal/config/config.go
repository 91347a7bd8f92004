package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr                 string
	DBPath               string
	BackendURL           string
	LogLevel             string
	SyncWorkerCount      int
	SyncQueueSize        int
	MaxSyncRetries       int
	CleanupRetentionDays int
	DrainIntervalMinutes int
	SessionShuffle       bool
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:                 envOr("ADDR", "127.0.0.1:8090"),
		DBPath:               envOr("DB_PATH", "file:wordanki.db"),
		BackendURL:           envOr("BACKEND_URL", "http://localhost:3000"),
		LogLevel:             envOr("LOG_LEVEL", "INFO"),
		SyncWorkerCount:      envIntOr("SYNC_WORKER_COUNT", 1),
		SyncQueueSize:        envIntOr("SYNC_QUEUE_SIZE", 32),
		MaxSyncRetries:       envIntOr("MAX_SYNC_RETRIES", 3),
		CleanupRetentionDays: envIntOr("CLEANUP_RETENTION_DAYS", 7),
		DrainIntervalMinutes: envIntOr("DRAIN_INTERVAL_MINUTES", 15),
		SessionShuffle:       envBoolOr("SESSION_SHUFFLE", true),
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envBoolOr(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Printf("invalid value for %s=%q, using default %v", key, v, def)
	}
	return def
}
