package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/takei-shg/word-anki/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg := config.Load()

	assert.Equal(t, "127.0.0.1:8090", cfg.Addr)
	assert.Equal(t, "file:wordanki.db", cfg.DBPath)
	assert.Equal(t, "http://localhost:3000", cfg.BackendURL)
	assert.Equal(t, 3, cfg.MaxSyncRetries)
	assert.Equal(t, 7, cfg.CleanupRetentionDays)
	assert.True(t, cfg.SessionShuffle)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ADDR", ":9999")
	t.Setenv("MAX_SYNC_RETRIES", "5")
	t.Setenv("SESSION_SHUFFLE", "false")

	cfg := config.Load()

	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, 5, cfg.MaxSyncRetries)
	assert.False(t, cfg.SessionShuffle)
}

func TestLoadInvalidIntFallsBack(t *testing.T) {
	t.Setenv("MAX_SYNC_RETRIES", "not-a-number")

	cfg := config.Load()

	assert.Equal(t, 3, cfg.MaxSyncRetries)
}
