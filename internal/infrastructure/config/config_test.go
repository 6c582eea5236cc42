package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/securebank-ledger/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.DatabaseURL)
	assert.Equal(t, config.StoragePostgres, cfg.StorageDriver)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, int32(2), cfg.AmountScale)
	assert.False(t, cfg.AllowSameAccountTransfer)
	assert.Equal(t, 4, cfg.RetryMaxAttempts)
	assert.Equal(t, 10, cfg.TransactionWorkers)
	assert.False(t, cfg.RedisEnabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DATABASE_TIMEOUT", "45s")
	t.Setenv("AMOUNT_SCALE", "4")
	t.Setenv("ALLOW_SAME_ACCOUNT_TRANSFER", "true")
	t.Setenv("RETRY_INITIAL_INTERVAL", "10ms")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.StorageMemory, cfg.StorageDriver)
	assert.Equal(t, "postgres://example", cfg.DatabaseURL)
	assert.True(t, cfg.RedisEnabled())
	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, 45*time.Second, cfg.DatabaseTimeout)
	assert.Equal(t, int32(4), cfg.AmountScale)
	assert.True(t, cfg.AllowSameAccountTransfer)
	assert.Equal(t, 10*time.Millisecond, cfg.RetryInitialInterval)
	assert.InDelta(t, 2.5, cfg.RateLimitRPS, 1e-9)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown driver", "STORAGE_DRIVER", "sqlite"},
		{"negative scale", "AMOUNT_SCALE", "-1"},
		{"zero attempts", "RETRY_MAX_ATTEMPTS", "0"},
		{"zero workers", "TRANSACTION_WORKERS", "0"},
		{"unparsable duration", "HTTP_READ_TIMEOUT", "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}
