package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Redis.Host)
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.Equal(t, 8080, cfg.API.Port)
	assert.Equal(t, "bars.finalized", cfg.Stream.BarStream)
	assert.Equal(t, "indicators.results", cfg.Stream.ResultStream)
	assert.Equal(t, 200, cfg.Stream.MaxBars)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("REDIS_HOST", "redis.internal")
	t.Setenv("API_PORT", "9090")
	t.Setenv("STREAM_BATCH_TIMEOUT", "250ms")
	t.Setenv("STREAM_INDICATORS", "sma, rsi ,macd")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "redis.internal", cfg.Redis.Host)
	assert.Equal(t, 9090, cfg.API.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.Stream.BatchTimeout)
	assert.Equal(t, []string{"sma", "rsi", "macd"}, cfg.Stream.Indicators)
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("API_RATE_LIMIT_RPS", "not-a-number")
	t.Setenv("STREAM_BATCH_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.API.RateLimitRPS)
	assert.Equal(t, 100*time.Millisecond, cfg.Stream.BatchTimeout)
}

func TestValidate(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Stream.MaxBars = 0
	assert.Error(t, cfg.Validate())
}
