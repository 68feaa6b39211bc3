package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := fromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "https://api.open-meteo.com/v1/forecast", cfg.ForecastBaseURL)
	assert.Equal(t, "https://air-quality-api.open-meteo.com/v1/air-quality", cfg.AirQualityBaseURL)
	assert.Equal(t, "Asia/Dhaka", cfg.ForecastTimezone)
	require.NotNil(t, cfg.Calendar)
	assert.Equal(t, "Asia/Dhaka", cfg.Calendar.String())
	assert.Equal(t, 7, cfg.ForecastDays)
	assert.Equal(t, 30*time.Minute, cfg.RankingCacheTTL)
	assert.Equal(t, 30*time.Minute, cfg.WarmupInterval)
	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("RANKING_CACHE_TTL", "5m")
	t.Setenv("FORECAST_DAYS", "3")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("FORECAST_TIMEZONE", "UTC")

	cfg, err := fromEnv()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 5*time.Minute, cfg.RankingCacheTTL)
	assert.Equal(t, 3, cfg.ForecastDays)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, time.UTC, cfg.Calendar)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := map[string]string{
		"HTTP_TIMEOUT":      "soon",
		"FORECAST_DAYS":     "0",
		"FORECAST_BASE_URL": "not a url",
		"FORECAST_TIMEZONE": "Mars/Olympus_Mons",
		"LOG_FORMAT":        "xml",
		"RANKING_CACHE_TTL": "-1m",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)

			_, err := fromEnv()
			assert.Error(t, err)
		})
	}
}
