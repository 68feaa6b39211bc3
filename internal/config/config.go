package config

import (
	"fmt"
	"log"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type AppConfig struct {
	Port string `envconfig:"PORT" default:"8080"`

	// HTTPTimeout bounds every outbound provider call.
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s" validate:"gt=0"`

	// Forecast provider. FORECAST_TIMEZONE is also the calendar in which travel
	// dates are checked, so returned timestamps and "today" agree.
	ForecastBaseURL   string `envconfig:"FORECAST_BASE_URL" default:"https://api.open-meteo.com/v1/forecast" validate:"required,url"`
	AirQualityBaseURL string `envconfig:"AIR_QUALITY_BASE_URL" default:"https://air-quality-api.open-meteo.com/v1/air-quality" validate:"required,url"`
	ForecastTimezone  string `envconfig:"FORECAST_TIMEZONE" default:"Asia/Dhaka" validate:"required"`
	ForecastDays      int    `envconfig:"FORECAST_DAYS" default:"7" validate:"min=1,max=16"`

	// Ranking cache and warmup.
	RankingCacheTTL time.Duration `envconfig:"RANKING_CACHE_TTL" default:"30m" validate:"gt=0"`
	WarmupInterval  time.Duration `envconfig:"WARMUP_INTERVAL" default:"30m" validate:"gt=0"`
	WarmupTimeout   time.Duration `envconfig:"WARMUP_TIMEOUT" default:"2m" validate:"gt=0"`

	// DistrictsFile overrides the embedded district dataset when set.
	DistrictsFile string `envconfig:"DISTRICTS_FILE"`

	// RedisURL enables the shared Redis cache; empty keeps the ranking in memory.
	RedisURL string `envconfig:"REDIS_URL"`

	// Calendar is ForecastTimezone resolved by Load.
	Calendar *time.Location `ignored:"true"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json" validate:"oneof=json text"`
}

// Load reads configuration from the environment (and .env, if present) with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	return fromEnv()
}

func fromEnv() (*AppConfig, error) {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	loc, err := time.LoadLocation(cfg.ForecastTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid FORECAST_TIMEZONE: %w", err)
	}
	cfg.Calendar = loc

	return &cfg, nil
}
