package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"

	httpapi "github.com/i474232898/district-weather-advisor/internal/api/http"
	"github.com/i474232898/district-weather-advisor/internal/catalog"
	"github.com/i474232898/district-weather-advisor/internal/config"
	"github.com/i474232898/district-weather-advisor/internal/logging"
	"github.com/i474232898/district-weather-advisor/internal/scheduler"
	"github.com/i474232898/district-weather-advisor/internal/store"
	"github.com/i474232898/district-weather-advisor/internal/weather"
	"github.com/i474232898/district-weather-advisor/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr := logging.New(cfg.LogLevel, cfg.LogFormat)

	// The district list is required; abort if it cannot be loaded.
	districts, err := catalog.Load(cfg.DistrictsFile)
	if err != nil {
		logr.WithError(err).Fatal("failed to load districts")
	}
	logr.WithField("districts", districts.Len()).Info("district catalog loaded")

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	forecasts := providers.NewOpenMeteoProvider(httpClient, providers.OpenMeteoConfig{
		ForecastURL:   cfg.ForecastBaseURL,
		AirQualityURL: cfg.AirQualityBaseURL,
		Timezone:      cfg.ForecastTimezone,
	})

	// Ranking cache: Redis when configured, otherwise in-process.
	var cache weather.ResultCache = store.NewMemoryCache(nil)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logr.WithError(err).Fatal("invalid REDIS_URL")
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		cache = store.NewRedisCache(rdb, logr)
		logr.Info("using redis ranking cache")
	}

	ranking := weather.NewRankingEngine(districts, forecasts, cache,
		weather.WithLogger(logr),
		weather.WithRankingTTL(cfg.RankingCacheTTL),
		weather.WithForecastDays(cfg.ForecastDays),
	)
	recommender := weather.NewRecommendationEngine(districts, forecasts,
		weather.WithLogger(logr),
		weather.WithCalendar(cfg.Calendar),
	)

	// Scheduler that keeps the ranking cache warm.
	sched := scheduler.New(ranking, cfg.WarmupInterval, cfg.WarmupTimeout, logr)
	if err := sched.Start(); err != nil {
		logr.WithError(err).Fatal("failed to start scheduler")
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "district-weather-advisor",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "district-weather-advisor",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, httpapi.Dependencies{
		Catalog:     districts,
		Ranker:      ranking,
		Recommender: recommender,
	})

	go func() {
		logr.WithField("port", cfg.Port).Info("http server starting")
		if err := app.Listen(":" + cfg.Port); err != nil {
			logr.WithError(err).Error("fiber server stopped")
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logr.WithError(err).Error("error during shutdown")
	}
}
