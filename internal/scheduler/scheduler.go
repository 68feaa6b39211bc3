package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"github.com/i474232898/district-weather-advisor/internal/weather"
)

const (
	defaultInterval   = 30 * time.Minute
	defaultRunTimeout = 2 * time.Minute
)

// RankingWarmer is the operation the scheduler keeps warm.
type RankingWarmer interface {
	ComputeRanking(ctx context.Context) (weather.RankedResult, bool, error)
}

// Scheduler periodically recomputes the district ranking so user requests hit a warm cache.
type Scheduler struct {
	scheduler  *gocron.Scheduler
	warmer     RankingWarmer
	interval   time.Duration
	runTimeout time.Duration
	logger     logrus.FieldLogger
}

// New creates a new Scheduler. Non-positive durations fall back to defaults.
func New(warmer RankingWarmer, interval, runTimeout time.Duration, logger logrus.FieldLogger) *Scheduler {
	if interval <= 0 {
		interval = defaultInterval
	}
	if runTimeout <= 0 {
		runTimeout = defaultRunTimeout
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Scheduler{
		scheduler:  gocron.NewScheduler(time.UTC),
		warmer:     warmer,
		interval:   interval,
		runTimeout: runTimeout,
		logger:     logger.WithField("component", "scheduler"),
	}
}

// Start schedules the warmup job. The first run happens immediately.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(s.interval).SingletonMode().Do(s.warmup)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// warmup runs one ranking computation and logs the outcome; failures are never propagated.
func (s *Scheduler) warmup() {
	ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
	defer cancel()

	started := time.Now()
	result, fromCache, err := s.warmer.ComputeRanking(ctx)
	if err != nil {
		s.logger.WithError(err).Error("cache warmup failed")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"count":      len(result.Regions),
		"from_cache": fromCache,
		"took":       time.Since(started).String(),
	}).Info("cache warmup completed")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
