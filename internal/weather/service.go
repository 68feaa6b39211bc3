package weather

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// engineOptions holds the knobs shared by the ranking and recommendation engines.
type engineOptions struct {
	logger       logrus.FieldLogger
	now          func() time.Time
	calendar     *time.Location
	ttl          time.Duration
	topN         int
	forecastDays int
}

// Option configures an engine.
type Option func(*engineOptions)

// WithLogger sets the logger used by the engine.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *engineOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(o *engineOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// WithCalendar sets the location in which "today" is evaluated for travel dates.
func WithCalendar(loc *time.Location) Option {
	return func(o *engineOptions) {
		if loc != nil {
			o.calendar = loc
		}
	}
}

// WithRankingTTL sets how long a computed ranking stays live in the cache.
func WithRankingTTL(ttl time.Duration) Option {
	return func(o *engineOptions) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// WithTopN limits how many regions a ranking keeps.
func WithTopN(n int) Option {
	return func(o *engineOptions) {
		if n > 0 {
			o.topN = n
		}
	}
}

// WithForecastDays sets the horizon used for rankings.
func WithForecastDays(days int) Option {
	return func(o *engineOptions) {
		if days > 0 {
			o.forecastDays = days
		}
	}
}

// DefaultCalendar is the fixed UTC+6 zone the forecast provider reports in.
var DefaultCalendar = time.FixedZone("UTC+6", 6*60*60)

const (
	DefaultRankingTTL   = 30 * time.Minute
	DefaultTopN         = 10
	DefaultForecastDays = 7
)

func newEngineOptions(opts []Option) engineOptions {
	o := engineOptions{
		logger:       logrus.StandardLogger(),
		now:          time.Now,
		calendar:     DefaultCalendar,
		ttl:          DefaultRankingTTL,
		topN:         DefaultTopN,
		forecastDays: DefaultForecastDays,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// seriesPair is the temperature and air-quality series for the same coordinates.
type seriesPair struct {
	temperature []HourlySeries
	airQuality  []HourlySeries
}

// fetchPair requests both metrics concurrently. Either failure aborts the pair.
func fetchPair(ctx context.Context, client ForecastClient, coords []Coordinate, span DateRange) (seriesPair, error) {
	var pair seriesPair

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := client.FetchSeries(gctx, coords, MetricTemperature, span)
		if err != nil {
			return fmt.Errorf("fetch temperature: %w", err)
		}
		pair.temperature = s
		return nil
	})
	g.Go(func() error {
		s, err := client.FetchSeries(gctx, coords, MetricAirQuality, span)
		if err != nil {
			return fmt.Errorf("fetch air quality: %w", err)
		}
		pair.airQuality = s
		return nil
	})

	if err := g.Wait(); err != nil {
		return seriesPair{}, err
	}

	if len(pair.temperature) != len(coords) || len(pair.airQuality) != len(coords) {
		return seriesPair{}, fmt.Errorf("%w: expected %d locations, got %d temperature and %d air quality",
			ErrMalformedResponse, len(coords), len(pair.temperature), len(pair.airQuality))
	}
	return pair, nil
}
