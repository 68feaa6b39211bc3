package weather

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrUpstreamUnavailable is returned when a forecast provider cannot be
	// reached, times out or answers with a non-success status.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrMalformedResponse is returned when a provider response does not have
	// the expected per-location hourly shape.
	ErrMalformedResponse = errors.New("malformed upstream response")
)

// ForecastClient abstracts the hourly forecast providers (temperature and air quality).
// Results are returned in the same order as coords, one series per coordinate.
type ForecastClient interface {
	FetchSeries(ctx context.Context, coords []Coordinate, metric Metric, span DateRange) ([]HourlySeries, error)
}

// RegionCatalog is the read-only source of rankable regions.
type RegionCatalog interface {
	Regions(ctx context.Context) ([]Region, error)
	Lookup(name string) (Region, bool)
}

// ResultCache holds the latest ranking under a single logical key.
type ResultCache interface {
	Get(ctx context.Context) (RankedResult, bool)
	Put(ctx context.Context, result RankedResult, ttl time.Duration) error
}
