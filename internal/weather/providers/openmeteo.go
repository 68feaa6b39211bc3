package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/district-weather-advisor/internal/common"
	"github.com/i474232898/district-weather-advisor/internal/weather"
)

const (
	DefaultForecastURL   = "https://api.open-meteo.com/v1/forecast"
	DefaultAirQualityURL = "https://air-quality-api.open-meteo.com/v1/air-quality"
	DefaultTimezone      = "Asia/Dhaka"
)

// endpoint is one Open-Meteo API serving a single hourly variable.
type endpoint struct {
	baseURL string
	field   string
	circuit *gobreaker.CircuitBreaker
}

// OpenMeteoProvider implements weather.ForecastClient on top of the Open-Meteo
// forecast and air-quality APIs. Every call is a single batched request.
type OpenMeteoProvider struct {
	client    *http.Client
	timezone  string
	endpoints map[weather.Metric]endpoint
}

// OpenMeteoConfig holds the provider endpoints and timezone.
// Zero values fall back to the public Open-Meteo URLs and Asia/Dhaka.
type OpenMeteoConfig struct {
	ForecastURL   string
	AirQualityURL string
	Timezone      string
}

func NewOpenMeteoProvider(client *http.Client, cfg OpenMeteoConfig) *OpenMeteoProvider {
	if cfg.ForecastURL == "" {
		cfg.ForecastURL = DefaultForecastURL
	}
	if cfg.AirQualityURL == "" {
		cfg.AirQualityURL = DefaultAirQualityURL
	}
	if cfg.Timezone == "" {
		cfg.Timezone = DefaultTimezone
	}

	return &OpenMeteoProvider{
		client:   client,
		timezone: cfg.Timezone,
		endpoints: map[weather.Metric]endpoint{
			weather.MetricTemperature: {
				baseURL: cfg.ForecastURL,
				field:   "temperature_2m",
				circuit: newBreaker("openmeteo-forecast"),
			},
			weather.MetricAirQuality: {
				baseURL: cfg.AirQualityURL,
				field:   "pm2_5",
				circuit: newBreaker("openmeteo-air-quality"),
			},
		},
	}
}

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:         name,
		MaxRequests:  5,
		Interval:     1 * time.Minute,
		Timeout:      2 * time.Minute,
		IsSuccessful: isBreakerSuccess,
	})
}

// isBreakerSuccess keeps caller cancellations from counting against the upstream.
func isBreakerSuccess(err error) bool {
	return err == nil || errors.Is(err, context.Canceled)
}

// FetchSeries fetches the hourly series of metric for every coordinate in one request.
func (p *OpenMeteoProvider) FetchSeries(
	ctx context.Context,
	coords []weather.Coordinate,
	metric weather.Metric,
	span weather.DateRange,
) ([]weather.HourlySeries, error) {
	ep, ok := p.endpoints[metric]
	if !ok {
		return nil, fmt.Errorf("openmeteo: unsupported metric %q", metric)
	}
	if len(coords) == 0 {
		return nil, nil
	}

	req, err := http.NewRequest(http.MethodGet, p.buildURL(ep, coords, span), nil)
	if err != nil {
		return nil, err
	}

	resp, err := doRequest(ctx, p.client, ep.circuit, req)
	if err != nil {
		return nil, fmt.Errorf("openmeteo %s: %w", metric, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("openmeteo %s: %w", metric, callerError(ctxErr))
		}
		return nil, fmt.Errorf("openmeteo %s: %w: read body: %v", metric, weather.ErrUpstreamUnavailable, err)
	}

	series, err := decodeLocations(body, ep.field)
	if err != nil {
		return nil, fmt.Errorf("openmeteo %s: %w", metric, err)
	}
	if len(series) != len(coords) {
		return nil, fmt.Errorf("openmeteo %s: %w: requested %d locations, got %d",
			metric, weather.ErrMalformedResponse, len(coords), len(series))
	}
	return series, nil
}

func (p *OpenMeteoProvider) buildURL(ep endpoint, coords []weather.Coordinate, span weather.DateRange) string {
	lats := make([]float64, len(coords))
	lons := make([]float64, len(coords))
	for i, c := range coords {
		lats[i] = c.Lat
		lons[i] = c.Lon
	}

	values := url.Values{}
	values.Set("latitude", common.JoinFloats(lats))
	values.Set("longitude", common.JoinFloats(lons))
	values.Set("hourly", ep.field)
	values.Set("timezone", p.timezone)
	if span.IsExplicit() {
		values.Set("start_date", span.Start.Format(time.DateOnly))
		values.Set("end_date", span.End.Format(time.DateOnly))
	} else {
		values.Set("forecast_days", strconv.Itoa(span.Days))
	}

	return fmt.Sprintf("%s?%s", ep.baseURL, values.Encode())
}

type meteoLocation struct {
	Hourly map[string]json.RawMessage `json:"hourly"`
}

// decodeLocations parses either a list of locations or, for single-coordinate
// requests, a bare location object.
func decodeLocations(body []byte, field string) ([]weather.HourlySeries, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty body", weather.ErrMalformedResponse)
	}

	var locations []meteoLocation
	if trimmed[0] == '{' {
		var single meteoLocation
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return nil, fmt.Errorf("%w: %v", weather.ErrMalformedResponse, err)
		}
		locations = []meteoLocation{single}
	} else if err := json.Unmarshal(trimmed, &locations); err != nil {
		return nil, fmt.Errorf("%w: %v", weather.ErrMalformedResponse, err)
	}

	out := make([]weather.HourlySeries, len(locations))
	for i, loc := range locations {
		s, err := loc.series(field)
		if err != nil {
			return nil, fmt.Errorf("%w: location %d: %v", weather.ErrMalformedResponse, i, err)
		}
		out[i] = s
	}
	return out, nil
}

func (l meteoLocation) series(field string) (weather.HourlySeries, error) {
	if l.Hourly == nil {
		return weather.HourlySeries{}, fmt.Errorf("missing hourly block")
	}

	rawTime, ok := l.Hourly["time"]
	if !ok {
		return weather.HourlySeries{}, fmt.Errorf("missing hourly.time")
	}
	rawValues, ok := l.Hourly[field]
	if !ok {
		return weather.HourlySeries{}, fmt.Errorf("missing hourly.%s", field)
	}

	var s weather.HourlySeries
	if err := json.Unmarshal(rawTime, &s.Timestamps); err != nil {
		return weather.HourlySeries{}, fmt.Errorf("hourly.time: %v", err)
	}
	if err := json.Unmarshal(rawValues, &s.Values); err != nil {
		return weather.HourlySeries{}, fmt.Errorf("hourly.%s: %v", field, err)
	}
	if len(s.Timestamps) != len(s.Values) {
		return weather.HourlySeries{}, fmt.Errorf("hourly.time has %d entries, hourly.%s has %d",
			len(s.Timestamps), field, len(s.Values))
	}
	return s, nil
}
