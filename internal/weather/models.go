package weather

import (
	"time"
)

// Metric selects which hourly forecast series is requested from a provider.
type Metric string

const (
	MetricTemperature Metric = "temperature"
	MetricAirQuality  Metric = "air_quality"
)

// Region is a named area from the catalog with a fixed coordinate.
type Region struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"long"`
}

// Coordinate returns the region's position.
func (r Region) Coordinate() Coordinate {
	return Coordinate{Lat: r.Latitude, Lon: r.Longitude}
}

// Coordinate is a latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// DateRange describes the forecast span requested from a provider.
// Either Days is set (a rolling horizon starting today) or Start/End
// bound an explicit calendar range, inclusive.
type DateRange struct {
	Days  int
	Start time.Time
	End   time.Time
}

// NextDays returns a rolling horizon of n days.
func NextDays(n int) DateRange {
	return DateRange{Days: n}
}

// SingleDay returns a range covering exactly one calendar date.
func SingleDay(d time.Time) DateRange {
	return DateRange{Start: d, End: d}
}

// IsExplicit reports whether the range is bounded by calendar dates.
func (r DateRange) IsExplicit() bool {
	return !r.Start.IsZero() && !r.End.IsZero()
}

// HourlySeries is one location's hourly forecast for a single metric.
// Timestamps and Values are index-aligned; a nil value means the provider
// had no reading for that hour.
type HourlySeries struct {
	Timestamps []string
	Values     []*float64
}

// RegionMetrics is a region reduced to its two comparable averages.
type RegionMetrics struct {
	Name           string  `json:"name"`
	AvgTemperature float64 `json:"avgTemperature"`
	AvgPM25        float64 `json:"avgPm25"`
}

// RankedResult is an ordered ranking snapshot, best region first.
type RankedResult struct {
	Version     string          `json:"version"`
	GeneratedAt time.Time       `json:"generatedAt"`
	Regions     []RegionMetrics `json:"regions"`
}

// Clone returns a copy that shares no memory with r.
func (r RankedResult) Clone() RankedResult {
	out := r
	if r.Regions != nil {
		out.Regions = make([]RegionMetrics, len(r.Regions))
		copy(out.Regions, r.Regions)
	}
	return out
}

// TripRequest asks whether travelling from an origin coordinate to a
// catalog region on a given date is advisable.
type TripRequest struct {
	OriginLat       float64
	OriginLon       float64
	DestinationName string
	// TravelDate is a calendar date; its time of day is ignored.
	TravelDate time.Time
}

// Verdict is the outcome of a recommendation.
type Verdict string

const (
	VerdictRecommended    Verdict = "Recommended"
	VerdictNotRecommended Verdict = "Not Recommended"
)

// Recommendation is the advice returned for a TripRequest.
type Recommendation struct {
	Verdict Verdict `json:"recommendation"`
	Reason  string  `json:"reason"`
}
