package weather

import (
	"time"

	"github.com/shopspring/decimal"
)

// MissingSampleSentinel is the average assigned to a metric with no valid
// samples. It is larger than any real reading so such regions rank last.
const MissingSampleSentinel = 999.0

// SampleHour is the local hour used as the representative daytime reading.
const SampleHour = 14

var timestampLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// localHour returns the wall-clock hour written in a provider timestamp.
// Offsets are not applied; the provider already reports local time.
func localHour(ts string) (int, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, ts); err == nil {
			return t.Hour(), true
		}
	}
	return 0, false
}

// ExtractAtHour returns, in input order, the present values whose timestamp
// falls on the given local hour. Missing values are skipped, not zero-filled.
func ExtractAtHour(series HourlySeries, hour int) []float64 {
	n := min(len(series.Timestamps), len(series.Values))
	out := make([]float64, 0, n/24+1)

	for i := 0; i < n; i++ {
		h, ok := localHour(series.Timestamps[i])
		if !ok || h != hour {
			continue
		}
		if v := series.Values[i]; v != nil {
			out = append(out, *v)
		}
	}
	return out
}

// FirstIndexAtHour returns the index of the first timestamp on the given
// local hour, or -1.
func FirstIndexAtHour(series HourlySeries, hour int) int {
	for i, ts := range series.Timestamps {
		if h, ok := localHour(ts); ok && h == hour {
			return i
		}
	}
	return -1
}

// AverageOrSentinel returns the arithmetic mean rounded half-to-even to one
// decimal place, or MissingSampleSentinel when there are no values.
func AverageOrSentinel(values []float64) float64 {
	if len(values) == 0 {
		return MissingSampleSentinel
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	rounded, _ := decimal.NewFromFloat(mean).RoundBank(1).Float64()
	return rounded
}

// reduceRegion collapses a region's two series into comparable averages.
func reduceRegion(name string, temperature, airQuality HourlySeries) RegionMetrics {
	return RegionMetrics{
		Name:           name,
		AvgTemperature: AverageOrSentinel(ExtractAtHour(temperature, SampleHour)),
		AvgPM25:        AverageOrSentinel(ExtractAtHour(airQuality, SampleHour)),
	}
}
