package weather

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Reasons returned with a NotRecommended verdict when a request cannot be evaluated.
const (
	ReasonDateOutOfRange      = "Travel date must be within the next 7 days."
	ReasonDestinationNotFound = "Destination district not found."
	ReasonNoAfternoonData     = "No 2 PM weather data available for the selected date."
	ReasonIncompleteData      = "Insufficient weather or air quality data available for 2 PM on the selected date."
)

// travelWindowDays is how far ahead a travel date may be, inclusive of today.
const travelWindowDays = 7

// RecommendationEngine advises whether a trip to a catalog region is worthwhile.
// It holds no state between calls.
type RecommendationEngine struct {
	catalog RegionCatalog
	client  ForecastClient
	opts    engineOptions
}

// NewRecommendationEngine creates a new RecommendationEngine.
func NewRecommendationEngine(catalog RegionCatalog, client ForecastClient, opts ...Option) *RecommendationEngine {
	return &RecommendationEngine{
		catalog: catalog,
		client:  client,
		opts:    newEngineOptions(opts),
	}
}

// Recommend evaluates req. Validation problems and missing data are reported
// as a NotRecommended verdict; the returned error is reserved for upstream
// faults, in which case no verdict is given.
func (e *RecommendationEngine) Recommend(ctx context.Context, req TripRequest) (Recommendation, error) {
	log := e.opts.logger.WithFields(logrus.Fields{
		"component":   "recommendation",
		"destination": req.DestinationName,
	})

	travel := civilDate(req.TravelDate)
	today := civilDate(e.opts.now().In(e.opts.calendar))
	if travel.Before(today) || travel.After(today.AddDate(0, 0, travelWindowDays)) {
		return notRecommended(ReasonDateOutOfRange), nil
	}

	dest, ok := e.catalog.Lookup(req.DestinationName)
	if !ok {
		return notRecommended(ReasonDestinationNotFound), nil
	}

	coords := []Coordinate{
		{Lat: req.OriginLat, Lon: req.OriginLon},
		dest.Coordinate(),
	}
	pair, err := fetchPair(ctx, e.client, coords, SingleDay(travel))
	if err != nil {
		log.WithError(err).Warn("recommendation fetch failed")
		return Recommendation{}, err
	}

	idx := FirstIndexAtHour(pair.temperature[0], SampleHour)
	if idx < 0 {
		return notRecommended(ReasonNoAfternoonData), nil
	}

	originTemp, ok1 := valueAt(pair.temperature[0], idx)
	destTemp, ok2 := valueAt(pair.temperature[1], idx)
	originPM, ok3 := valueAt(pair.airQuality[0], idx)
	destPM, ok4 := valueAt(pair.airQuality[1], idx)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return notRecommended(ReasonIncompleteData), nil
	}

	rec := decide(originTemp, destTemp, originPM, destPM)
	log.WithField("verdict", rec.Verdict).Debug("recommendation evaluated")
	return rec, nil
}

// decide applies the cooler-and-cleaner rule to the 2 PM readings.
func decide(originTemp, destTemp, originPM, destPM float64) Recommendation {
	isCooler := destTemp < originTemp
	isCleaner := destPM < originPM

	if isCooler && isCleaner {
		return Recommendation{
			Verdict: VerdictRecommended,
			Reason: fmt.Sprintf("Your destination is %.1f°C cooler and has better air quality. Enjoy your trip!",
				originTemp-destTemp),
		}
	}

	temp := "hotter"
	if isCooler {
		temp = "cooler"
	}
	air := "worse"
	if isCleaner {
		air = "better"
	}
	return notRecommended(fmt.Sprintf(
		"Your destination is %s and has %s air quality than your current location. It's better to stay where you are.",
		temp, air))
}

func notRecommended(reason string) Recommendation {
	return Recommendation{Verdict: VerdictNotRecommended, Reason: reason}
}

func valueAt(s HourlySeries, i int) (float64, bool) {
	if i >= len(s.Values) || s.Values[i] == nil {
		return 0, false
	}
	return *s.Values[i], true
}

// civilDate drops the time of day, keeping t's calendar date in UTC.
func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
