package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/district-weather-advisor/internal/weather"
)

type stubCatalog struct{ regions []weather.Region }

func (s stubCatalog) Regions(context.Context) ([]weather.Region, error) { return s.regions, nil }

func (s stubCatalog) Lookup(string) (weather.Region, bool) { return weather.Region{}, false }

type stubRanker struct {
	result    weather.RankedResult
	fromCache bool
	err       error
}

func (s stubRanker) ComputeRanking(context.Context) (weather.RankedResult, bool, error) {
	return s.result, s.fromCache, s.err
}

type stubRecommender struct {
	got *weather.TripRequest
	rec weather.Recommendation
	err error
}

func (s *stubRecommender) Recommend(_ context.Context, req weather.TripRequest) (weather.Recommendation, error) {
	s.got = &req
	return s.rec, s.err
}

func newTestApp(deps Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	RegisterRoutes(app, deps)
	return app
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out T
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	return out
}

func TestTop10_ReturnsRankedDistricts(t *testing.T) {
	app := newTestApp(Dependencies{Ranker: stubRanker{
		result: weather.RankedResult{Regions: []weather.RegionMetrics{
			{Name: "Bandarban", AvgTemperature: 20, AvgPM25: 20},
			{Name: "Dhaka", AvgTemperature: 30, AvgPM25: 80},
		}},
		fromCache: true,
	}})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/districts/top10", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "HIT", resp.Header.Get("X-Cache"))

	got := decode[[]map[string]any](t, resp)
	require.Len(t, got, 2)
	assert.Equal(t, "Bandarban", got[0]["name"])
	assert.Equal(t, 20.0, got[0]["avgTemperature"])
	assert.Equal(t, 80.0, got[1]["avgPm25"])
}

func TestTop10_UpstreamFailureIsBadGateway(t *testing.T) {
	app := newTestApp(Dependencies{Ranker: stubRanker{err: weather.ErrUpstreamUnavailable}})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/districts/top10", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	got := decode[map[string]any](t, resp)
	assert.Equal(t, true, got["error"])
	assert.NotContains(t, got["message"], "upstream unavailable")
}

func TestDistricts_ListsCatalog(t *testing.T) {
	app := newTestApp(Dependencies{Catalog: stubCatalog{regions: []weather.Region{
		{Name: "Dhaka", Latitude: 23.7, Longitude: 90.4},
	}}})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/districts", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got := decode[[]weather.Region](t, resp)
	assert.Equal(t, []weather.Region{{Name: "Dhaka", Latitude: 23.7, Longitude: 90.4}}, got)
}

func postRecommendation(t *testing.T, app *fiber.App, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendation", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestRecommendation_Success(t *testing.T) {
	rec := &stubRecommender{rec: weather.Recommendation{
		Verdict: weather.VerdictNotRecommended,
		Reason:  weather.ReasonDestinationNotFound,
	}}
	app := newTestApp(Dependencies{Recommender: rec})

	resp := postRecommendation(t, app, `{
		"currentLatitude": 23.81,
		"currentLongitude": 90.41,
		"destinationDistrict": "Atlantis",
		"travelDate": "2026-01-05"
	}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got := decode[map[string]string](t, resp)
	assert.Equal(t, "Not Recommended", got["recommendation"])
	assert.Equal(t, "Destination district not found.", got["reason"])

	require.NotNil(t, rec.got)
	assert.Equal(t, 23.81, rec.got.OriginLat)
	assert.Equal(t, 90.41, rec.got.OriginLon)
	assert.Equal(t, "Atlantis", rec.got.DestinationName)
	assert.Equal(t, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), rec.got.TravelDate)
}

func TestRecommendation_ZeroCoordinatesAreAccepted(t *testing.T) {
	rec := &stubRecommender{rec: weather.Recommendation{Verdict: weather.VerdictRecommended, Reason: "ok"}}
	app := newTestApp(Dependencies{Recommender: rec})

	resp := postRecommendation(t, app, `{"currentLatitude":0,"currentLongitude":0,"destinationDistrict":"Dhaka","travelDate":"2026-01-05"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRecommendation_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"currentLatitude":`},
		{"missing latitude", `{"currentLongitude":90,"destinationDistrict":"Dhaka","travelDate":"2026-01-05"}`},
		{"latitude out of range", `{"currentLatitude":91,"currentLongitude":90,"destinationDistrict":"Dhaka","travelDate":"2026-01-05"}`},
		{"missing destination", `{"currentLatitude":23,"currentLongitude":90,"travelDate":"2026-01-05"}`},
		{"bad date", `{"currentLatitude":23,"currentLongitude":90,"destinationDistrict":"Dhaka","travelDate":"05/01/2026"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := &stubRecommender{}
			app := newTestApp(Dependencies{Recommender: rec})

			resp := postRecommendation(t, app, tc.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Nil(t, rec.got)
		})
	}
}

func TestRecommendation_FaultHasNoVerdict(t *testing.T) {
	app := newTestApp(Dependencies{Recommender: &stubRecommender{err: errors.New("upstream unavailable")}})

	resp := postRecommendation(t, app, `{"currentLatitude":23,"currentLongitude":90,"destinationDistrict":"Dhaka","travelDate":"2026-01-05"}`)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	got := decode[map[string]any](t, resp)
	assert.NotContains(t, got, "recommendation")
	assert.Equal(t, true, got["error"])
}
