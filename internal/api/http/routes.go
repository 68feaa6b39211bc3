package httpapi

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/district-weather-advisor/internal/weather"
)

var validate = validator.New()

// Ranker serves the district ranking.
type Ranker interface {
	ComputeRanking(ctx context.Context) (weather.RankedResult, bool, error)
}

// Recommender evaluates a trip.
type Recommender interface {
	Recommend(ctx context.Context, req weather.TripRequest) (weather.Recommendation, error)
}

// Dependencies groups what the routes need.
type Dependencies struct {
	Catalog     weather.RegionCatalog
	Ranker      Ranker
	Recommender Recommender
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Dependencies) {
	v1 := app.Group("/api/v1")

	v1.Get("/districts", func(c *fiber.Ctx) error {
		regions, err := deps.Catalog.Regions(c.UserContext())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to load districts")
		}
		return c.JSON(regions)
	})

	v1.Get("/districts/top10", func(c *fiber.Ctx) error {
		result, fromCache, err := deps.Ranker.ComputeRanking(c.UserContext())
		if err != nil {
			return upstreamError(err, "failed to compute district ranking")
		}

		if fromCache {
			c.Set("X-Cache", "HIT")
		} else {
			c.Set("X-Cache", "MISS")
		}

		regions := result.Regions
		if regions == nil {
			regions = []weather.RegionMetrics{}
		}
		return c.JSON(regions)
	})

	v1.Post("/recommendation", func(c *fiber.Ctx) error {
		var body recommendationBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		req, err := body.toTripRequest()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		rec, err := deps.Recommender.Recommend(c.UserContext(), req)
		if err != nil {
			return upstreamError(err, "could not evaluate trip recommendation")
		}
		return c.JSON(rec)
	})
}

// recommendationBody is the JSON payload of the recommendation endpoint.
type recommendationBody struct {
	CurrentLatitude     *float64 `json:"currentLatitude" validate:"required,gte=-90,lte=90"`
	CurrentLongitude    *float64 `json:"currentLongitude" validate:"required,gte=-180,lte=180"`
	DestinationDistrict string   `json:"destinationDistrict" validate:"required"`
	TravelDate          string   `json:"travelDate" validate:"required"`
}

func (b recommendationBody) toTripRequest() (weather.TripRequest, error) {
	if err := validate.Struct(b); err != nil {
		return weather.TripRequest{}, err
	}

	date, err := time.Parse(time.DateOnly, b.TravelDate)
	if err != nil {
		return weather.TripRequest{}, errors.New("travelDate must use the YYYY-MM-DD format")
	}

	return weather.TripRequest{
		OriginLat:       *b.CurrentLatitude,
		OriginLon:       *b.CurrentLongitude,
		DestinationName: b.DestinationDistrict,
		TravelDate:      date,
	}, nil
}

// upstreamError hides provider details behind a generic failure without guessing a verdict.
func upstreamError(err error, msg string) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fiber.NewError(fiber.StatusGatewayTimeout, msg)
	}
	return fiber.NewError(fiber.StatusBadGateway, msg)
}
