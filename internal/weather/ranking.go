package weather

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const rankingFlightKey = "top10_districts"

// RankingEngine ranks catalog regions by their 2 PM temperature and PM2.5 averages.
type RankingEngine struct {
	catalog RegionCatalog
	client  ForecastClient
	cache   ResultCache
	opts    engineOptions

	flight singleflight.Group
}

// NewRankingEngine creates a new RankingEngine.
func NewRankingEngine(catalog RegionCatalog, client ForecastClient, cache ResultCache, opts ...Option) *RankingEngine {
	return &RankingEngine{
		catalog: catalog,
		client:  client,
		cache:   cache,
		opts:    newEngineOptions(opts),
	}
}

// errFlightAbandoned marks a shared recompute that stopped because the
// caller that started it went away.
var errFlightAbandoned = errors.New("ranking recompute abandoned by its initiator")

// ComputeRanking returns the current ranking and whether it was served from cache.
// On a miss the ranking is recomputed from upstream and cached; upstream
// failures are returned as is and leave the cache untouched.
// Concurrent misses share one recompute. If the caller that started it is
// cancelled, callers that are still waiting start a new one.
func (e *RankingEngine) ComputeRanking(ctx context.Context) (RankedResult, bool, error) {
	for {
		if cached, ok := e.cache.Get(ctx); ok {
			return cached, true, nil
		}

		ch := e.flight.DoChan(rankingFlightKey, func() (interface{}, error) {
			result, err := e.recompute(ctx)
			if err != nil && ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %w", errFlightAbandoned, err)
			}
			return result, err
		})

		select {
		case <-ctx.Done():
			return RankedResult{}, false, ctx.Err()
		case res := <-ch:
			if res.Err == nil {
				return res.Val.(RankedResult).Clone(), false, nil
			}
			if !errors.Is(res.Err, errFlightAbandoned) {
				return RankedResult{}, false, res.Err
			}
			if err := ctx.Err(); err != nil {
				return RankedResult{}, false, err
			}
			e.opts.logger.WithField("component", "ranking").
				Debug("joined recompute was abandoned; retrying")
		}
	}
}

func (e *RankingEngine) recompute(ctx context.Context) (RankedResult, error) {
	log := e.opts.logger.WithField("component", "ranking")

	regions, err := e.catalog.Regions(ctx)
	if err != nil {
		return RankedResult{}, fmt.Errorf("load regions: %w", err)
	}

	coords := make([]Coordinate, len(regions))
	for i, r := range regions {
		coords[i] = r.Coordinate()
	}

	pair, err := fetchPair(ctx, e.client, coords, NextDays(e.opts.forecastDays))
	if err != nil {
		log.WithError(err).Warn("ranking recompute failed; cache left untouched")
		return RankedResult{}, err
	}

	metrics := make([]RegionMetrics, len(regions))
	for i, r := range regions {
		metrics[i] = reduceRegion(r.Name, pair.temperature[i], pair.airQuality[i])
	}

	result := RankedResult{
		Version:     uuid.NewString(),
		GeneratedAt: e.opts.now().UTC(),
		Regions:     Rank(metrics, e.opts.topN),
	}

	// The initiating request may have gone away while we were fetching.
	if err := ctx.Err(); err != nil {
		return RankedResult{}, err
	}

	if err := e.cache.Put(ctx, result, e.opts.ttl); err != nil {
		log.WithError(err).Warn("failed to cache ranking")
	}

	log.WithFields(logrus.Fields{
		"version": result.Version,
		"regions": len(regions),
		"kept":    len(result.Regions),
	}).Info("ranking recomputed")

	return result, nil
}

// Rank orders metrics by average temperature, then average PM2.5, both
// ascending, and keeps at most topN entries. Ties keep input order.
func Rank(metrics []RegionMetrics, topN int) []RegionMetrics {
	out := make([]RegionMetrics, len(metrics))
	copy(out, metrics)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].AvgTemperature != out[j].AvgTemperature {
			return out[i].AvgTemperature < out[j].AvgTemperature
		}
		return out[i].AvgPM25 < out[j].AvgPM25
	})

	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}
