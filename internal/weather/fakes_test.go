package weather

import (
	"context"
	"strings"
	"sync"
	"time"
)

type fakeCatalog struct {
	regions []Region
}

func (f *fakeCatalog) Regions(context.Context) ([]Region, error) {
	out := make([]Region, len(f.regions))
	copy(out, f.regions)
	return out, nil
}

func (f *fakeCatalog) Lookup(name string) (Region, bool) {
	for _, r := range f.regions {
		if strings.EqualFold(r.Name, name) {
			return r, true
		}
	}
	return Region{}, false
}

type fetchCall struct {
	coords []Coordinate
	metric Metric
	span   DateRange
}

// fakeForecastClient answers from per-metric canned series.
type fakeForecastClient struct {
	mu     sync.Mutex
	series map[Metric][]HourlySeries
	errs   map[Metric]error
	calls  []fetchCall
	block  chan struct{}
}

func newFakeForecastClient() *fakeForecastClient {
	return &fakeForecastClient{
		series: make(map[Metric][]HourlySeries),
		errs:   make(map[Metric]error),
	}
}

func (f *fakeForecastClient) FetchSeries(ctx context.Context, coords []Coordinate, metric Metric, span DateRange) ([]HourlySeries, error) {
	f.mu.Lock()
	f.calls = append(f.calls, fetchCall{coords: append([]Coordinate(nil), coords...), metric: metric, span: span})
	block := f.block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[metric]; err != nil {
		return nil, err
	}
	return f.series[metric], nil
}

func (f *fakeForecastClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeForecastClient) callsFor(metric Metric) []fetchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []fetchCall
	for _, c := range f.calls {
		if c.metric == metric {
			out = append(out, c)
		}
	}
	return out
}

// fakeCache is a minimal ResultCache with an adjustable clock.
type fakeCache struct {
	mu        sync.Mutex
	value     RankedResult
	expiresAt time.Time
	present   bool
	puts      int
	now       func() time.Time
}

func newFakeCache(now func() time.Time) *fakeCache {
	return &fakeCache{now: now}
}

func (c *fakeCache) Get(context.Context) (RankedResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.present || !c.now().Before(c.expiresAt) {
		return RankedResult{}, false
	}
	return c.value.Clone(), true
}

func (c *fakeCache) Put(_ context.Context, r RankedResult, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = r.Clone()
	c.expiresAt = c.now().Add(ttl)
	c.present = true
	c.puts++
	return nil
}

func (c *fakeCache) putCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.puts
}

// testClock is a manually advanced time source.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func f64(v float64) *float64 { return &v }

// single builds a one-entry series.
func single(ts string, v *float64) HourlySeries {
	return HourlySeries{Timestamps: []string{ts}, Values: []*float64{v}}
}
