// Package catalog loads the static list of districts that can be ranked or
// chosen as a travel destination.
package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/i474232898/district-weather-advisor/internal/weather"
)

//go:embed bd-districts.json
var embeddedDistricts []byte

// rawDistrict mirrors one entry of the dataset; coordinates are strings.
type rawDistrict struct {
	ID         string `json:"id"`
	DivisionID string `json:"division_id"`
	Name       string `json:"name"`
	BnName     string `json:"bn_name"`
	Lat        string `json:"lat"`
	Long       string `json:"long"`
}

type geoData struct {
	Districts []rawDistrict `json:"districts"`
}

var errEmptyCatalog = errors.New("catalog: dataset contains no districts")

// Catalog is the immutable, ordered set of districts.
type Catalog struct {
	regions []weather.Region
	byName  map[string]int
}

// Load reads the dataset at path, or the embedded dataset when path is empty.
func Load(path string) (*Catalog, error) {
	data := embeddedDistricts
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("catalog: read %s: %w", path, err)
		}
		data = b
	}
	return Parse(data)
}

// Parse builds a Catalog from the raw JSON dataset.
func Parse(data []byte) (*Catalog, error) {
	var geo geoData
	if err := json.Unmarshal(data, &geo); err != nil {
		return nil, fmt.Errorf("catalog: decode dataset: %w", err)
	}
	if len(geo.Districts) == 0 {
		return nil, errEmptyCatalog
	}

	c := &Catalog{
		regions: make([]weather.Region, 0, len(geo.Districts)),
		byName:  make(map[string]int, len(geo.Districts)),
	}
	for i, d := range geo.Districts {
		region, err := d.toRegion()
		if err != nil {
			return nil, fmt.Errorf("catalog: district %d: %w", i, err)
		}

		key := strings.ToLower(region.Name)
		if _, dup := c.byName[key]; dup {
			return nil, fmt.Errorf("catalog: duplicate district %q", region.Name)
		}
		c.byName[key] = len(c.regions)
		c.regions = append(c.regions, region)
	}
	return c, nil
}

func (d rawDistrict) toRegion() (weather.Region, error) {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return weather.Region{}, errors.New("missing name")
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(d.Lat), 64)
	if err != nil || lat < -90 || lat > 90 {
		return weather.Region{}, fmt.Errorf("%s: invalid latitude %q", name, d.Lat)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(d.Long), 64)
	if err != nil || lon < -180 || lon > 180 {
		return weather.Region{}, fmt.Errorf("%s: invalid longitude %q", name, d.Long)
	}

	return weather.Region{Name: name, Latitude: lat, Longitude: lon}, nil
}

// Regions returns the districts in dataset order.
func (c *Catalog) Regions(_ context.Context) ([]weather.Region, error) {
	out := make([]weather.Region, len(c.regions))
	copy(out, c.regions)
	return out, nil
}

// Lookup finds a district by name, ignoring case and surrounding spaces.
func (c *Catalog) Lookup(name string) (weather.Region, bool) {
	i, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return weather.Region{}, false
	}
	return c.regions[i], true
}

// Len reports how many districts are loaded.
func (c *Catalog) Len() int {
	return len(c.regions)
}
