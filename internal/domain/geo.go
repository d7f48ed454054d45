package domain

import (
	"context"
	"math/rand/v2"
	"strings"
)

// Synthesized points fall inside the continental US bounding box.
const (
	synthMinLat = 25.0
	synthMaxLat = 49.0
	synthMinLon = -125.0
	synthMaxLon = -66.0
)

// GeoPolicy names the coordinate source used for a dataset.
type GeoPolicy string

const (
	GeoPolicyDirect        GeoPolicy = "direct"
	GeoPolicySynthesized   GeoPolicy = "synthesized"
	GeoPolicyStateGeocoded GeoPolicy = "state-geocoded"
)

// Point is a WGS-84 latitude/longitude pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// GeoPoint is a resolved coordinate for one record.
type GeoPoint struct {
	Row   int    `json:"row"`
	State string `json:"state,omitempty"`
	Point
}

// GeoLayer is the geospatial section of a report, e.g. heatmap input.
type GeoLayer struct {
	Policy    GeoPolicy  `json:"policy"`
	LatColumn string     `json:"lat_column,omitempty"`
	LonColumn string     `json:"lon_column,omitempty"`
	Center    Point      `json:"center"`
	Points    []GeoPoint `json:"points"`
	Excluded  int        `json:"excluded"` // records without usable coordinates

	// FallbackStates lists states the locator could not resolve; they
	// received a random point instead.
	FallbackStates []string `json:"fallback_states,omitempty"`
}

// StateLocator resolves a state name to a representative point.
type StateLocator interface {
	LocateState(ctx context.Context, state string) (Point, error)
}

// GeoOptions configures coordinate resolution.
type GeoOptions struct {
	// Seed makes synthesized points reproducible. Nil draws a random seed.
	Seed *uint64
	// Locator, when set, is tried before a random point for each state.
	Locator StateLocator
}

// ResolveCoordinates builds the geospatial layer for ds. Direct coordinate
// columns are preferred; otherwise each distinct State gets one point.
// Returns ErrGeoResolutionSkipped when neither source exists.
func ResolveCoordinates(ctx context.Context, ds *Dataset, opts GeoOptions) (*GeoLayer, error) {
	if lat, lon, ok := ds.CoordinateColumns(); ok {
		layer := resolveDirect(ds)
		layer.LatColumn, layer.LonColumn = lat, lon
		return layer, nil
	}
	if !ds.HasColumn(ColumnState) {
		return nil, ErrGeoResolutionSkipped
	}
	return resolveByState(ctx, ds, opts), nil
}

func resolveDirect(ds *Dataset) *GeoLayer {
	layer := &GeoLayer{Policy: GeoPolicyDirect, Points: make([]GeoPoint, 0, ds.Len())}
	for _, r := range ds.records {
		if r.Latitude == nil || r.Longitude == nil {
			layer.Excluded++
			continue
		}
		layer.Points = append(layer.Points, GeoPoint{
			Row:   r.Row,
			State: r.State,
			Point: Point{Lat: *r.Latitude, Lon: *r.Longitude},
		})
	}
	layer.Center = centerOf(layer.Points)
	return layer
}

func resolveByState(ctx context.Context, ds *Dataset, opts GeoOptions) *GeoLayer {
	rng := newRand(opts.Seed)
	layer := &GeoLayer{Policy: GeoPolicySynthesized, Points: make([]GeoPoint, 0, ds.Len())}

	// Keyed by normalized state so "tx" and "TX" share one point.
	byState := make(map[string]Point)
	located := 0

	for _, r := range ds.records {
		if r.State == "" {
			layer.Excluded++
			continue
		}
		key := stateKey(r.State)
		p, ok := byState[key]
		if !ok {
			if p, ok = locate(ctx, opts.Locator, r.State); ok {
				located++
			} else {
				if opts.Locator != nil {
					layer.FallbackStates = append(layer.FallbackStates, r.State)
				}
				p = randomPoint(rng)
			}
			byState[key] = p
		}
		layer.Points = append(layer.Points, GeoPoint{Row: r.Row, State: r.State, Point: p})
	}

	if located > 0 {
		layer.Policy = GeoPolicyStateGeocoded
	}
	layer.Center = centerOf(layer.Points)
	return layer
}

func stateKey(state string) string {
	return strings.ToUpper(strings.TrimSpace(state))
}

// locate asks the locator for a state's point. A zero point counts as a miss.
func locate(ctx context.Context, locator StateLocator, state string) (Point, bool) {
	if locator == nil {
		return Point{}, false
	}
	p, err := locator.LocateState(ctx, state)
	if err != nil || (p.Lat == 0 && p.Lon == 0) {
		return Point{}, false
	}
	return p, true
}

func newRand(seed *uint64) *rand.Rand {
	if seed == nil {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(*seed, *seed))
}

func randomPoint(rng *rand.Rand) Point {
	return Point{
		Lat: synthMinLat + rng.Float64()*(synthMaxLat-synthMinLat),
		Lon: synthMinLon + rng.Float64()*(synthMaxLon-synthMinLon),
	}
}

// centerOf returns the mean of points, or the zero point when empty.
func centerOf(points []GeoPoint) Point {
	if len(points) == 0 {
		return Point{}
	}
	var c Point
	for _, p := range points {
		c.Lat += p.Lat
		c.Lon += p.Lon
	}
	n := float64(len(points))
	return Point{Lat: c.Lat / n, Lon: c.Lon / n}
}
