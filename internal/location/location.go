// Package location provides the optional coordinate used for weather lookups.
package location

import (
	"context"
	"fmt"
	"math"
)

// Coordinate is a latitude/longitude pair in degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// String formats the coordinate as "lon,lat" with two decimals, the form
// the weather API expects.
func (c Coordinate) String() string {
	return fmt.Sprintf("%.2f,%.2f", c.Longitude, c.Latitude)
}

// Valid reports whether the coordinate is within range.
func (c Coordinate) Valid() bool {
	return !math.IsNaN(c.Latitude) && !math.IsNaN(c.Longitude) &&
		c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

// Provider returns the current location, if known.
type Provider interface {
	Current(ctx context.Context) (Coordinate, bool)
}

// Static is a fixed location from configuration.
type Static struct {
	coord Coordinate
	ok    bool
}

// NewStatic returns a provider for a configured coordinate. Out-of-range
// values yield a provider with no location.
func NewStatic(lat, lon float64) Static {
	c := Coordinate{Latitude: lat, Longitude: lon}
	return Static{coord: c, ok: c.Valid()}
}

// None is a provider that never has a location.
func None() Static {
	return Static{}
}

// Current returns the configured coordinate.
func (s Static) Current(context.Context) (Coordinate, bool) {
	return s.coord, s.ok
}

// Resolve returns the provider's coordinate as a weather location string,
// or fallback when no coordinate is available.
func Resolve(ctx context.Context, p Provider, fallback string) string {
	if p == nil {
		return fallback
	}
	if c, ok := p.Current(ctx); ok {
		return c.String()
	}
	return fallback
}
