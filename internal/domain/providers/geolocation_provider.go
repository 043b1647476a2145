package providers

import (
	"context"
	"time"
)

// GeolocationProvider resolves place names and computes drive-time routing for
// hospital ranking.
type GeolocationProvider interface {
	// Geocode converts a free-text place name to a geocoded place.
	Geocode(ctx context.Context, place string) (*GeocodedPlace, error)

	// ReverseGeocode converts coordinates back to a place.
	ReverseGeocode(ctx context.Context, lat, lon float64) (*GeocodedPlace, error)

	// DriveTime computes a driving route between two points.
	DriveTime(ctx context.Context, from, to Coordinates) (*Route, error)
}

// Coordinates represents geographical coordinates.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// GeocodedPlace is a resolved location.
type GeocodedPlace struct {
	DisplayName string
	City        string
	State       string
	Country     string
	Coordinates Coordinates
}

// Route is a driving route between two points.
type Route struct {
	Duration   time.Duration
	DistanceKm float64
}
