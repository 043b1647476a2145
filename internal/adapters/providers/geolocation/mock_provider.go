package geolocation

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/TejPotu/case-twin/internal/domain/providers"
)

// MockGeolocationProvider is a deterministic provider for development and
// tests. It resolves a handful of well-known medical hubs and estimates
// drive time from straight-line distance.
type MockGeolocationProvider struct{}

// NewMockGeolocationProvider creates a new mock geolocation provider.
func NewMockGeolocationProvider() providers.GeolocationProvider {
	return &MockGeolocationProvider{}
}

type knownPlace struct {
	name  string
	city  string
	state string
	lat   float64
	lon   float64
}

var knownPlaces = []knownPlace{
	{"rochester", "Rochester", "Minnesota", 44.0225, -92.4699},
	{"cleveland", "Cleveland", "Ohio", 41.4993, -81.6944},
	{"boston", "Boston", "Massachusetts", 42.3601, -71.0589},
	{"baltimore", "Baltimore", "Maryland", 39.2904, -76.6122},
	{"houston", "Houston", "Texas", 29.7604, -95.3698},
	{"orlando", "Orlando", "Florida", 28.5383, -81.3792},
}

// Geocode resolves known medical hubs and falls back to the continental US
// centroid for everything else.
func (m *MockGeolocationProvider) Geocode(_ context.Context, place string) (*providers.GeocodedPlace, error) {
	trimmed := strings.TrimSpace(place)
	if trimmed == "" {
		return nil, fmt.Errorf("place is required")
	}

	lower := strings.ToLower(trimmed)
	for _, known := range knownPlaces {
		if strings.Contains(lower, known.name) {
			return &providers.GeocodedPlace{
				DisplayName: known.city + ", " + known.state + ", United States",
				City:        known.city,
				State:       known.state,
				Country:     "United States",
				Coordinates: providers.Coordinates{Latitude: known.lat, Longitude: known.lon},
			}, nil
		}
	}

	return &providers.GeocodedPlace{
		DisplayName: trimmed,
		Country:     "United States",
		Coordinates: providers.Coordinates{Latitude: 39.8283, Longitude: -98.5795},
	}, nil
}

// ReverseGeocode returns the nearest known hub.
func (m *MockGeolocationProvider) ReverseGeocode(_ context.Context, lat, lon float64) (*providers.GeocodedPlace, error) {
	best := knownPlaces[0]
	bestDist := math.MaxFloat64
	for _, known := range knownPlaces {
		d := haversineKm(lat, lon, known.lat, known.lon)
		if d < bestDist {
			bestDist = d
			best = known
		}
	}
	return &providers.GeocodedPlace{
		DisplayName: best.city + ", " + best.state + ", United States",
		City:        best.city,
		State:       best.state,
		Country:     "United States",
		Coordinates: providers.Coordinates{Latitude: lat, Longitude: lon},
	}, nil
}

// DriveTime estimates driving duration assuming 80 km/h over the straight-line
// distance.
func (m *MockGeolocationProvider) DriveTime(_ context.Context, from, to providers.Coordinates) (*providers.Route, error) {
	distance := haversineKm(from.Latitude, from.Longitude, to.Latitude, to.Longitude)
	hours := distance / 80.0
	return &providers.Route{
		Duration:   time.Duration(hours * float64(time.Hour)),
		DistanceKm: distance,
	}, nil
}

func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKm = 6371.0

	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}
