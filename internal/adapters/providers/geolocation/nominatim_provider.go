package geolocation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/TejPotu/case-twin/internal/domain/providers"
)

const (
	defaultNominatimURL    = "https://nominatim.openstreetmap.org"
	defaultOSRMURL         = "https://router.project-osrm.org"
	defaultUserAgent       = "case-twin/1.0"
	defaultGeocodeCacheTTL = 60 * 60 * 24 * 30
	defaultRouteCacheTTL   = 60 * 60 * 24
	defaultHTTPTimeout     = 8 * time.Second
)

// NominatimProvider implements the GeolocationProvider with the OpenStreetMap
// Nominatim geocoder and the OSRM routing engine.
type NominatimProvider struct {
	nominatimURL string
	osrmURL      string
	userAgent    string
	httpClient   *http.Client
	cache        providers.CacheProvider
}

// NewNominatimProvider creates a new OpenStreetMap-backed geolocation provider.
func NewNominatimProvider(nominatimURL, osrmURL, userAgent string, cache providers.CacheProvider) providers.GeolocationProvider {
	return NewNominatimProviderWithOptions(nominatimURL, osrmURL, userAgent, cache, nil)
}

// NewNominatimProviderWithOptions allows overriding the HTTP client (used for tests).
func NewNominatimProviderWithOptions(nominatimURL, osrmURL, userAgent string, cache providers.CacheProvider, httpClient *http.Client) providers.GeolocationProvider {
	if strings.TrimSpace(nominatimURL) == "" {
		nominatimURL = defaultNominatimURL
	}
	if strings.TrimSpace(osrmURL) == "" {
		osrmURL = defaultOSRMURL
	}
	if strings.TrimSpace(userAgent) == "" {
		userAgent = defaultUserAgent
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &NominatimProvider{
		nominatimURL: strings.TrimSuffix(nominatimURL, "/"),
		osrmURL:      strings.TrimSuffix(osrmURL, "/"),
		userAgent:    userAgent,
		httpClient:   httpClient,
		cache:        cache,
	}
}

// Geocode resolves a place name to coordinates.
func (n *NominatimProvider) Geocode(ctx context.Context, place string) (*providers.GeocodedPlace, error) {
	trimmed := strings.TrimSpace(place)
	if trimmed == "" {
		return nil, fmt.Errorf("place is required")
	}

	cacheKey := "geo:v1:geocode:" + hashKey(strings.ToLower(trimmed))
	if cached := n.cachedPlace(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	params := url.Values{}
	params.Set("q", trimmed)
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("addressdetails", "1")

	var results []nominatimResult
	if err := n.doRequest(ctx, n.nominatimURL+"/search?"+params.Encode(), &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no results for place")
	}

	resolved, err := results[0].toPlace()
	if err != nil {
		return nil, err
	}
	n.storePlace(ctx, cacheKey, resolved, defaultGeocodeCacheTTL)
	return resolved, nil
}

// ReverseGeocode resolves coordinates to a place.
func (n *NominatimProvider) ReverseGeocode(ctx context.Context, lat, lon float64) (*providers.GeocodedPlace, error) {
	cacheKey := "geo:v1:reverse:" + hashKey(fmt.Sprintf("%.5f,%.5f", lat, lon))
	if cached := n.cachedPlace(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	params := url.Values{}
	params.Set("lat", fmt.Sprintf("%f", lat))
	params.Set("lon", fmt.Sprintf("%f", lon))
	params.Set("format", "json")
	params.Set("addressdetails", "1")

	var result nominatimResult
	if err := n.doRequest(ctx, n.nominatimURL+"/reverse?"+params.Encode(), &result); err != nil {
		return nil, err
	}
	if result.DisplayName == "" {
		return nil, fmt.Errorf("no results for coordinates")
	}

	resolved, err := result.toPlace()
	if err != nil {
		// Reverse responses may omit lat/lon; fall back to the query point.
		resolved = &providers.GeocodedPlace{
			DisplayName: result.DisplayName,
			City:        result.Address.cityName(),
			State:       result.Address.State,
			Country:     result.Address.Country,
			Coordinates: providers.Coordinates{Latitude: lat, Longitude: lon},
		}
	}
	n.storePlace(ctx, cacheKey, resolved, defaultGeocodeCacheTTL)
	return resolved, nil
}

// DriveTime returns the driving duration and distance between two points.
func (n *NominatimProvider) DriveTime(ctx context.Context, from, to providers.Coordinates) (*providers.Route, error) {
	cacheKey := "geo:v1:route:" + hashKey(fmt.Sprintf("%.5f,%.5f>%.5f,%.5f",
		from.Latitude, from.Longitude, to.Latitude, to.Longitude))
	if n.cache != nil {
		if cached, err := n.cache.Get(ctx, cacheKey); err == nil && len(cached) > 0 {
			var route providers.Route
			if err := json.Unmarshal(cached, &route); err == nil && route.Duration > 0 {
				return &route, nil
			}
		}
	}

	reqURL := fmt.Sprintf("%s/route/v1/driving/%f,%f;%f,%f?overview=false",
		n.osrmURL, from.Longitude, from.Latitude, to.Longitude, to.Latitude)

	var payload osrmResponse
	if err := n.doRequest(ctx, reqURL, &payload); err != nil {
		return nil, err
	}
	if payload.Code != "Ok" || len(payload.Routes) == 0 {
		return nil, fmt.Errorf("routing failed: %s", payload.Code)
	}

	route := &providers.Route{
		Duration:   time.Duration(payload.Routes[0].Duration * float64(time.Second)),
		DistanceKm: payload.Routes[0].Distance / 1000,
	}

	if n.cache != nil {
		if data, err := json.Marshal(route); err == nil {
			_ = n.cache.Set(ctx, cacheKey, data, defaultRouteCacheTTL)
		}
	}
	return route, nil
}

func (n *NominatimProvider) cachedPlace(ctx context.Context, key string) *providers.GeocodedPlace {
	if n.cache == nil {
		return nil
	}
	cached, err := n.cache.Get(ctx, key)
	if err != nil || len(cached) == 0 {
		return nil
	}
	var place providers.GeocodedPlace
	if err := json.Unmarshal(cached, &place); err != nil {
		return nil
	}
	if place.Coordinates.Latitude == 0 && place.Coordinates.Longitude == 0 {
		return nil
	}
	return &place
}

func (n *NominatimProvider) storePlace(ctx context.Context, key string, place *providers.GeocodedPlace, ttl int) {
	if n.cache == nil {
		return
	}
	if data, err := json.Marshal(place); err == nil {
		_ = n.cache.Set(ctx, key, data, ttl)
	}
}

func (n *NominatimProvider) doRequest(ctx context.Context, reqURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build geolocation request: %w", err)
	}
	req.Header.Set("User-Agent", n.userAgent)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("geolocation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("geolocation request returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode geolocation response: %w", err)
	}
	return nil
}

func hashKey(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

type nominatimAddress struct {
	City    string `json:"city"`
	Town    string `json:"town"`
	County  string `json:"county"`
	State   string `json:"state"`
	Country string `json:"country"`
}

func (a nominatimAddress) cityName() string {
	switch {
	case a.City != "":
		return a.City
	case a.Town != "":
		return a.Town
	case a.County != "":
		return a.County
	}
	return a.State
}

type nominatimResult struct {
	Lat         string           `json:"lat"`
	Lon         string           `json:"lon"`
	DisplayName string           `json:"display_name"`
	Address     nominatimAddress `json:"address"`
}

func (r nominatimResult) toPlace() (*providers.GeocodedPlace, error) {
	lat, err := strconv.ParseFloat(r.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude %q", r.Lat)
	}
	lon, err := strconv.ParseFloat(r.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude %q", r.Lon)
	}
	return &providers.GeocodedPlace{
		DisplayName: r.DisplayName,
		City:        r.Address.cityName(),
		State:       r.Address.State,
		Country:     r.Address.Country,
		Coordinates: providers.Coordinates{Latitude: lat, Longitude: lon},
	}, nil
}

type osrmResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Duration float64 `json:"duration"`
		Distance float64 `json:"distance"`
	} `json:"routes"`
}
