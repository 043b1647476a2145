package services

import (
	"context"
	"crypto/md5"
	"encoding/binary"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/TejPotu/case-twin/internal/domain/entities"
	"github.com/TejPotu/case-twin/internal/domain/providers"
	"github.com/TejPotu/case-twin/internal/infrastructure/observability"
	apperrors "github.com/TejPotu/case-twin/pkg/errors"
)

const (
	maxCareCenters = 10

	// Geographic center of the contiguous United States, used when the
	// caller gives no location or geocoding fails.
	defaultOriginLat = 39.8283
	defaultOriginLng = -98.5795
)

// Department-level page titles that should not be used as a facility name.
var genericTitleTerms = []string{
	"interventional", "radiology", "imaging", "mri", "ct",
	"services", "treatment", "clinic",
}

// Inserts spaces around common medical words so a squished domain like
// "americanhealthimaging" reads as "American Health Imaging".
var domainWordRe = regexp.MustCompile(`(?i)(american|national|regional|state|county|city|health|imaging|medical|care|hospital|clinic|center|florida|new|york|texas|memorial|university|mount|sinai|ny|nyp|nsuh|tmh|general|childrens|cancer|institute|pediatric)`)

// HospitalRoutingService discovers treatment centers for a diagnosis through
// hosted web search and ranks them with real geocoding and driving ETAs.
type HospitalRoutingService struct {
	search providers.WebSearchProvider
	geo    providers.GeolocationProvider
}

// NewHospitalRoutingService creates a new hospital routing service.
func NewHospitalRoutingService(search providers.WebSearchProvider, geo providers.GeolocationProvider) *HospitalRoutingService {
	return &HospitalRoutingService{search: search, geo: geo}
}

// FindCenters returns up to ten ranked care centers for the query. When web
// search is unavailable or yields nothing usable it returns a static set of
// national referral centers instead of an error.
func (s *HospitalRoutingService) FindCenters(ctx context.Context, query entities.HospitalQuery) ([]entities.CareCenter, error) {
	diagnosis := strings.TrimSpace(query.Diagnosis)
	if diagnosis == "" {
		return nil, apperrors.NewValidationError("diagnosis is required")
	}

	logger := observability.GetLogger()

	if s.search == nil {
		logger.Warn().Msg("Web search provider not configured, using fallback centers")
		return fallbackCenters(diagnosis), nil
	}

	origin, placeName := s.resolveOrigin(ctx, query.Location)
	searchQuery := buildHospitalQuery(diagnosis, placeName, query)

	results, err := s.search.Search(ctx, searchQuery, maxCareCenters)
	if err != nil {
		logger.Warn().Err(err).Str("query", searchQuery).Msg("Hospital web search failed, using fallback centers")
		return fallbackCenters(diagnosis), nil
	}

	centers := s.buildCenters(ctx, results, origin, placeName)
	if len(centers) == 0 {
		logger.Warn().Str("query", searchQuery).Msg("Hospital web search returned no usable results, using fallback centers")
		return fallbackCenters(diagnosis), nil
	}
	return centers, nil
}

// resolveOrigin turns the free-text location into coordinates and a
// human-readable place string for the search query. A "lat, lng" location is
// reverse geocoded so the query still names a city.
func (s *HospitalRoutingService) resolveOrigin(ctx context.Context, location string) (providers.Coordinates, string) {
	origin := providers.Coordinates{Latitude: defaultOriginLat, Longitude: defaultOriginLng}
	location = strings.TrimSpace(location)
	if location == "" {
		return origin, "United States"
	}

	placeName := location
	if lat, lng, ok := parseCoordinates(location); ok {
		origin.Latitude = lat
		origin.Longitude = lng
		if s.geo != nil {
			if place, err := s.geo.ReverseGeocode(ctx, lat, lng); err == nil && place != nil {
				city := firstNonEmpty(place.City, place.State)
				if city != "" {
					placeName = strings.TrimSuffix(city+", "+place.State, ", ")
				}
			} else if err != nil {
				observability.GetLogger().Warn().Err(err).Msg("Reverse geocoding origin failed")
			}
		}
		return origin, placeName
	}

	if s.geo != nil {
		if place, err := s.geo.Geocode(ctx, location); err == nil && place != nil {
			origin = place.Coordinates
		} else if err != nil {
			observability.GetLogger().Warn().Err(err).Str("location", location).Msg("Geocoding origin failed")
		}
	}
	return origin, placeName
}

func (s *HospitalRoutingService) buildCenters(ctx context.Context, results []providers.WebResult, origin providers.Coordinates, placeName string) []entities.CareCenter {
	centers := make([]entities.CareCenter, 0, maxCareCenters)
	seen := make(map[string]bool)

	for i, hit := range results {
		if len(centers) >= maxCareCenters {
			break
		}

		name := extractCenterName(hit.Title, hit.URL, len(centers)+1)
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true

		coords := s.locateCenter(ctx, name, placeName, origin)
		travel := fmt.Sprintf("%dh %dm", 1+i, (i*15)%60)
		if s.geo != nil {
			if route, err := s.geo.DriveTime(ctx, origin, coords); err == nil && route != nil {
				travel = formatTravel(route.Duration)
			}
		}

		centers = append(centers, entities.CareCenter{
			Name:       name,
			URL:        hit.URL,
			Capability: strconv.Itoa(99-i) + "%",
			Travel:     travel,
			Reason:     buildReason(hit),
			Latitude:   coords.Latitude,
			Longitude:  coords.Longitude,
		})
	}
	return centers
}

// locateCenter geocodes a facility, trying the name with geographic context
// first and the bare name second. When both fail it falls back to a
// deterministic offset near the origin so the facility still maps sensibly.
func (s *HospitalRoutingService) locateCenter(ctx context.Context, name, placeName string, origin providers.Coordinates) providers.Coordinates {
	if s.geo != nil {
		cleanName := strings.ReplaceAll(name, " Hospital", "")
		for _, q := range []string{cleanName + ", " + placeName, name} {
			if place, err := s.geo.Geocode(ctx, q); err == nil && place != nil {
				return place.Coordinates
			}
		}
	}
	latJitter, lngJitter := nameJitter(name)
	return providers.Coordinates{
		Latitude:  origin.Latitude + latJitter,
		Longitude: origin.Longitude + lngJitter,
	}
}

func buildHospitalQuery(diagnosis, placeName string, query entities.HospitalQuery) string {
	distance := ""
	if strings.TrimSpace(query.MaxDistance) != "" {
		distance = fmt.Sprintf(" within %s miles", strings.TrimSpace(query.MaxDistance))
	}
	q := fmt.Sprintf("top hospitals medical centers %s%s treating %s", placeName, distance, diagnosis)
	if strings.TrimSpace(query.Equipment) != "" {
		q += " " + strings.TrimSpace(query.Equipment)
	}
	return q
}

// extractCenterName pulls a facility name from a search result title,
// stripping site suffixes. Department-only titles are replaced by a name
// derived from the URL domain.
func extractCenterName(title, rawURL string, ordinal int) string {
	if title == "" {
		title = fmt.Sprintf("Top Hospital %d", ordinal)
	}
	name := strings.TrimSpace(strings.SplitN(strings.SplitN(title, " | ", 2)[0], " - ", 2)[0])

	lower := strings.ToLower(name)
	for _, term := range genericTitleTerms {
		if strings.Contains(lower, term) {
			if derived := nameFromDomain(rawURL); derived != "" {
				name = derived
			}
			break
		}
	}

	name = strings.TrimSpace(strings.ReplaceAll(name, "...", ""))
	if name == "" {
		name = fmt.Sprintf("Medical Center %d", ordinal)
	}
	return name
}

func nameFromDomain(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return ""
	}
	domain := strings.TrimPrefix(parsed.Host, "www.")
	domain = strings.SplitN(domain, ".", 2)[0]
	if domain == "" {
		return ""
	}
	spaced := domainWordRe.ReplaceAllString(domain, " $1 ")
	return titleCase(strings.Join(strings.Fields(spaced), " ")) + " Hospital"
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

func buildReason(hit providers.WebResult) string {
	reason := hit.Description
	if reason == "" {
		reason = strings.Join(hit.Snippets, " ")
	}
	if reason == "" {
		reason = "Specialized care facility."
	}
	if len(reason) > 350 {
		reason = reason[:350] + "..."
	}
	return reason
}

func formatTravel(d time.Duration) string {
	total := int(d.Minutes())
	hours := total / 60
	minutes := total % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// parseCoordinates accepts "lat, lng" strings from map click handlers.
func parseCoordinates(location string) (float64, float64, bool) {
	parts := strings.SplitN(location, ",", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lng, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return lat, lng, true
}

// nameJitter derives a stable offset within about 0.06 degrees from the
// facility name so ungeocodable facilities cluster near the origin instead of
// stacking on one point.
func nameJitter(name string) (float64, float64) {
	sum := md5.Sum([]byte(name))
	h := binary.BigEndian.Uint32(sum[:4])
	lat := float64(int(h%120)-60) / 1000.0
	lng := float64(int((h/120)%120)-60) / 1000.0
	return lat, lng
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func fallbackCenters(diagnosis string) []entities.CareCenter {
	return []entities.CareCenter{
		{
			Name:       "Mayo Clinic - Rochester",
			URL:        "https://www.mayoclinic.org/patient-visitor-guide/minnesota",
			Capability: "100%",
			Travel:     "2h 10m",
			Reason:     "Interventional Pulmonology + Leading care for " + diagnosis,
			Latitude:   44.0227,
			Longitude:  -92.4667,
		},
		{
			Name:       "Cleveland Clinic",
			URL:        "https://my.clevelandclinic.org/locations",
			Capability: "95%",
			Travel:     "1h 55m",
			Reason:     "Thoracic surgery + Clinical trials",
			Latitude:   41.5034,
			Longitude:  -81.6206,
		},
		{
			Name:       "Mass General",
			URL:        "https://www.massgeneral.org/",
			Capability: "90%",
			Travel:     "3h 05m",
			Reason:     "Radiation oncology + Research program",
			Latitude:   42.3621,
			Longitude:  -71.0691,
		},
	}
}
