package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/TejPotu/case-twin/internal/domain/entities"
	"github.com/TejPotu/case-twin/internal/domain/providers"
)

type fakeWebSearch struct {
	results   []providers.WebResult
	err       error
	lastQuery string
	lastCount int
}

func (f *fakeWebSearch) Search(_ context.Context, query string, count int) ([]providers.WebResult, error) {
	f.lastQuery = query
	f.lastCount = count
	return f.results, f.err
}

type fakeGeo struct {
	places   map[string]*providers.GeocodedPlace
	reverse  *providers.GeocodedPlace
	route    *providers.Route
	geocoded []string
	reversed int
}

func (f *fakeGeo) Geocode(_ context.Context, place string) (*providers.GeocodedPlace, error) {
	f.geocoded = append(f.geocoded, place)
	if p, ok := f.places[place]; ok {
		return p, nil
	}
	return nil, errors.New("no match")
}

func (f *fakeGeo) ReverseGeocode(_ context.Context, _, _ float64) (*providers.GeocodedPlace, error) {
	f.reversed++
	if f.reverse == nil {
		return nil, errors.New("no match")
	}
	return f.reverse, nil
}

func (f *fakeGeo) DriveTime(_ context.Context, _, _ providers.Coordinates) (*providers.Route, error) {
	if f.route == nil {
		return nil, errors.New("routing down")
	}
	return f.route, nil
}

func TestFindCentersRequiresDiagnosis(t *testing.T) {
	svc := NewHospitalRoutingService(&fakeWebSearch{}, &fakeGeo{})

	if _, err := svc.FindCenters(context.Background(), entities.HospitalQuery{}); err == nil {
		t.Fatal("expected error for missing diagnosis, got nil")
	}
}

func TestFindCentersSearchFailureFallsBack(t *testing.T) {
	search := &fakeWebSearch{err: errors.New("api down")}
	svc := NewHospitalRoutingService(search, &fakeGeo{})

	centers, err := svc.FindCenters(context.Background(), entities.HospitalQuery{Diagnosis: "paragonimiasis"})
	if err != nil {
		t.Fatalf("expected fallback, got error: %v", err)
	}
	if len(centers) != 3 {
		t.Fatalf("expected 3 fallback centers, got %d", len(centers))
	}
	if centers[0].Name != "Mayo Clinic - Rochester" {
		t.Errorf("expected Mayo Clinic - Rochester first, got %q", centers[0].Name)
	}
	if !strings.Contains(centers[0].Reason, "paragonimiasis") {
		t.Errorf("expected diagnosis in fallback reason, got %q", centers[0].Reason)
	}
}

func TestFindCentersEmptyResultsFallBack(t *testing.T) {
	svc := NewHospitalRoutingService(&fakeWebSearch{}, &fakeGeo{})

	centers, err := svc.FindCenters(context.Background(), entities.HospitalQuery{Diagnosis: "tb"})
	if err != nil {
		t.Fatalf("expected fallback, got error: %v", err)
	}
	if len(centers) != 3 {
		t.Fatalf("expected 3 fallback centers, got %d", len(centers))
	}
}

func TestFindCentersBuildsQueryFromLocation(t *testing.T) {
	search := &fakeWebSearch{err: errors.New("skip results")}
	geo := &fakeGeo{}
	svc := NewHospitalRoutingService(search, geo)

	_, _ = svc.FindCenters(context.Background(), entities.HospitalQuery{
		Diagnosis:   "lung abscess",
		Location:    "Orlando, FL",
		Equipment:   "interventional radiology",
		MaxDistance: "50",
	})

	want := "top hospitals medical centers Orlando, FL within 50 miles treating lung abscess interventional radiology"
	if search.lastQuery != want {
		t.Errorf("expected query %q, got %q", want, search.lastQuery)
	}
	if search.lastCount != 10 {
		t.Errorf("expected count 10, got %d", search.lastCount)
	}
}

func TestFindCentersDefaultsToUnitedStates(t *testing.T) {
	search := &fakeWebSearch{err: errors.New("skip results")}
	svc := NewHospitalRoutingService(search, &fakeGeo{})

	_, _ = svc.FindCenters(context.Background(), entities.HospitalQuery{Diagnosis: "tb"})

	if !strings.Contains(search.lastQuery, "United States") {
		t.Errorf("expected United States in query, got %q", search.lastQuery)
	}
}

func TestFindCentersReverseGeocodesCoordinateLocation(t *testing.T) {
	search := &fakeWebSearch{err: errors.New("skip results")}
	geo := &fakeGeo{
		reverse: &providers.GeocodedPlace{City: "Orlando", State: "Florida"},
	}
	svc := NewHospitalRoutingService(search, geo)

	_, _ = svc.FindCenters(context.Background(), entities.HospitalQuery{
		Diagnosis: "tb",
		Location:  "28.5383, -81.3792",
	})

	if geo.reversed != 1 {
		t.Fatalf("expected 1 reverse geocode call, got %d", geo.reversed)
	}
	if !strings.Contains(search.lastQuery, "Orlando, Florida") {
		t.Errorf("expected reverse geocoded city in query, got %q", search.lastQuery)
	}
}

func TestFindCentersRanksResults(t *testing.T) {
	search := &fakeWebSearch{results: []providers.WebResult{
		{Title: "Orlando Health | Best in Florida", URL: "https://orlandohealth.com", Description: "Comprehensive pulmonary program."},
		{Title: "AdventHealth Orlando - Overview", URL: "https://adventhealth.com", Snippets: []string{"Thoracic surgery center."}},
	}}
	geo := &fakeGeo{
		places: map[string]*providers.GeocodedPlace{
			"Orlando Health, Orlando":       {Coordinates: providers.Coordinates{Latitude: 28.53, Longitude: -81.38}},
			"AdventHealth Orlando, Orlando": {Coordinates: providers.Coordinates{Latitude: 28.57, Longitude: -81.36}},
			"Orlando":                       {Coordinates: providers.Coordinates{Latitude: 28.54, Longitude: -81.38}},
		},
		route: &providers.Route{Duration: 45 * time.Minute, DistanceKm: 20},
	}
	svc := NewHospitalRoutingService(search, geo)

	centers, err := svc.FindCenters(context.Background(), entities.HospitalQuery{
		Diagnosis: "paragonimiasis",
		Location:  "Orlando",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(centers) != 2 {
		t.Fatalf("expected 2 centers, got %d", len(centers))
	}
	if centers[0].Name != "Orlando Health" {
		t.Errorf("expected title prefix as name, got %q", centers[0].Name)
	}
	if centers[0].Capability != "99%" || centers[1].Capability != "98%" {
		t.Errorf("expected descending capability, got %q and %q", centers[0].Capability, centers[1].Capability)
	}
	if centers[0].Travel != "45m" {
		t.Errorf("expected 45m travel, got %q", centers[0].Travel)
	}
	if centers[0].Latitude != 28.53 {
		t.Errorf("expected geocoded latitude 28.53, got %v", centers[0].Latitude)
	}
	if centers[1].Reason != "Thoracic surgery center." {
		t.Errorf("expected snippet reason, got %q", centers[1].Reason)
	}
}

func TestFindCentersDeduplicatesNames(t *testing.T) {
	search := &fakeWebSearch{results: []providers.WebResult{
		{Title: "Mass General - Pulmonology", URL: "https://massgeneral.org/a"},
		{Title: "Mass General | Visiting", URL: "https://massgeneral.org/b"},
	}}
	svc := NewHospitalRoutingService(search, &fakeGeo{})

	centers, err := svc.FindCenters(context.Background(), entities.HospitalQuery{Diagnosis: "tb"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(centers) != 1 {
		t.Fatalf("expected 1 center after dedupe, got %d", len(centers))
	}
}

func TestFindCentersGenericTitleUsesDomainName(t *testing.T) {
	search := &fakeWebSearch{results: []providers.WebResult{
		{Title: "MRI and Imaging Services", URL: "https://www.americanhealthimaging.com/locations"},
	}}
	svc := NewHospitalRoutingService(search, &fakeGeo{})

	centers, err := svc.FindCenters(context.Background(), entities.HospitalQuery{Diagnosis: "tb"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if centers[0].Name != "American Health Imaging Hospital" {
		t.Errorf("expected domain-derived name, got %q", centers[0].Name)
	}
}

func TestFindCentersJitterStaysNearOrigin(t *testing.T) {
	search := &fakeWebSearch{results: []providers.WebResult{
		{Title: "Unmappable Hospital", URL: "https://example.org"},
	}}
	svc := NewHospitalRoutingService(search, &fakeGeo{})

	centers, err := svc.FindCenters(context.Background(), entities.HospitalQuery{Diagnosis: "tb"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(centers[0].Latitude-defaultOriginLat) > 0.06 {
		t.Errorf("expected latitude near origin, got %v", centers[0].Latitude)
	}
	if math.Abs(centers[0].Longitude-defaultOriginLng) > 0.06 {
		t.Errorf("expected longitude near origin, got %v", centers[0].Longitude)
	}
}

func TestFormatTravel(t *testing.T) {
	cases := map[time.Duration]string{
		45 * time.Minute:             "45m",
		2*time.Hour + 10*time.Minute: "2h 10m",
		time.Hour:                    "1h 0m",
		90 * time.Second:             "1m",
	}
	for d, want := range cases {
		if got := formatTravel(d); got != want {
			t.Errorf("formatTravel(%v): expected %q, got %q", d, want, got)
		}
	}
}
