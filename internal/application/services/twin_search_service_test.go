package services

import (
	"context"
	"errors"
	"testing"

	"github.com/TejPotu/case-twin/internal/domain/entities"
	apperrors "github.com/TejPotu/case-twin/pkg/errors"
)

type fakeEmbedder struct {
	vector []float32
	err    error
}

func (f *fakeEmbedder) EmbedImage(_ context.Context, _ []byte) ([]float32, error) {
	return f.vector, f.err
}

type fakeCaseSearch struct {
	results []*entities.TwinCase
	err     error
	lastK   int
}

func (f *fakeCaseSearch) InitSchema(_ context.Context) error { return nil }

func (f *fakeCaseSearch) Index(_ context.Context, _ *entities.CaseDocument) error { return nil }

func (f *fakeCaseSearch) SearchByVector(_ context.Context, _ []float32, limit int) ([]*entities.TwinCase, error) {
	f.lastK = limit
	return f.results, f.err
}

func (f *fakeCaseSearch) Delete(_ context.Context, _ string) error { return nil }

func TestTwinSearchRequiresImage(t *testing.T) {
	svc := NewTwinSearchService(&fakeEmbedder{}, &fakeCaseSearch{})
	if _, err := svc.Search(context.Background(), nil, nil, 5); err == nil {
		t.Error("expected an error for a missing image")
	}
}

func TestTwinSearchEmbedderUnavailable(t *testing.T) {
	svc := NewTwinSearchService(&fakeEmbedder{err: errors.New("503")}, &fakeCaseSearch{})
	_, err := svc.Search(context.Background(), []byte{1}, nil, 5)
	if err == nil {
		t.Fatal("expected an error")
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Type != apperrors.ErrorTypeUnavailable {
		t.Errorf("expected an unavailable error, got %v", err)
	}
}

func TestTwinSearchProfileReRanks(t *testing.T) {
	candidates := []*entities.TwinCase{
		{ID: "a", DiagnosisPrimary: "lung malignancy", Modality: "CT", Score: 0.90},
		{ID: "b", DiagnosisPrimary: "community-acquired pneumonia", Modality: "CXR", BodyRegion: "thorax", Sex: "male", AgeYears: 50, Score: 0.85},
	}
	repo := &fakeCaseSearch{results: candidates}
	svc := NewTwinSearchService(&fakeEmbedder{vector: []float32{0.1}}, repo)

	profile := richProfile()
	got, err := svc.Search(context.Background(), []byte{1}, profile, 2)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got[0].ID != "b" {
		t.Errorf("expected the profile-aligned case first, got %q", got[0].ID)
	}
	if got[0].ScoreBreakdown["diagnosis"] != 0.5 {
		t.Errorf("expected partial diagnosis affinity, got %v", got[0].ScoreBreakdown)
	}
	if _, ok := got[0].ScoreBreakdown["image_similarity"]; !ok {
		t.Error("expected image similarity in the breakdown")
	}
}

func TestTwinSearchNilProfilePureImageOrder(t *testing.T) {
	candidates := []*entities.TwinCase{
		{ID: "a", Score: 0.90},
		{ID: "b", Score: 0.85},
	}
	svc := NewTwinSearchService(&fakeEmbedder{vector: []float32{0.1}}, &fakeCaseSearch{results: candidates})

	got, err := svc.Search(context.Background(), []byte{1}, nil, 2)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got[0].ID != "a" || got[1].ID != "b" {
		t.Errorf("expected image-similarity order, got %q then %q", got[0].ID, got[1].ID)
	}
}

func TestTwinSearchOverfetchesCandidates(t *testing.T) {
	repo := &fakeCaseSearch{}
	svc := NewTwinSearchService(&fakeEmbedder{vector: []float32{0.1}}, repo)

	if _, err := svc.Search(context.Background(), []byte{1}, nil, 5); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if repo.lastK != 15 {
		t.Errorf("expected 15 candidates requested, got %d", repo.lastK)
	}
}

func TestAgeAffinity(t *testing.T) {
	cases := []struct {
		twin, profile int
		want          float64
	}{
		{52, 52, 1},
		{52, 67, 0.5},
		{52, 90, 0},
		{0, 52, 0},
	}
	for _, tc := range cases {
		if got := ageAffinity(tc.twin, tc.profile); got != tc.want {
			t.Errorf("ageAffinity(%d, %d): expected %v, got %v", tc.twin, tc.profile, tc.want, got)
		}
	}
}
