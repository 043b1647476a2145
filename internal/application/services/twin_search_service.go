package services

import (
	"context"
	"sort"
	"strings"

	"github.com/TejPotu/case-twin/internal/domain/entities"
	"github.com/TejPotu/case-twin/internal/domain/providers"
	"github.com/TejPotu/case-twin/internal/domain/repositories"
	apperrors "github.com/TejPotu/case-twin/pkg/errors"
)

const (
	defaultTwinLimit   = 5
	candidateMultiple  = 3
	imageWeight        = 0.70
	diagnosisWeight    = 0.12
	modalityWeight     = 0.06
	bodyRegionWeight   = 0.06
	sexWeight          = 0.03
	ageWeight          = 0.03
	ageProximitySpread = 30.0
)

// TwinSearchService finds historical twin cases for an uploaded study. The
// image embedding drives candidate retrieval; the case profile re-ranks the
// candidates so clinical context outweighs raw pixel similarity at the margin.
type TwinSearchService struct {
	embedder providers.EmbeddingProvider
	repo     repositories.CaseSearchRepository
}

// NewTwinSearchService creates a new twin search service.
func NewTwinSearchService(embedder providers.EmbeddingProvider, repo repositories.CaseSearchRepository) *TwinSearchService {
	return &TwinSearchService{embedder: embedder, repo: repo}
}

// Search embeds the image, retrieves nearest candidates, and re-ranks them
// against the profile. A nil profile degrades to pure image similarity.
func (s *TwinSearchService) Search(ctx context.Context, image []byte, profile *entities.CaseProfile, limit int) ([]*entities.TwinCase, error) {
	if len(image) == 0 {
		return nil, apperrors.NewValidationError("an image is required for twin search")
	}
	if s.embedder == nil || s.repo == nil {
		return nil, apperrors.NewUnavailableError("twin search is not configured", nil)
	}
	if limit <= 0 {
		limit = defaultTwinLimit
	}

	embedding, err := s.embedder.EmbedImage(ctx, image)
	if err != nil {
		return nil, apperrors.NewUnavailableError("image embedding model is unavailable", err)
	}

	candidates, err := s.repo.SearchByVector(ctx, embedding, limit*candidateMultiple)
	if err != nil {
		return nil, apperrors.NewExternalError("twin case search failed", err)
	}

	for _, candidate := range candidates {
		rescore(candidate, profile)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

// rescore blends the image similarity with profile affinity. The breakdown
// records each component so the UI can show why a twin matched.
func rescore(twin *entities.TwinCase, profile *entities.CaseProfile) {
	imageSim := twin.Score
	breakdown := map[string]float64{"image_similarity": imageSim}
	score := imageWeight * imageSim

	if profile != nil {
		if affinity := diagnosisAffinity(twin, profile); affinity > 0 {
			breakdown["diagnosis"] = affinity
			score += diagnosisWeight * affinity
		}
		if twin.Modality != "" && strings.EqualFold(twin.Modality, profile.Study.Modality) {
			breakdown["modality"] = 1
			score += modalityWeight
		}
		if twin.BodyRegion != "" && strings.EqualFold(twin.BodyRegion, profile.Study.BodyRegion) {
			breakdown["body_region"] = 1
			score += bodyRegionWeight
		}
		if twin.Sex != "" && strings.EqualFold(twin.Sex, profile.Patient.Sex) {
			breakdown["sex"] = 1
			score += sexWeight
		}
		if affinity := ageAffinity(twin.AgeYears, profile.Patient.AgeYears); affinity > 0 {
			breakdown["age"] = affinity
			score += ageWeight * affinity
		}
	}

	twin.Score = score
	twin.ScoreBreakdown = breakdown
}

func diagnosisAffinity(twin *entities.TwinCase, profile *entities.CaseProfile) float64 {
	target := strings.ToLower(profile.Assessment.DiagnosisPrimary)
	if target == "" {
		return 0
	}
	candidate := strings.ToLower(twin.DiagnosisPrimary)
	if candidate == "" {
		return 0
	}
	if candidate == target {
		return 1
	}
	if strings.Contains(candidate, target) || strings.Contains(target, candidate) {
		return 0.5
	}
	return 0
}

func ageAffinity(twinAge, profileAge int) float64 {
	if twinAge <= 0 || profileAge <= 0 {
		return 0
	}
	diff := float64(twinAge - profileAge)
	if diff < 0 {
		diff = -diff
	}
	if diff >= ageProximitySpread {
		return 0
	}
	return 1 - diff/ageProximitySpread
}
