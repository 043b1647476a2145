package services

import (
	"github.com/TejPotu/case-twin/internal/domain/entities"
)

// ReadyThreshold is the completeness percentage at which a case profile is
// considered sufficient for twin search and downstream use.
const ReadyThreshold = 60

// CompletenessScore is the result of scoring a case profile.
type CompletenessScore struct {
	Percent       int      `json:"percent"`
	FilledCount   int      `json:"filled_count"`
	TotalCount    int      `json:"total_count"`
	MissingLabels []string `json:"missing_labels"`
}

// ScoreProfile computes how complete a case profile is. Weighting is uniform:
// one point per scoreable field, filled over total. Identity fields and extra
// fields are excluded so the percentage stays comparable across turns even
// when the schema is expanded.
func ScoreProfile(p *entities.CaseProfile) CompletenessScore {
	score := CompletenessScore{}
	if p == nil {
		p = &entities.CaseProfile{}
	}

	for _, def := range profileFields {
		if !def.Scored {
			continue
		}
		score.TotalCount++
		if entities.IsEmptyValue(def.Get(p)) {
			score.MissingLabels = append(score.MissingLabels, def.Label)
			continue
		}
		score.FilledCount++
	}

	if score.TotalCount > 0 {
		score.Percent = score.FilledCount * 100 / score.TotalCount
	}
	return score
}

// IsReady reports whether a percentage meets the readiness threshold.
func IsReady(percent int) bool {
	return percent >= ReadyThreshold
}
