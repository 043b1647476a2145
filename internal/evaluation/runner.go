package evaluation

import (
	"context"
	"time"

	"github.com/TejPotu/case-twin/internal/application/services"
	"github.com/TejPotu/case-twin/internal/domain/providers"
)

// Runner runs evaluation across a set of golden cases.
type Runner struct {
	extractor providers.ExtractionProvider
}

func NewRunner(extractor providers.ExtractionProvider) *Runner {
	return &Runner{extractor: extractor}
}

func (r *Runner) Run(ctx context.Context, cases []GoldenCase) (*EvalSummary, error) {
	summary := &EvalSummary{
		TotalCases:   len(cases),
		ByDifficulty: make(map[string]*DifficultySummary),
	}

	for _, gc := range cases {
		start := time.Now()
		profile, err := r.extractor.Extract(ctx, providers.ExtractionInput{Text: gc.Note})
		duration := time.Since(start)

		if err != nil {
			summary.FailedCases++
			continue
		}

		actual := FlattenProfile(profile)

		result := CaseResult{
			CaseID:         gc.ID,
			FieldAccuracy:  FieldAccuracy(gc.Expected, actual),
			FieldCoverage:  FieldCoverage(gc.Expected, actual),
			ExpectedFields: len(gc.Expected),
			Completeness:   services.ScoreProfile(profile).Percent,
			Latency:        duration,
			Mismatches:     Mismatches(gc.Expected, actual),
		}
		result.MatchedFields = result.ExpectedFields - len(result.Mismatches)

		r.updateSummary(summary, gc.Difficulty, result)
	}

	r.finalizeSummary(summary)
	return summary, nil
}

func (r *Runner) updateSummary(s *EvalSummary, difficulty string, res CaseResult) {
	s.AvgAccuracy += res.FieldAccuracy
	s.AvgCoverage += res.FieldCoverage
	s.AvgCompleteness += float64(res.Completeness)
	s.AvgLatency += res.Latency

	if _, ok := s.ByDifficulty[difficulty]; !ok {
		s.ByDifficulty[difficulty] = &DifficultySummary{}
	}
	ds := s.ByDifficulty[difficulty]
	ds.Count++
	ds.AvgAccuracy += res.FieldAccuracy
	ds.AvgCoverage += res.FieldCoverage
}

func (r *Runner) finalizeSummary(s *EvalSummary) {
	scored := s.TotalCases - s.FailedCases
	if scored > 0 {
		n := float64(scored)
		s.AvgAccuracy /= n
		s.AvgCoverage /= n
		s.AvgCompleteness /= n
		s.AvgLatency /= time.Duration(scored)
	}

	for _, ds := range s.ByDifficulty {
		if ds.Count > 0 {
			n := float64(ds.Count)
			ds.AvgAccuracy /= n
			ds.AvgCoverage /= n
		}
	}
}
