package evaluation

import "fmt"

type GuardrailConfig struct {
	MinAccuracy    float64
	MinCoverage    float64
	MaxFailedShare float64
}

type Guardrails struct {
	config GuardrailConfig
}

func NewGuardrails(config GuardrailConfig) *Guardrails {
	if config.MaxFailedShare <= 0 {
		config.MaxFailedShare = 0.1
	}
	return &Guardrails{config: config}
}

// Check returns the guardrails the summary violates, one message per breach.
// An empty slice means the run passes.
func (g *Guardrails) Check(summary *EvalSummary) []string {
	var violations []string

	if summary.AvgAccuracy < g.config.MinAccuracy {
		violations = append(violations, fmt.Sprintf("accuracy %.3f below minimum %.3f", summary.AvgAccuracy, g.config.MinAccuracy))
	}
	if summary.AvgCoverage < g.config.MinCoverage {
		violations = append(violations, fmt.Sprintf("coverage %.3f below minimum %.3f", summary.AvgCoverage, g.config.MinCoverage))
	}
	if summary.TotalCases > 0 {
		failedShare := float64(summary.FailedCases) / float64(summary.TotalCases)
		if failedShare > g.config.MaxFailedShare {
			violations = append(violations, fmt.Sprintf("failed share %.3f above maximum %.3f", failedShare, g.config.MaxFailedShare))
		}
	}

	return violations
}
