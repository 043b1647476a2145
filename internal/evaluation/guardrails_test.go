package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuardrails_PassingRun(t *testing.T) {
	config := GuardrailConfig{
		MinAccuracy: 0.6,
		MinCoverage: 0.8,
	}
	g := NewGuardrails(config)

	summary := &EvalSummary{
		TotalCases:  10,
		AvgAccuracy: 0.75,
		AvgCoverage: 0.9,
	}

	assert.Empty(t, g.Check(summary))
}

func TestGuardrails_LowAccuracy(t *testing.T) {
	config := GuardrailConfig{
		MinAccuracy: 0.6,
	}
	g := NewGuardrails(config)

	summary := &EvalSummary{
		TotalCases:  10,
		AvgAccuracy: 0.4,
		AvgCoverage: 0.9,
	}

	violations := g.Check(summary)
	assert.Len(t, violations, 1)
	assert.Contains(t, violations[0], "accuracy")
}

func TestGuardrails_TooManyFailures(t *testing.T) {
	g := NewGuardrails(GuardrailConfig{})

	summary := &EvalSummary{
		TotalCases:  10,
		FailedCases: 3,
	}

	// Default failed-share ceiling is 10%
	violations := g.Check(summary)
	assert.Len(t, violations, 1)
	assert.Contains(t, violations[0], "failed share")
}
