package extraction

import (
	"github.com/TejPotu/case-twin/internal/domain/providers"
)

// ProviderConfig configures extraction providers.
type ProviderConfig struct {
	Provider string
	Insight  providers.InsightProvider
}

// NewExtractionProvider selects the configured extraction provider. The
// heuristic extractor is the default and the fallback when no insight model
// is wired.
func NewExtractionProvider(cfg ProviderConfig) providers.ExtractionProvider {
	if cfg.Provider == "medllm" && cfg.Insight != nil {
		return NewMedLLMProvider(cfg.Insight)
	}
	return NewHeuristicProvider()
}
