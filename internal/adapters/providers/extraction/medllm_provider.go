package extraction

import (
	"context"
	"fmt"
	"strings"

	"github.com/TejPotu/case-twin/internal/domain/entities"
	"github.com/TejPotu/case-twin/internal/domain/providers"
	"github.com/TejPotu/case-twin/internal/infrastructure/observability"
)

const (
	insightPromptTemplate = "Analyze this chest X-ray image in the context of these clinical notes: '%s'. " +
		"Identify key findings like consolidation, effusion, or cardiomegaly. Be structured."
	insightMaxTokens = 300
	oneLinerMaxChars = 200
)

// MedLLMProvider layers a vision-language model over the heuristic extractor.
// When the turn carries an image, the model's reading of the image is folded
// into the text before the pattern pass so image-only findings still land in
// the profile.
type MedLLMProvider struct {
	heuristic *HeuristicProvider
	insight   providers.InsightProvider
}

// NewMedLLMProvider creates a model-backed extraction provider.
func NewMedLLMProvider(insight providers.InsightProvider) *MedLLMProvider {
	return &MedLLMProvider{
		heuristic: NewHeuristicProvider(),
		insight:   insight,
	}
}

// Extract runs the model over the first image (if any), then applies the
// pattern pass to the combined text. A model failure on a text-bearing turn
// degrades to heuristic extraction instead of failing the turn.
func (p *MedLLMProvider) Extract(ctx context.Context, input providers.ExtractionInput) (*entities.CaseProfile, error) {
	var modelInsight string
	if len(input.Images) > 0 && p.insight != nil {
		text, err := p.insight.GenerateInsight(ctx, providers.InsightRequest{
			Image:     input.Images[0].Data,
			Prompt:    fmt.Sprintf(insightPromptTemplate, input.Text),
			MaxTokens: insightMaxTokens,
		})
		if err != nil {
			if strings.TrimSpace(input.Text) == "" && input.Notes == nil {
				return nil, fmt.Errorf("%w: %v", providers.ErrExtractionUnavailable, err)
			}
			observability.GetLogger().Warn().Err(err).Msg("insight model failed; falling back to pattern extraction")
		} else {
			modelInsight = strings.TrimSpace(text)
		}
	}

	enriched := input
	if modelInsight != "" {
		enriched.Text = strings.TrimSpace(input.Text + "\n" + modelInsight)
	}

	profile, err := p.heuristic.Extract(ctx, enriched)
	if err != nil {
		return nil, err
	}

	if modelInsight != "" && profile.Summary.OneLiner == "" {
		oneLiner := modelInsight
		if len(oneLiner) > oneLinerMaxChars {
			oneLiner = oneLiner[:oneLinerMaxChars] + "..."
		}
		profile.Summary.OneLiner = oneLiner
	}

	return profile, nil
}
