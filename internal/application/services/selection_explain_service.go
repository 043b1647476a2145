package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/TejPotu/case-twin/internal/domain/providers"
	"github.com/TejPotu/case-twin/internal/infrastructure/observability"
	apperrors "github.com/TejPotu/case-twin/pkg/errors"
)

const (
	explainMaxTokens    = 120
	explainContextLimit = 500
	explainMaxSentences = 2
)

// SelectionExplainService explains a phrase the clinician highlighted,
// grounded in its surrounding text.
type SelectionExplainService struct {
	model providers.InsightProvider
}

// NewSelectionExplainService creates a new selection explanation service.
func NewSelectionExplainService(model providers.InsightProvider) *SelectionExplainService {
	return &SelectionExplainService{model: model}
}

// Explain returns a 1-2 sentence plain-language explanation of the selected
// phrase. Model failures degrade to a quoted placeholder rather than an
// error.
func (s *SelectionExplainService) Explain(ctx context.Context, selectedText, surrounding string) (string, error) {
	selectedText = strings.TrimSpace(selectedText)
	if selectedText == "" {
		return "", apperrors.NewValidationError("selected text is required")
	}
	if s.model == nil {
		return "", apperrors.NewInternalError("insight model is not configured", nil)
	}

	snippet := strings.TrimSpace(truncateText(surrounding, explainContextLimit))
	prompt := fmt.Sprintf(
		"You are a concise medical education assistant. "+
			"Explain the following medical term or phrase in exactly 1-2 sentences, "+
			"suitable for a clinical audience. "+
			"Phrase: %q. "+
			"Context: %q. "+
			"Do NOT repeat the phrase back as a complete sentence. Start directly with the explanation.",
		selectedText, snippet,
	)

	raw, err := s.model.GenerateInsight(ctx, providers.InsightRequest{
		Prompt:    prompt,
		MaxTokens: explainMaxTokens,
	})
	if err != nil {
		observability.GetLogger().Warn().Err(err).Str("phrase", selectedText).Msg("Selection explanation model call failed")
		return fmt.Sprintf("%q — unable to reach the AI explanation engine right now.", selectedText), nil
	}

	explanation := cleanExplanation(raw, selectedText, snippet)
	if explanation == "" {
		explanation = fmt.Sprintf("%q — a medical term relevant to this clinical case.", selectedText)
	}
	return explanation, nil
}

// cleanExplanation strips echoed prompt fragments and keeps only the first
// two sentences of what remains.
func cleanExplanation(raw, selectedText, snippet string) string {
	text := strings.TrimSpace(raw)
	for _, marker := range []string{"Start directly with the explanation.", snippet, selectedText} {
		if marker == "" || !strings.Contains(text, marker) || strings.HasSuffix(text, marker) {
			continue
		}
		parts := strings.Split(text, marker)
		text = strings.TrimSpace(parts[len(parts)-1])
	}

	sentences := splitSentences(text)
	if len(sentences) > explainMaxSentences {
		sentences = sentences[:explainMaxSentences]
	}
	return strings.TrimSpace(strings.Join(sentences, " "))
}
