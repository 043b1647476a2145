package services

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/TejPotu/case-twin/internal/domain/entities"
	"github.com/TejPotu/case-twin/internal/domain/providers"
	"github.com/TejPotu/case-twin/internal/infrastructure/observability"
	apperrors "github.com/TejPotu/case-twin/pkg/errors"
)

const (
	synthesisMaxTokens   = 250
	imagingMaxTokens     = 200
	synthesisContextSize = 800
	imagingContextSize   = 500

	synthesisEmptyText = "Unable to generate clinical synthesis."
	synthesisErrorText = "I'm sorry, I couldn't generate the clinical synthesis right now."
)

var (
	synthesisStopWords = []string{"Final Answer:", "Final Answer", "---\nClinical Synthesis:", "Clinical Synthesis:"}
	imagingStopWords   = []string{"Final Answer:", "Final Answer", "---\nImaging Context:", "Imaging Context:"}
)

// ProfileEnrichmentService generates the AI clinical synthesis for a profile,
// plus an imaging-context section when the study image is available. The two
// model calls run concurrently.
type ProfileEnrichmentService struct {
	model providers.InsightProvider
}

// NewProfileEnrichmentService creates a new profile enrichment service.
func NewProfileEnrichmentService(model providers.InsightProvider) *ProfileEnrichmentService {
	return &ProfileEnrichmentService{model: model}
}

// Enrich synthesizes insights beyond what the profile states. Model failures
// degrade to an apologetic synthesis rather than an error.
func (s *ProfileEnrichmentService) Enrich(ctx context.Context, profile *entities.CaseProfile, image []byte) (*entities.ProfileEnrichment, error) {
	if profile == nil {
		return nil, apperrors.NewValidationError("profile is required")
	}
	if s.model == nil {
		return nil, apperrors.NewInternalError("insight model is not configured", nil)
	}

	profileCtx := enrichmentContext(profile)
	hasImage := len(image) > 0

	var rawSynthesis, rawImaging string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rawSynthesis, err = s.model.GenerateInsight(gctx, providers.InsightRequest{
			Image:         image,
			Prompt:        synthesisPrompt(profileCtx),
			MaxTokens:     synthesisMaxTokens,
			StopSequences: synthesisStopWords,
		})
		return err
	})
	if hasImage {
		g.Go(func() error {
			var err error
			rawImaging, err = s.model.GenerateInsight(gctx, providers.InsightRequest{
				Image:         image,
				Prompt:        imagingPrompt(profileCtx),
				MaxTokens:     imagingMaxTokens,
				StopSequences: imagingStopWords,
			})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		observability.GetLogger().Warn().Err(err).Msg("Profile enrichment model call failed")
		return &entities.ProfileEnrichment{Synthesis: synthesisErrorText}, nil
	}

	synthesis := cleanSectionReply(rawSynthesis, "Clinical Synthesis:")
	if synthesis == "" {
		synthesis = synthesisEmptyText
	}

	enrichment := &entities.ProfileEnrichment{Synthesis: synthesis}
	if hasImage {
		imaging := cleanSectionReply(rawImaging, "Imaging Context:")
		enrichment.ImagingContext = &imaging
	}
	return enrichment, nil
}

// enrichmentContext flattens the profile into the compact block both prompts
// share.
func enrichmentContext(profile *entities.CaseProfile) string {
	age := ""
	if profile.Patient.AgeYears > 0 {
		age = fmt.Sprintf("%d", profile.Patient.AgeYears)
	}
	return fmt.Sprintf(
		"Patient: %sy %s\nCC: %s\nHPI: %s\nPMH: %s\nComorbidities: %s\nPrimary Dx: %s",
		age,
		profile.Patient.Sex,
		profile.Presentation.ChiefComplaint,
		profile.Presentation.HPI,
		profile.Presentation.PMH,
		strings.Join(profile.Patient.Comorbidities, ", "),
		profile.Assessment.DiagnosisPrimary,
	)
}

func synthesisPrompt(profileCtx string) string {
	return "You are an expert clinical reasoning assistant. " +
		"Review the patient profile below (and the image if provided). " +
		"Write an 'AI Clinical Synthesis' providing deep medical insights, potential " +
		"hidden risk factors, or prognostic observations that are NOT just repeating the provided text. " +
		"Keep your synthesis to EXACTLY 3-4 short sentences or bullet points. " +
		"Use Markdown format (bold key terms). Do NOT generate repetitive lists. " +
		"Do NOT append 'Final Answer:'. Do not include intro filler.\n\n" +
		"## Case Profile\n" + truncateText(profileCtx, synthesisContextSize) + "\n\n" +
		"Clinical Synthesis:"
}

func imagingPrompt(profileCtx string) string {
	return "You are an expert radiologist. " +
		"Review the provided medical image and the patient's brief clinical context below. " +
		"Write an 'Imaging Context' summary focusing strictly on the key radiological findings, " +
		"their severity, and their direct clinical relevance to the patient's presentation. " +
		"Keep it to EXACTLY 2-3 short sentences. " +
		"Use Markdown format (bold key terms). Do NOT generate repetitive lists. " +
		"Do NOT append 'Final Answer:'.\n\n" +
		"## Case Context\n" + truncateText(profileCtx, imagingContextSize) + "\n\n" +
		"Imaging Context:"
}

// cleanSectionReply strips the echoed section marker and loop output, then
// applies the shared reply sanitizer.
func cleanSectionReply(raw, marker string) string {
	reply := strings.TrimSpace(raw)
	if idx := strings.LastIndex(reply, marker); idx >= 0 {
		reply = strings.TrimSpace(reply[idx+len(marker):])
	}
	if idx := strings.Index(reply, "Final Answer"); idx >= 0 {
		reply = strings.TrimSpace(reply[:idx])
	}
	return sanitizeModelReply(reply)
}
