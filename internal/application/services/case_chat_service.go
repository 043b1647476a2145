package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/TejPotu/case-twin/internal/domain/entities"
	"github.com/TejPotu/case-twin/internal/domain/providers"
	"github.com/TejPotu/case-twin/internal/infrastructure/observability"
	apperrors "github.com/TejPotu/case-twin/pkg/errors"
)

const (
	chatMaxTokens    = 350
	twinContextLimit = 800
	hpiContextLimit  = 300

	chatEmptyReply = "I don't have enough information in the provided case context to answer that."
	chatErrorReply = "I'm sorry, I couldn't reach the AI reasoning engine to answer this question right now."
)

var chatStopWords = []string{"Final Answer:", "Final Answer", "---\nQuestion:", "Question:"}

var (
	leadingJunkRe = regexp.MustCompile(`^[\W_]+`)
	nonWordRe     = regexp.MustCompile(`\W+`)
)

// CaseChatService answers clinician questions grounded in two contexts at
// once: the matched historical twin case and the current patient's profile.
type CaseChatService struct {
	model providers.InsightProvider
}

// NewCaseChatService creates a new case chat service.
func NewCaseChatService(model providers.InsightProvider) *CaseChatService {
	return &CaseChatService{model: model}
}

// Answer returns a short Markdown reply to the query. Model failures degrade
// to an apologetic canned reply rather than an error so the conversation
// stays usable.
func (s *CaseChatService) Answer(ctx context.Context, query, caseText string, profile *entities.CaseProfile) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", apperrors.NewValidationError("query is required")
	}
	if strings.TrimSpace(caseText) == "" {
		return "", apperrors.NewValidationError("case_text is required")
	}
	if s.model == nil {
		return "", apperrors.NewInternalError("insight model is not configured", nil)
	}

	prompt := buildChatPrompt(query, caseText, profile)
	raw, err := s.model.GenerateInsight(ctx, providers.InsightRequest{
		Prompt:        prompt,
		MaxTokens:     chatMaxTokens,
		StopSequences: chatStopWords,
	})
	if err != nil {
		observability.GetLogger().Warn().Err(err).Msg("Twin chat model call failed")
		return chatErrorReply, nil
	}

	reply := cleanChatReply(raw, query)
	if reply == "" {
		reply = chatEmptyReply
	}
	return reply, nil
}

func buildChatPrompt(query, caseText string, profile *entities.CaseProfile) string {
	var b strings.Builder
	b.WriteString("You are an expert clinical reasoning assistant. ")
	b.WriteString("Consult the two medical cases below and answer the clinician's question. ")
	b.WriteString("Keep your answer EXTREMELY short (maximum 3 sentences or 3 bullet points total). ")
	b.WriteString("Use Markdown formatting (bullet points, **bold** text). ")
	b.WriteString("CRITICAL INSTRUCTIONS: Do NOT generate long repetitive lists. Never use more than 3 bullet points. ")
	b.WriteString("Do NOT add introductory filler. Jump straight into the clinical facts.\n")
	b.WriteString("IMPORTANT: Do NOT append a 'Final Answer:' section or use mathematical LaTeX boxes (\\boxed{}). Just provide the direct text response.\n\n")
	b.WriteString("\n## Historical Twin Case\n")
	b.WriteString(truncateText(caseText, twinContextLimit))
	b.WriteString("\n")
	b.WriteString(currentProfileContext(profile))
	b.WriteString("\n---\n")
	b.WriteString("Question: " + query + "\n\n")
	b.WriteString("Expert Answer:")
	return b.String()
}

// currentProfileContext renders the current patient block, or nothing when no
// profile accompanies the question.
func currentProfileContext(profile *entities.CaseProfile) string {
	if profile == nil {
		return ""
	}

	demographics := ""
	if profile.Patient.AgeYears > 0 {
		demographics = fmt.Sprintf("%dy ", profile.Patient.AgeYears)
	}
	if profile.Patient.Sex != "" {
		demographics += profile.Patient.Sex
	} else {
		demographics += "unknown sex"
	}

	comorbidities := strings.Join(profile.Patient.Comorbidities, ", ")
	if comorbidities == "" {
		comorbidities = "none documented"
	}
	cc := profile.Presentation.ChiefComplaint
	if cc == "" {
		cc = "not specified"
	}
	hpi := truncateText(profile.Presentation.HPI, hpiContextLimit)
	if hpi == "" {
		hpi = "not provided"
	}
	diagnosis := profile.Assessment.DiagnosisPrimary
	if diagnosis == "" {
		diagnosis = "undetermined"
	}
	urgency := profile.Assessment.Urgency
	if profile.Assessment.ICUCandidate != "" {
		urgency += " | ICU candidate: " + profile.Assessment.ICUCandidate
	}
	findings := strings.Join(profile.Summary.KeyPoints, ", ")
	if findings == "" {
		findings = "none extracted"
	}

	var b strings.Builder
	b.WriteString("\n## Current Patient Profile\n")
	b.WriteString("- **Demographics:** " + demographics + "\n")
	b.WriteString("- **Comorbidities:** " + comorbidities + "\n")
	b.WriteString("- **Chief complaint:** " + cc + "\n")
	b.WriteString("- **Clinical narrative:** " + hpi + "\n")
	b.WriteString("- **Primary diagnosis (extracted):** " + diagnosis + "\n")
	b.WriteString("- **Urgency:** " + urgency + "\n")
	b.WriteString("- **Key findings:** " + findings + "\n")
	return b.String()
}

// cleanChatReply strips prompt echoing, loop artifacts, and stuttered lines
// from a raw model completion.
func cleanChatReply(raw, query string) string {
	reply := strings.TrimSpace(raw)

	if idx := strings.LastIndex(reply, "Expert Answer:"); idx >= 0 {
		reply = strings.TrimSpace(reply[idx+len("Expert Answer:"):])
	} else if marker := "Question: " + query; strings.Contains(reply, marker) {
		parts := strings.Split(reply, marker)
		reply = strings.TrimSpace(parts[len(parts)-1])
	}

	// Everything from a generated "Final Answer" onward is loop output.
	if idx := strings.Index(reply, "Final Answer"); idx >= 0 {
		reply = strings.TrimSpace(reply[:idx])
	}

	return sanitizeModelReply(reply)
}

// sanitizeModelReply removes LaTeX box artifacts and deduplicates stuttered
// lines, rejoining the survivors with blank lines.
func sanitizeModelReply(reply string) string {
	reply = strings.ReplaceAll(reply, `\boxed{`, "")
	reply = strings.TrimSpace(reply)
	if strings.HasSuffix(reply, "}") {
		reply = strings.TrimSpace(reply[:len(reply)-1])
	}
	reply = leadingJunkRe.ReplaceAllString(reply, "")

	seen := make(map[string]bool)
	var kept []string
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key := nonWordRe.ReplaceAllString(strings.ToLower(line), "")
		if seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n\n")
}

func truncateText(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
