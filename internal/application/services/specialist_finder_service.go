package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/TejPotu/case-twin/internal/domain/entities"
	"github.com/TejPotu/case-twin/internal/domain/providers"
	"github.com/TejPotu/case-twin/internal/infrastructure/observability"
	apperrors "github.com/TejPotu/case-twin/pkg/errors"
)

const (
	specialistSearchCount = 10
	specialistMaxResults  = 5
	specialistMaxTokens   = 900

	// specialistReportLimit caps the ranked search hits folded into the
	// extraction report so the prompt stays within context limits.
	specialistReportLimit = 8
)

// URL fragments that mark individual physician profile pages. Those pages
// carry the richest data: full name, credentials, bio, phone.
var specialistProfilePatterns = []string{
	"/doctor/", "/physician/", "/provider/", "/faculty/", "/staff/",
	"/find-a-doctor/", "/our-team/", "/profile/", "/bio/",
	"/physicians/", "/doctors/", "/specialists/", "/expert/",
}

// URL fragments that rarely name physicians.
var specialistSkipPatterns = []string{
	"/news/", "/blog/", "/events/", "/careers/", "/jobs/",
	"/location/", "/condition/", "/treatment/", "/service/",
}

// SpecialistFinderService analyzes a hospital's public pages to find the
// physicians who treat a given diagnosis. Web search snippets often already
// name doctors; the rendered hospital page supplements them, and the insight
// model structures the combined report.
type SpecialistFinderService struct {
	search providers.WebSearchProvider
	reader providers.PageReader
	model  providers.InsightProvider
}

// NewSpecialistFinderService creates a new specialist finder service.
func NewSpecialistFinderService(search providers.WebSearchProvider, reader providers.PageReader, model providers.InsightProvider) *SpecialistFinderService {
	return &SpecialistFinderService{search: search, reader: reader, model: model}
}

// FindSpecialists returns up to five physicians or specialty departments at
// the hospital relevant to the diagnosis. An empty slice, not an error, means
// the pages named nobody extractable.
func (s *SpecialistFinderService) FindSpecialists(ctx context.Context, query entities.SpecialistQuery) ([]entities.Specialist, error) {
	logger := observability.GetLogger()

	if strings.TrimSpace(query.URL) == "" {
		return nil, apperrors.NewValidationError("hospital url is required")
	}
	if strings.TrimSpace(query.Diagnosis) == "" {
		return nil, apperrors.NewValidationError("diagnosis is required")
	}
	if s.search == nil || s.model == nil {
		return nil, apperrors.NewUnavailableError("specialist analysis is not configured", nil)
	}

	hospital := strings.TrimSpace(query.HospitalName)
	if hospital == "" {
		hospital = hostOf(query.URL)
	}

	report := s.buildResearchReport(ctx, hospital, query)
	if report == "" {
		logger.Warn().Str("hospital", hospital).Msg("No readable content found for specialist analysis")
		return []entities.Specialist{}, nil
	}

	raw, err := s.model.GenerateInsight(ctx, providers.InsightRequest{
		Prompt:    specialistPrompt(hospital, query.Diagnosis, query.URL, report),
		MaxTokens: specialistMaxTokens,
	})
	if err != nil {
		return nil, apperrors.NewUnavailableError("specialist extraction model is unavailable", err)
	}

	specialists := parseSpecialists(raw)
	if specialists == nil {
		logger.Warn().Str("hospital", hospital).Msg("Specialist extraction returned unparseable output")
		return []entities.Specialist{}, nil
	}
	if len(specialists) > specialistMaxResults {
		specialists = specialists[:specialistMaxResults]
	}
	for i := range specialists {
		if specialists[i].URL == "" {
			specialists[i].URL = query.URL
		}
	}
	return specialists, nil
}

// buildResearchReport gathers ranked search hits and the rendered hospital
// page into one report for the extraction prompt. Either source alone is
// enough; both failing yields an empty report.
func (s *SpecialistFinderService) buildResearchReport(ctx context.Context, hospital string, query entities.SpecialistQuery) string {
	logger := observability.GetLogger()
	var sections []string

	searchQuery := fmt.Sprintf("%q %q physician specialist doctor", hospital, query.Diagnosis)
	results, err := s.search.Search(ctx, searchQuery, specialistSearchCount)
	if err != nil {
		logger.Warn().Err(err).Str("hospital", hospital).Msg("Specialist web search failed")
	} else {
		ranked := rankSpecialistResults(results)
		if len(ranked) > specialistReportLimit {
			ranked = ranked[:specialistReportLimit]
		}
		for _, hit := range ranked {
			content := hit.Description
			if content == "" {
				content = strings.Join(hit.Snippets, " ")
			}
			sections = append(sections, fmt.Sprintf("TITLE: %s\nURL: %s\nCONTENT: %s", hit.Title, hit.URL, content))
		}
	}

	if s.reader != nil {
		page, err := s.reader.ReadPage(ctx, query.URL)
		if err != nil {
			logger.Warn().Err(err).Str("url", query.URL).Msg("Hospital page read failed")
		} else if page != "" {
			sections = append([]string{fmt.Sprintf("PAGE: %s\n%s", query.URL, page)}, sections...)
		}
	}

	return strings.Join(sections, "\n\n---\n\n")
}

// rankSpecialistResults orders search hits so physician profile pages and
// snippets that already name doctors come first.
func rankSpecialistResults(results []providers.WebResult) []providers.WebResult {
	ranked := make([]providers.WebResult, len(results))
	copy(ranked, results)
	sort.SliceStable(ranked, func(i, j int) bool {
		return scoreSpecialistResult(ranked[i]) > scoreSpecialistResult(ranked[j])
	})
	return ranked
}

func scoreSpecialistResult(res providers.WebResult) int {
	loweredURL := strings.ToLower(res.URL)
	full := strings.ToLower(res.Title + " " + res.Description + " " + strings.Join(res.Snippets, " "))

	score := 0
	for _, p := range specialistProfilePatterns {
		if strings.Contains(loweredURL, p) {
			score += 3
			break
		}
	}
	for _, p := range specialistSkipPatterns {
		if strings.Contains(loweredURL, p) {
			score -= 2
			break
		}
	}
	// Snippets naming a doctor outrank everything else.
	if strings.Contains(full, "dr.") || strings.Contains(full, " m.d.") || strings.Contains(full, ", md") {
		score += 3
	}
	for _, w := range []string{"physician", "specialist", "surgeon", "faculty", "board certified"} {
		if strings.Contains(full, w) {
			score++
			break
		}
	}
	return score
}

func specialistPrompt(hospital, diagnosis, hospitalURL, report string) string {
	return fmt.Sprintf(
		"You are a precision medical data extractor. You never hallucinate doctor names. "+
			"From the research report below, extract 3 to 5 physicians at %s who treat or specialize in %s. "+
			"Only include individuals whose full last name appears in the report. "+
			"If fewer than 3 named physicians appear, supplement with the most relevant specialty "+
			"departments or programs from the report, using the department name as \"name\" and "+
			"\"Department\" as \"credentials\". "+
			"Each object has the fields: \"name\" (full name with title), \"specialty\", "+
			"\"credentials\", \"context\" (one sentence with the most relevant clinical fact), "+
			"\"url\" (the physician's own profile URL from the report, else %q), and "+
			"\"phone\" (else empty string). "+
			"Output ONLY the raw JSON array, no markdown and no preamble.\n\n"+
			"## Research Report\n\n%s",
		hospital, diagnosis, hospitalURL, report,
	)
}

// parseSpecialists decodes the model output, tolerating markdown fences and
// preamble text around the JSON array. A nil return means unparseable.
func parseSpecialists(raw string) []entities.Specialist {
	text := strings.TrimSpace(raw)
	for _, prefix := range []string{"```json", "```"} {
		text = strings.TrimPrefix(text, prefix)
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start == -1 || end <= start {
		return nil
	}

	var specialists []entities.Specialist
	if err := json.Unmarshal([]byte(text[start:end+1]), &specialists); err != nil {
		return nil
	}
	return specialists
}

// hostOf falls back to the raw string when the URL does not parse; the value
// only seeds search queries and prompts.
func hostOf(raw string) string {
	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		return u.Host
	}
	return raw
}
