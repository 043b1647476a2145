package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/TejPotu/case-twin/internal/domain/entities"
	"github.com/TejPotu/case-twin/internal/domain/providers"
	apperrors "github.com/TejPotu/case-twin/pkg/errors"
)

type fakePageReader struct {
	content string
	err     error
	lastURL string
}

func (f *fakePageReader) ReadPage(_ context.Context, pageURL string) (string, error) {
	f.lastURL = pageURL
	return f.content, f.err
}

func specialistQuery() entities.SpecialistQuery {
	return entities.SpecialistQuery{
		URL:          "https://www.mayoclinic.org",
		Diagnosis:    "lung abscess",
		HospitalName: "Mayo Clinic",
	}
}

func TestFindSpecialistsRequiresURLAndDiagnosis(t *testing.T) {
	svc := NewSpecialistFinderService(&fakeWebSearch{}, nil, &fakeInsight{})

	if _, err := svc.FindSpecialists(context.Background(), entities.SpecialistQuery{Diagnosis: "lung abscess"}); err == nil {
		t.Error("expected error for missing url, got nil")
	}
	if _, err := svc.FindSpecialists(context.Background(), entities.SpecialistQuery{URL: "https://x.org"}); err == nil {
		t.Error("expected error for missing diagnosis, got nil")
	}
}

func TestFindSpecialistsUnavailableWithoutProviders(t *testing.T) {
	svc := NewSpecialistFinderService(nil, nil, nil)

	_, err := svc.FindSpecialists(context.Background(), specialistQuery())
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Type != apperrors.ErrorTypeUnavailable {
		t.Errorf("expected unavailable error, got %v", err)
	}
}

func TestFindSpecialistsBuildsRankedReportAndParsesReply(t *testing.T) {
	search := &fakeWebSearch{results: []providers.WebResult{
		{
			Title:       "Pulmonology News Roundup",
			URL:         "https://www.mayoclinic.org/news/roundup",
			Description: "Recent stories from the department.",
		},
		{
			Title:       "Dr. Jane Smith, MD - Pulmonology",
			URL:         "https://www.mayoclinic.org/doctor/jane-smith",
			Description: "Dr. Jane Smith, MD, FCCP treats lung abscess and empyema.",
		},
	}}
	reader := &fakePageReader{content: "Find a Doctor: Pulmonary Medicine"}
	model := &fakeInsight{reply: "```json\n[" +
		`{"name": "Dr. Jane Smith", "specialty": "Pulmonology", "credentials": "MD, FCCP", "context": "Leads the lung abscess clinic.", "url": "https://www.mayoclinic.org/doctor/jane-smith", "phone": ""},` +
		`{"name": "Pulmonary Medicine", "specialty": "Pulmonology", "credentials": "Department", "context": "Treats complex lung infections.", "url": "", "phone": ""}` +
		"]\n```"}
	svc := NewSpecialistFinderService(search, reader, model)

	got, err := svc.FindSpecialists(context.Background(), specialistQuery())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !strings.Contains(search.lastQuery, `"Mayo Clinic"`) || !strings.Contains(search.lastQuery, `"lung abscess"`) {
		t.Errorf("expected quoted hospital and diagnosis in search query, got %q", search.lastQuery)
	}
	if reader.lastURL != "https://www.mayoclinic.org" {
		t.Errorf("expected hospital page read, got %q", reader.lastURL)
	}

	prompt := model.last.Prompt
	if !strings.Contains(prompt, "Find a Doctor: Pulmonary Medicine") {
		t.Error("expected rendered page content in the prompt")
	}
	smithAt := strings.Index(prompt, "doctor/jane-smith")
	newsAt := strings.Index(prompt, "news/roundup")
	if smithAt == -1 || newsAt == -1 || smithAt > newsAt {
		t.Errorf("expected profile hit ranked before news hit, got positions %d and %d", smithAt, newsAt)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 specialists, got %d", len(got))
	}
	if got[0].Name != "Dr. Jane Smith" {
		t.Errorf("expected Dr. Jane Smith first, got %q", got[0].Name)
	}
	if got[1].URL != "https://www.mayoclinic.org" {
		t.Errorf("expected hospital url fallback, got %q", got[1].URL)
	}
}

func TestFindSpecialistsModelFailureIsUnavailable(t *testing.T) {
	search := &fakeWebSearch{results: []providers.WebResult{{Title: "Directory", URL: "https://x.org/doctors/"}}}
	model := &fakeInsight{err: errors.New("timeout")}
	svc := NewSpecialistFinderService(search, nil, model)

	_, err := svc.FindSpecialists(context.Background(), specialistQuery())
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Type != apperrors.ErrorTypeUnavailable {
		t.Errorf("expected unavailable error, got %v", err)
	}
}

func TestFindSpecialistsUnparseableReplyIsEmpty(t *testing.T) {
	search := &fakeWebSearch{results: []providers.WebResult{{Title: "Directory", URL: "https://x.org/doctors/"}}}
	model := &fakeInsight{reply: "I could not find any physicians."}
	svc := NewSpecialistFinderService(search, nil, model)

	got, err := svc.FindSpecialists(context.Background(), specialistQuery())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty result, got %d entries", len(got))
	}
}

func TestFindSpecialistsEmptyReportSkipsModel(t *testing.T) {
	search := &fakeWebSearch{err: errors.New("search down")}
	model := &fakeInsight{reply: "[]"}
	svc := NewSpecialistFinderService(search, nil, model)

	got, err := svc.FindSpecialists(context.Background(), specialistQuery())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty result, got %d entries", len(got))
	}
	if model.calls != 0 {
		t.Errorf("expected no model call on empty report, got %d", model.calls)
	}
}

func TestScoreSpecialistResult(t *testing.T) {
	cases := []struct {
		name string
		res  providers.WebResult
		want int
	}{
		{
			"profile url with named doctor",
			providers.WebResult{URL: "https://x.org/doctor/a-b", Description: "Dr. A B, board certified physician"},
			7,
		},
		{
			"news url",
			providers.WebResult{URL: "https://x.org/news/item", Description: "annual report"},
			-2,
		},
		{
			"plain page",
			providers.WebResult{URL: "https://x.org/about", Description: "our campus"},
			0,
		},
	}
	for _, tc := range cases {
		if got := scoreSpecialistResult(tc.res); got != tc.want {
			t.Errorf("%s: expected %d, got %d", tc.name, tc.want, got)
		}
	}
}

func TestParseSpecialistsToleratesPreamble(t *testing.T) {
	raw := "Here is the list:\n[{\"name\": \"Dr. A\", \"specialty\": \"Pulmonology\"}]\nDone."
	got := parseSpecialists(raw)
	if len(got) != 1 || got[0].Name != "Dr. A" {
		t.Errorf("expected one parsed specialist, got %v", got)
	}
	if parseSpecialists("no structured data here") != nil {
		t.Error("expected nil for output without a JSON array")
	}
}
