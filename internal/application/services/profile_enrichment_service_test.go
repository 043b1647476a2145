package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/TejPotu/case-twin/internal/domain/providers"
)

// promptKeyedInsight routes replies by prompt content so concurrent calls
// stay deterministic.
type promptKeyedInsight struct {
	mu      sync.Mutex
	replies map[string]string
	err     error
	reqs    []providers.InsightRequest
}

func (f *promptKeyedInsight) GenerateInsight(_ context.Context, req providers.InsightRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return "", f.err
	}
	for key, reply := range f.replies {
		if strings.Contains(req.Prompt, key) {
			return reply, nil
		}
	}
	return "", nil
}

func TestEnrichRequiresProfile(t *testing.T) {
	svc := NewProfileEnrichmentService(&promptKeyedInsight{})

	if _, err := svc.Enrich(context.Background(), nil, nil); err == nil {
		t.Fatal("expected error for nil profile, got nil")
	}
}

func TestEnrichTextOnlySkipsImagingContext(t *testing.T) {
	model := &promptKeyedInsight{replies: map[string]string{
		"Clinical Synthesis:": "Clinical Synthesis: The **COPD** history raises aspiration risk.",
	}}
	svc := NewProfileEnrichmentService(model)

	enrichment, err := svc.Enrich(context.Background(), richProfile(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if enrichment.Synthesis != "The **COPD** history raises aspiration risk." {
		t.Errorf("unexpected synthesis: %q", enrichment.Synthesis)
	}
	if enrichment.ImagingContext != nil {
		t.Error("expected no imaging context without an image")
	}
	if len(model.reqs) != 1 {
		t.Fatalf("expected 1 model call, got %d", len(model.reqs))
	}
	if model.reqs[0].MaxTokens != 250 {
		t.Errorf("expected 250 max tokens, got %d", model.reqs[0].MaxTokens)
	}
}

func TestEnrichWithImageRunsBothSections(t *testing.T) {
	model := &promptKeyedInsight{replies: map[string]string{
		"Clinical Synthesis:": "Clinical Synthesis: High pretest probability of **pneumonia**.",
		"Imaging Context:":    "Imaging Context: Dense **right lower lobe** consolidation.",
	}}
	svc := NewProfileEnrichmentService(model)

	enrichment, err := svc.Enrich(context.Background(), richProfile(), []byte("img"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if enrichment.Synthesis != "High pretest probability of **pneumonia**." {
		t.Errorf("unexpected synthesis: %q", enrichment.Synthesis)
	}
	if enrichment.ImagingContext == nil {
		t.Fatal("expected imaging context with an image")
	}
	if *enrichment.ImagingContext != "Dense **right lower lobe** consolidation." {
		t.Errorf("unexpected imaging context: %q", *enrichment.ImagingContext)
	}
	if len(model.reqs) != 2 {
		t.Fatalf("expected 2 model calls, got %d", len(model.reqs))
	}
	for _, req := range model.reqs {
		if len(req.Image) == 0 {
			t.Error("expected both calls to carry the image")
		}
	}
}

func TestEnrichModelFailureDegrades(t *testing.T) {
	model := &promptKeyedInsight{err: errors.New("endpoint cold")}
	svc := NewProfileEnrichmentService(model)

	enrichment, err := svc.Enrich(context.Background(), richProfile(), []byte("img"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(enrichment.Synthesis, "couldn't generate the clinical synthesis") {
		t.Errorf("expected degraded synthesis, got %q", enrichment.Synthesis)
	}
	if enrichment.ImagingContext != nil {
		t.Error("expected no imaging context on failure")
	}
}

func TestEnrichEmptyCompletionFallsBack(t *testing.T) {
	model := &promptKeyedInsight{replies: map[string]string{}}
	svc := NewProfileEnrichmentService(model)

	enrichment, err := svc.Enrich(context.Background(), richProfile(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if enrichment.Synthesis != "Unable to generate clinical synthesis." {
		t.Errorf("expected empty-completion fallback, got %q", enrichment.Synthesis)
	}
}

func TestEnrichmentContextFormat(t *testing.T) {
	profile := richProfile()
	got := enrichmentContext(profile)

	if !strings.HasPrefix(got, "Patient: 52y male\n") {
		t.Errorf("expected demographics line, got %q", got)
	}
	if !strings.Contains(got, "Primary Dx: pneumonia") {
		t.Errorf("expected diagnosis line, got %q", got)
	}
}
