package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/TejPotu/case-twin/internal/domain/providers"
)

type fakeInsight struct {
	reply string
	err   error
	calls int
	last  providers.InsightRequest
	all   []providers.InsightRequest
}

func (f *fakeInsight) GenerateInsight(_ context.Context, req providers.InsightRequest) (string, error) {
	f.calls++
	f.last = req
	f.all = append(f.all, req)
	return f.reply, f.err
}

func TestAnswerRequiresQueryAndCaseText(t *testing.T) {
	svc := NewCaseChatService(&fakeInsight{})

	if _, err := svc.Answer(context.Background(), "  ", "case text", nil); err == nil {
		t.Error("expected error for empty query, got nil")
	}
	if _, err := svc.Answer(context.Background(), "what now?", "", nil); err == nil {
		t.Error("expected error for empty case text, got nil")
	}
}

func TestAnswerModelFailureReturnsCannedReply(t *testing.T) {
	svc := NewCaseChatService(&fakeInsight{err: errors.New("endpoint cold")})

	reply, err := svc.Answer(context.Background(), "prognosis?", "twin case", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(reply, "couldn't reach the AI reasoning engine") {
		t.Errorf("expected canned failure reply, got %q", reply)
	}
}

func TestAnswerStripsExpertAnswerEcho(t *testing.T) {
	model := &fakeInsight{reply: "You are an expert. Question: prognosis?\n\nExpert Answer: Guarded given the **comorbidities**."}
	svc := NewCaseChatService(model)

	reply, err := svc.Answer(context.Background(), "prognosis?", "twin case", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "Guarded given the **comorbidities**." {
		t.Errorf("expected echo stripped, got %q", reply)
	}
}

func TestAnswerKillsFinalAnswerLoop(t *testing.T) {
	model := &fakeInsight{reply: "Expert Answer: Start antibiotics early.\nFinal Answer: Start antibiotics early.\nFinal Answer: Start antibiotics early."}
	svc := NewCaseChatService(model)

	reply, err := svc.Answer(context.Background(), "treatment?", "twin case", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "Start antibiotics early." {
		t.Errorf("expected loop output removed, got %q", reply)
	}
}

func TestAnswerDeduplicatesStutteredLines(t *testing.T) {
	model := &fakeInsight{reply: "- Consider CT follow-up\n- Consider CT follow-up!\n- Start empiric therapy"}
	svc := NewCaseChatService(model)

	reply, err := svc.Answer(context.Background(), "next steps?", "twin case", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The leading artifact stripper removes the first bullet marker.
	want := "Consider CT follow-up\n\n- Start empiric therapy"
	if reply != want {
		t.Errorf("expected %q, got %q", want, reply)
	}
}

func TestAnswerStripsBoxedArtifacts(t *testing.T) {
	model := &fakeInsight{reply: `Expert Answer: \boxed{Pneumonia is most likely.}`}
	svc := NewCaseChatService(model)

	reply, err := svc.Answer(context.Background(), "diagnosis?", "twin case", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "Pneumonia is most likely." {
		t.Errorf("expected boxed artifacts removed, got %q", reply)
	}
}

func TestAnswerEmptyCompletionFallsBack(t *testing.T) {
	model := &fakeInsight{reply: "Expert Answer:   "}
	svc := NewCaseChatService(model)

	reply, err := svc.Answer(context.Background(), "diagnosis?", "twin case", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(reply, "don't have enough information") {
		t.Errorf("expected empty-reply fallback, got %q", reply)
	}
}

func TestAnswerPromptCarriesBothContexts(t *testing.T) {
	model := &fakeInsight{reply: "Expert Answer: ok"}
	svc := NewCaseChatService(model)
	profile := richProfile()

	longCase := strings.Repeat("x", 900)
	if _, err := svc.Answer(context.Background(), "diagnosis?", longCase, profile); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	prompt := model.last.Prompt
	if !strings.Contains(prompt, "## Historical Twin Case") {
		t.Error("expected twin case section in prompt")
	}
	if strings.Contains(prompt, strings.Repeat("x", 801)) {
		t.Error("expected twin case text truncated to 800 characters")
	}
	if !strings.Contains(prompt, "## Current Patient Profile") {
		t.Error("expected current profile section in prompt")
	}
	if !strings.Contains(prompt, "**Demographics:** 52y male") {
		t.Errorf("expected demographics line, got prompt %q", prompt)
	}
	if !strings.HasSuffix(prompt, "Expert Answer:") {
		t.Error("expected prompt to end with answer marker")
	}
	if model.last.MaxTokens != 350 {
		t.Errorf("expected 350 max tokens, got %d", model.last.MaxTokens)
	}
	if len(model.last.StopSequences) == 0 || model.last.StopSequences[0] != "Final Answer:" {
		t.Errorf("expected stop sequences, got %v", model.last.StopSequences)
	}
}

func TestAnswerOmitsProfileBlockWhenNil(t *testing.T) {
	model := &fakeInsight{reply: "Expert Answer: ok"}
	svc := NewCaseChatService(model)

	if _, err := svc.Answer(context.Background(), "diagnosis?", "twin case", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(model.last.Prompt, "## Current Patient Profile") {
		t.Error("expected no profile section for nil profile")
	}
}
