package services

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestExplainRequiresSelectedText(t *testing.T) {
	svc := NewSelectionExplainService(&fakeInsight{})

	if _, err := svc.Explain(context.Background(), "   ", "context"); err == nil {
		t.Fatal("expected error for empty selection, got nil")
	}
}

func TestExplainReturnsFirstTwoSentences(t *testing.T) {
	model := &fakeInsight{reply: "A collapsed lung segment. It reduces ventilation. It often resolves with physiotherapy."}
	svc := NewSelectionExplainService(model)

	explanation, err := svc.Explain(context.Background(), "atelectasis", "CT showed basal atelectasis")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "A collapsed lung segment. It reduces ventilation."
	if explanation != want {
		t.Errorf("expected %q, got %q", want, explanation)
	}
}

func TestExplainStripsEchoedPrompt(t *testing.T) {
	model := &fakeInsight{reply: "Start directly with the explanation. A collapsed lung segment. It reduces ventilation."}
	svc := NewSelectionExplainService(model)

	explanation, err := svc.Explain(context.Background(), "atelectasis", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if explanation != "A collapsed lung segment. It reduces ventilation." {
		t.Errorf("expected echoed instruction stripped, got %q", explanation)
	}
}

func TestExplainEmptyCompletionFallsBack(t *testing.T) {
	model := &fakeInsight{reply: "   "}
	svc := NewSelectionExplainService(model)

	explanation, err := svc.Explain(context.Background(), "empyema", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(explanation, `"empyema"`) || !strings.Contains(explanation, "medical term relevant") {
		t.Errorf("expected quoted placeholder, got %q", explanation)
	}
}

func TestExplainModelFailureDegrades(t *testing.T) {
	model := &fakeInsight{err: errors.New("endpoint cold")}
	svc := NewSelectionExplainService(model)

	explanation, err := svc.Explain(context.Background(), "empyema", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(explanation, "unable to reach the AI explanation engine") {
		t.Errorf("expected degraded explanation, got %q", explanation)
	}
}

func TestExplainPromptCarriesPhraseAndContext(t *testing.T) {
	model := &fakeInsight{reply: "An infected pleural collection."}
	svc := NewSelectionExplainService(model)

	longContext := strings.Repeat("c", 600)
	if _, err := svc.Explain(context.Background(), "empyema", longContext); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(model.last.Prompt, `Phrase: "empyema"`) {
		t.Errorf("expected phrase in prompt, got %q", model.last.Prompt)
	}
	if strings.Contains(model.last.Prompt, strings.Repeat("c", 501)) {
		t.Error("expected surrounding context truncated to 500 characters")
	}
	if model.last.MaxTokens != 120 {
		t.Errorf("expected 120 max tokens, got %d", model.last.MaxTokens)
	}
}
