package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/TejPotu/case-twin/internal/domain/entities"
	"github.com/TejPotu/case-twin/internal/domain/providers"
)

type scriptedInsight struct {
	replies []string
	errs    []error
	reqs    []providers.InsightRequest
}

func (f *scriptedInsight) GenerateInsight(_ context.Context, req providers.InsightRequest) (string, error) {
	i := len(f.reqs)
	f.reqs = append(f.reqs, req)
	var reply string
	if i < len(f.replies) {
		reply = f.replies[i]
	}
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	return reply, err
}

func TestCompareRequiresImageAndDiagnosis(t *testing.T) {
	svc := NewInsightCompareService(&scriptedInsight{})

	if _, err := svc.Compare(context.Background(), CompareRequest{MatchDiagnosis: "pneumonia"}); err == nil {
		t.Error("expected error for missing image, got nil")
	}
	if _, err := svc.Compare(context.Background(), CompareRequest{OriginalImage: []byte("img")}); err == nil {
		t.Error("expected error for missing diagnosis, got nil")
	}
}

func TestCompareExtractsBoxesFromBothImages(t *testing.T) {
	model := &scriptedInsight{replies: []string{
		"Here: [100, 100, 300, 300]",
		"Here: [120, 140, 320, 340]",
		"The opacity is **dense**. The historical case matches closely.",
	}}
	svc := NewInsightCompareService(model)
	svc.fetchImage = func(_ context.Context, url string) ([]byte, error) {
		if url != "http://example.org/twin.png" {
			t.Errorf("unexpected fetch url %q", url)
		}
		return []byte("twin"), nil
	}

	insight, err := svc.Compare(context.Background(), CompareRequest{
		OriginalImage:  []byte("img"),
		MatchDiagnosis: "pneumonia",
		MatchImageURL:  "http://example.org/twin.png",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *insight.OriginalBox != (entities.BoundingBox{100, 100, 300, 300}) {
		t.Errorf("expected parsed original box, got %v", insight.OriginalBox)
	}
	if *insight.MatchBox != (entities.BoundingBox{120, 140, 320, 340}) {
		t.Errorf("expected parsed match box, got %v", insight.MatchBox)
	}
	if insight.InsightsText != "The opacity is **dense**. The historical case matches closely." {
		t.Errorf("unexpected insights text: %q", insight.InsightsText)
	}
	if len(model.reqs) != 3 {
		t.Fatalf("expected 3 model calls, got %d", len(model.reqs))
	}
	if !bytes.Equal(model.reqs[1].Image, []byte("twin")) {
		t.Error("expected match box call to carry the fetched twin image")
	}
	if model.reqs[2].MaxTokens != 400 {
		t.Errorf("expected 400 max tokens for narrative, got %d", model.reqs[2].MaxTokens)
	}
	if !strings.Contains(model.reqs[2].Prompt, "upper left region") {
		t.Errorf("expected region description in narrative prompt, got %q", model.reqs[2].Prompt)
	}
}

func TestCompareSimulatesBoxesDeterministically(t *testing.T) {
	run := func() *entities.CompareInsight {
		model := &scriptedInsight{replies: []string{"no coordinates here", "Narrative."}}
		svc := NewInsightCompareService(model)
		insight, err := svc.Compare(context.Background(), CompareRequest{
			OriginalImage:  []byte("img"),
			MatchDiagnosis: "pneumothorax",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return insight
	}

	first := run()
	second := run()

	if first.OriginalBox == nil || first.MatchBox == nil {
		t.Fatal("expected simulated boxes, got nil")
	}
	if *first.OriginalBox != *second.OriginalBox || *first.MatchBox != *second.MatchBox {
		t.Error("expected simulated boxes to be deterministic")
	}
	for _, box := range []*entities.BoundingBox{first.OriginalBox, first.MatchBox} {
		for _, v := range box {
			if v < 0 || v > 1000 {
				t.Errorf("expected box coordinate in [0, 1000], got %d", v)
			}
		}
	}
}

func TestCompareNarrativeFailureFallsBack(t *testing.T) {
	model := &scriptedInsight{
		replies: []string{"[100, 100, 300, 300]", ""},
		errs:    []error{nil, errors.New("endpoint cold")},
	}
	svc := NewInsightCompareService(model)

	insight, err := svc.Compare(context.Background(), CompareRequest{
		OriginalImage:  []byte("img"),
		MatchDiagnosis: "pneumonia",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if insight.InsightsText != "Unable to complete AI analysis at this time." {
		t.Errorf("expected error fallback text, got %q", insight.InsightsText)
	}
}

func TestComparePayloadContextReachesPrompt(t *testing.T) {
	model := &scriptedInsight{replies: []string{"[100, 100, 300, 300]", "Narrative."}}
	svc := NewInsightCompareService(model)

	payload := []byte(`{"presentation":{"hpi":"productive cough for a week"},"outcome":{"detail":"recovered after drainage"}}`)
	if _, err := svc.Compare(context.Background(), CompareRequest{
		OriginalImage:  []byte("img"),
		MatchDiagnosis: "empyema",
		MatchPayload:   payload,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	prompt := model.reqs[len(model.reqs)-1].Prompt
	if !strings.Contains(prompt, "productive cough for a week") {
		t.Error("expected twin HPI in narrative prompt")
	}
	if !strings.Contains(prompt, "recovered after drainage") {
		t.Error("expected twin outcome in narrative prompt")
	}
}

func TestParseBox(t *testing.T) {
	cases := map[string]*entities.BoundingBox{
		"The box is [100, 200, 300, 400].": {100, 200, 300, 400},
		"[ 10 ,20, 30 , 40 ] trailing":      {10, 20, 30, 40},
		"no coordinates in this completion": nil,
	}
	for text, want := range cases {
		got := parseBox(text)
		if want == nil {
			if got != nil {
				t.Errorf("parseBox(%q): expected nil, got %v", text, got)
			}
			continue
		}
		if got == nil || *got != *want {
			t.Errorf("parseBox(%q): expected %v, got %v", text, want, got)
		}
	}
}

func TestRegionText(t *testing.T) {
	cases := []struct {
		box  *entities.BoundingBox
		want string
	}{
		{&entities.BoundingBox{100, 100, 200, 200}, "upper left region"},
		{&entities.BoundingBox{400, 400, 500, 500}, "mid central region"},
		{&entities.BoundingBox{700, 700, 900, 900}, "lower right region"},
		{nil, "an unspecified region"},
	}
	for _, tc := range cases {
		if got := regionText(tc.box); got != tc.want {
			t.Errorf("regionText(%v): expected %q, got %q", tc.box, tc.want, got)
		}
	}
}

func TestCleanCompareText(t *testing.T) {
	fenced := "```markdown\nA **dense** opacity. A **dense** opacity. It matters.\n```"
	if got := cleanCompareText(fenced, "prompt"); got != "A **dense** opacity. It matters." {
		t.Errorf("expected fences stripped and sentences deduped, got %q", got)
	}

	boxed := `$\boxed{Consolidation present.}$`
	if got := cleanCompareText(boxed, "prompt"); got != "Consolidation present." {
		t.Errorf("expected boxed wrapper removed, got %q", got)
	}

	long := "One. Two. Three. Four. Five. Six. Seven. Eight."
	if got := cleanCompareText(long, "prompt"); got != "One. Two. Three. Four. Five. Six." {
		t.Errorf("expected narrative capped at six sentences, got %q", got)
	}
}
