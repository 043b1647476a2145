package search

import (
	"strings"
	"testing"

	"github.com/TejPotu/case-twin/internal/domain/entities"
)

func TestBuildVectorQuery(t *testing.T) {
	got := buildVectorQuery([]float32{0.5, -0.25, 1}, 5)
	want := "embedding:([0.5,-0.25,1], k:5)"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestBuildVectorQueryLargeK(t *testing.T) {
	got := buildVectorQuery([]float32{0.1}, 50)
	if !strings.HasSuffix(got, "k:50)") {
		t.Errorf("expected k:50 suffix, got %q", got)
	}
}

func TestDocumentToTwinCase(t *testing.T) {
	doc := map[string]interface{}{
		"id":           "case-1:img-1",
		"case_id":      "case-1",
		"diagnosis":    "community-acquired pneumonia",
		"case_text":    "52-year-old male with pneumonia",
		"modality":     "CXR",
		"body_region":  "thorax",
		"image_url":    "https://example.org/img.png",
		"profile_json": `{"age_years":52,"sex":"male","tags":["pneumonia"]}`,
	}

	twin := documentToTwinCase(doc)
	if twin.CaseID != "case-1" {
		t.Errorf("expected case-1, got %q", twin.CaseID)
	}
	if twin.DiagnosisPrimary != "community-acquired pneumonia" {
		t.Errorf("unexpected diagnosis %q", twin.DiagnosisPrimary)
	}
	if twin.AgeYears != 52 || twin.Sex != "male" {
		t.Errorf("expected demographics from profile payload, got %d %q", twin.AgeYears, twin.Sex)
	}
	if len(twin.Tags) != 1 {
		t.Errorf("expected tags, got %v", twin.Tags)
	}
}

func TestDocumentToTwinCaseMissingFields(t *testing.T) {
	twin := documentToTwinCase(map[string]interface{}{"id": "x"})
	if twin.ID != "x" {
		t.Errorf("expected id x, got %q", twin.ID)
	}
	if twin.AgeYears != 0 || twin.Sex != "" {
		t.Error("expected zero demographics without profile payload")
	}
}

func TestMarshalProfileFields(t *testing.T) {
	doc := &entities.CaseDocument{AgeYears: 40, Sex: "female", Tags: []string{"copd"}}
	raw := marshalProfileFields(doc)
	for _, want := range []string{`"age_years":40`, `"sex":"female"`, `"copd"`} {
		if !strings.Contains(raw, want) {
			t.Errorf("expected %s in %s", want, raw)
		}
	}
}
