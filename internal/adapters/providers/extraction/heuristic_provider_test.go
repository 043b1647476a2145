package extraction

import (
	"context"
	"testing"

	"github.com/TejPotu/case-twin/internal/domain/entities"
	"github.com/TejPotu/case-twin/internal/domain/providers"
)

func extract(t *testing.T, text string, files ...entities.FileRef) *entities.CaseProfile {
	t.Helper()
	p := NewHeuristicProvider()
	profile, err := p.Extract(context.Background(), providers.ExtractionInput{Text: text, Images: files})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	return profile
}

func TestExtractDemographics(t *testing.T) {
	p := extract(t, "52 year old male presenting with hemoptysis for 3 days, history of hypertension and COPD")

	if p.Patient.AgeYears != 52 {
		t.Errorf("expected age 52, got %d", p.Patient.AgeYears)
	}
	if p.Patient.Sex != "male" {
		t.Errorf("expected male, got %q", p.Patient.Sex)
	}
	if p.Presentation.ChiefComplaint != "hemoptysis for 3 days, history of hypertension and COPD" {
		t.Errorf("unexpected chief complaint %q", p.Presentation.ChiefComplaint)
	}
	if p.Presentation.SymptomDuration != "3 days" {
		t.Errorf("expected 3 days, got %q", p.Presentation.SymptomDuration)
	}
	if len(p.Patient.Comorbidities) != 2 {
		t.Errorf("expected hypertension and COPD, got %v", p.Patient.Comorbidities)
	}
	if p.Presentation.PMH != "hypertension, COPD" {
		t.Errorf("expected PMH from comorbidities, got %q", p.Presentation.PMH)
	}
}

func TestExtractFemaleBeforeMale(t *testing.T) {
	p := extract(t, "67 year old female with fever")
	if p.Patient.Sex != "female" {
		t.Errorf("expected female, got %q", p.Patient.Sex)
	}
}

func TestExtractAgeVariants(t *testing.T) {
	cases := map[string]int{
		"52 year old man":  52,
		"52-year-old man":  52,
		"8 yr old child":   8,
		"80 yrs old woman": 80,
	}
	for text, want := range cases {
		if got := extract(t, text).Patient.AgeYears; got != want {
			t.Errorf("%q: expected age %d, got %d", text, want, got)
		}
	}
}

func TestExtractStudyFromImageName(t *testing.T) {
	img := entities.FileRef{Name: "cxr_pa_view.png", ContentType: "image/png"}
	p := extract(t, "patient admitted for evaluation of persistent cough over two days", img)

	if p.Study.Modality != "CXR" {
		t.Errorf("expected CXR from file name, got %q", p.Study.Modality)
	}
	if p.Study.ImageSubtype != "x_ray" {
		t.Errorf("expected x_ray, got %q", p.Study.ImageSubtype)
	}
}

func TestExtractModalityAndRegion(t *testing.T) {
	p := extract(t, "chest x-ray PA view shows consolidation in a patient with pneumonia")

	if p.Study.Modality != "CXR" {
		t.Errorf("expected CXR, got %q", p.Study.Modality)
	}
	if p.Study.BodyRegion != "thorax" {
		t.Errorf("expected thorax, got %q", p.Study.BodyRegion)
	}
	if p.Study.ViewPosition != "PA" {
		t.Errorf("expected PA, got %q", p.Study.ViewPosition)
	}
	if p.Assessment.DiagnosisPrimary != "community-acquired pneumonia" {
		t.Errorf("expected pneumonia diagnosis, got %q", p.Assessment.DiagnosisPrimary)
	}
	if p.Assessment.InfectiousConcern != "yes" {
		t.Errorf("expected infectious concern, got %q", p.Assessment.InfectiousConcern)
	}
}

func TestExtractUrgency(t *testing.T) {
	cases := map[string]string{
		"stat imaging required":       "emergent",
		"elective follow-up study":    "routine",
		"patient feels mildly unwell": "semi-urgent",
	}
	for text, want := range cases {
		if got := extract(t, text).Assessment.Urgency; got != want {
			t.Errorf("%q: expected %q, got %q", text, want, got)
		}
	}
}

func TestExtractEmptyTextLeavesProfileEmpty(t *testing.T) {
	p := extract(t, "")
	if p.Patient.Immunocompromised != "" {
		t.Errorf("expected no inference from empty text, got %q", p.Patient.Immunocompromised)
	}
	if p.Assessment.Urgency != "" {
		t.Errorf("expected no urgency from empty text, got %q", p.Assessment.Urgency)
	}
}

func TestExtractIdentityAssigned(t *testing.T) {
	p := extract(t, "52 year old male")
	if p.CaseID == "" || p.ImageID == "" {
		t.Fatal("expected generated case and image identifiers")
	}
	if p.ProfileID != p.CaseID+":"+p.ImageID {
		t.Errorf("expected composite profile id, got %q", p.ProfileID)
	}
}

func TestExtractSummaryOneLiner(t *testing.T) {
	p := extract(t, "52 year old male with hypertension presenting with hemoptysis and suspected pneumonia")
	want := "52-year-old male with hypertension presenting with hemoptysis and suspected pneumonia."
	if p.Summary.OneLiner != want {
		t.Errorf("expected %q, got %q", want, p.Summary.OneLiner)
	}
	if len(p.Summary.KeyPoints) != 1 {
		t.Fatalf("expected one key point, got %v", p.Summary.KeyPoints)
	}
}

func TestExtractNotesFileAppended(t *testing.T) {
	notes := entities.FileRef{Name: "notes.txt", ContentType: "text/plain", Data: []byte("history of asthma")}
	p := NewHeuristicProvider()
	profile, err := p.Extract(context.Background(), providers.ExtractionInput{Text: "52 year old male", Notes: &notes})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(profile.Patient.Comorbidities) != 1 || profile.Patient.Comorbidities[0] != "asthma" {
		t.Errorf("expected asthma from notes file, got %v", profile.Patient.Comorbidities)
	}
}

func TestExtractExtraFields(t *testing.T) {
	text := "52 year old male, former smoker with 20 pack-year history, drinks alcohol socially, " +
		"BMI of 31, works as a welder, recent travel to Peru, family history of lung cancer, DNR on file"
	p := extract(t, text)

	expectKeys := []string{"smoking_status", "alcohol_use", "bmi", "occupation", "travel_history", "family_history", "code_status"}
	for _, key := range expectKeys {
		if _, ok := p.ExtraFields[key]; !ok {
			t.Errorf("expected extra field %q, got keys %v", key, keysOf(p.ExtraFields))
		}
	}
	if got := p.ExtraFields["bmi"].Text; got != "31" {
		t.Errorf("expected bmi 31, got %q", got)
	}
}

func TestExtractNonSmokerOverridesSmokerMatch(t *testing.T) {
	p := extract(t, "patient is a non-smoker")
	if got := p.ExtraFields["smoking_status"].Text; got != "non-smoker" {
		t.Errorf("expected non-smoker, got %q", got)
	}
}

func TestExtractBloodType(t *testing.T) {
	p := extract(t, "blood type O noted on admission")
	if got := p.ExtraFields["blood_type"].Text; got != "O" {
		t.Errorf("expected O, got %q", got)
	}
}

func keysOf(m map[string]entities.ExtraValue) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
