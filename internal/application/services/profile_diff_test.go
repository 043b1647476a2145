package services

import (
	"reflect"
	"testing"

	"github.com/TejPotu/case-twin/internal/domain/entities"
)

func TestDiffProfilesNewlyFilled(t *testing.T) {
	before := &entities.CaseProfile{}
	after := &entities.CaseProfile{}
	after.Patient.AgeYears = 52
	after.Presentation.ChiefComplaint = "hemoptysis"

	got := DiffProfiles(before, after)
	want := []string{"Age", "Chief Complaint"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestDiffProfilesChangedValue(t *testing.T) {
	before := &entities.CaseProfile{}
	before.Assessment.Urgency = "routine"
	after := &entities.CaseProfile{}
	after.Assessment.Urgency = "emergent"

	got := DiffProfiles(before, after)
	if !reflect.DeepEqual(got, []string{"Urgency"}) {
		t.Errorf("expected [Urgency], got %v", got)
	}
}

func TestDiffProfilesNoChange(t *testing.T) {
	p := richProfile()
	if got := DiffProfiles(p, p.Clone()); len(got) != 0 {
		t.Errorf("expected no diff, got %v", got)
	}
}

func TestDiffProfilesIgnoresIdentity(t *testing.T) {
	before := &entities.CaseProfile{}
	after := &entities.CaseProfile{ProfileID: "p-1", CaseID: "c-1"}
	if got := DiffProfiles(before, after); len(got) != 0 {
		t.Errorf("expected identity fields excluded, got %v", got)
	}
}

func TestDiffProfilesRegistryOrder(t *testing.T) {
	before := &entities.CaseProfile{}
	after := &entities.CaseProfile{}
	after.Summary.OneLiner = "52M with hemoptysis"
	after.Patient.Sex = "male"
	after.Study.Modality = "CXR"

	got := DiffProfiles(before, after)
	want := []string{"Sex", "Modality", "One-liner"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected stable order %v, got %v", want, got)
	}
}

func TestDiffExtraFieldsSortedAndHumanized(t *testing.T) {
	before := &entities.CaseProfile{}
	before.SetExtra("occupation", entities.ExtraValue{Text: "welder"})

	after := &entities.CaseProfile{}
	after.SetExtra("occupation", entities.ExtraValue{Text: "retired welder"})
	after.SetExtra("travel_history", entities.ExtraValue{Text: "Peru"})
	after.SetExtra("blood_type", entities.ExtraValue{Text: "O+"})

	got := DiffExtraFields(before, after)
	want := []string{"Blood Type", "Occupation", "Travel History"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestDiffExtraFieldsUnchangedKeySkipped(t *testing.T) {
	before := &entities.CaseProfile{}
	before.SetExtra("occupation", entities.ExtraValue{Text: "welder"})
	after := before.Clone()

	if got := DiffExtraFields(before, after); len(got) != 0 {
		t.Errorf("expected no extra-field diff, got %v", got)
	}
}
