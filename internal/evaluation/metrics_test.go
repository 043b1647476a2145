package evaluation

import (
	"math"
	"reflect"
	"testing"
)

const floatTolerance = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < floatTolerance
}

// --- FieldAccuracy tests ---

func TestFieldAccuracy_AllMatch(t *testing.T) {
	expected := map[string]string{
		"patient.sex":                  "male",
		"presentation.chief_complaint": "chest pain",
	}
	actual := map[string]string{
		"patient.sex":                  "male",
		"presentation.chief_complaint": "chest pain",
	}
	got := FieldAccuracy(expected, actual)
	if !almostEqual(got, 1.0) {
		t.Errorf("expected 1.0, got %f", got)
	}
}

func TestFieldAccuracy_PartialMatch(t *testing.T) {
	expected := map[string]string{
		"patient.sex":                  "male",
		"patient.age_years":            "52",
		"assessment.diagnosis_primary": "pneumonia",
		"assessment.urgency":           "urgent",
	}
	actual := map[string]string{
		"patient.sex":                  "male",
		"patient.age_years":            "52",
		"assessment.diagnosis_primary": "lung abscess",
	}
	// 2 of 4 expected fields correct
	got := FieldAccuracy(expected, actual)
	if !almostEqual(got, 0.5) {
		t.Errorf("expected 0.5, got %f", got)
	}
}

func TestFieldAccuracy_NormalizesCaseAndWhitespace(t *testing.T) {
	expected := map[string]string{"assessment.diagnosis_primary": "Lung  Abscess"}
	actual := map[string]string{"assessment.diagnosis_primary": "lung abscess"}
	got := FieldAccuracy(expected, actual)
	if !almostEqual(got, 1.0) {
		t.Errorf("expected 1.0, got %f", got)
	}
}

func TestFieldAccuracy_EmptyExpected(t *testing.T) {
	got := FieldAccuracy(map[string]string{}, map[string]string{"a": "b"})
	// No expectations means accuracy is undefined; we return 0
	if !almostEqual(got, 0.0) {
		t.Errorf("expected 0.0, got %f", got)
	}
}

// --- FieldCoverage tests ---

func TestFieldCoverage_WrongValueStillCovered(t *testing.T) {
	expected := map[string]string{
		"patient.sex":       "male",
		"patient.age_years": "52",
	}
	actual := map[string]string{
		"patient.sex": "female",
	}
	// One of two expected fields got any value
	got := FieldCoverage(expected, actual)
	if !almostEqual(got, 0.5) {
		t.Errorf("expected 0.5, got %f", got)
	}
}

func TestFieldCoverage_BlankValueNotCovered(t *testing.T) {
	expected := map[string]string{"patient.sex": "male"}
	actual := map[string]string{"patient.sex": "   "}
	got := FieldCoverage(expected, actual)
	if !almostEqual(got, 0.0) {
		t.Errorf("expected 0.0, got %f", got)
	}
}

// --- Mismatches tests ---

func TestMismatches_SortedAndFormatted(t *testing.T) {
	expected := map[string]string{
		"patient.sex":       "male",
		"patient.age_years": "52",
	}
	actual := map[string]string{
		"patient.sex":       "male",
		"patient.age_years": "25",
	}
	got := Mismatches(expected, actual)
	want := []string{"patient.age_years: want=52 got=25"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestMismatches_NoneWhenAllMatch(t *testing.T) {
	expected := map[string]string{"patient.sex": "male"}
	actual := map[string]string{"patient.sex": "Male"}
	if got := Mismatches(expected, actual); len(got) != 0 {
		t.Errorf("expected no mismatches, got %v", got)
	}
}
