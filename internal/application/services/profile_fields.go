package services

import (
	"fmt"

	"github.com/TejPotu/case-twin/internal/domain/entities"
)

// fieldDef describes one schema field of the case profile: its human label,
// whether it is an identity field (first non-empty value wins, never
// overwritten), whether it counts toward the completeness score, and typed
// accessors. The merge engine, completeness scorer, and field diff all walk
// this registry so they share a single notion of which fields exist and when
// a field is empty.
type fieldDef struct {
	Label    string
	Identity bool
	Scored   bool
	Get      func(p *entities.CaseProfile) interface{}
	Set      func(p *entities.CaseProfile, v interface{})
}

var profileFields = []fieldDef{
	// Identity: permanent keys, excluded from scoring.
	{Label: "Profile ID", Identity: true,
		Get: func(p *entities.CaseProfile) interface{} { return p.ProfileID },
		Set: func(p *entities.CaseProfile, v interface{}) { p.ProfileID = asString(v) }},
	{Label: "Case ID", Identity: true,
		Get: func(p *entities.CaseProfile) interface{} { return p.CaseID },
		Set: func(p *entities.CaseProfile, v interface{}) { p.CaseID = asString(v) }},
	{Label: "Image ID", Identity: true,
		Get: func(p *entities.CaseProfile) interface{} { return p.ImageID },
		Set: func(p *entities.CaseProfile, v interface{}) { p.ImageID = asString(v) }},

	// Patient.
	{Label: "Age", Scored: true,
		Get: func(p *entities.CaseProfile) interface{} { return p.Patient.AgeYears },
		Set: func(p *entities.CaseProfile, v interface{}) { p.Patient.AgeYears = asInt(v) }},
	{Label: "Sex", Scored: true,
		Get: func(p *entities.CaseProfile) interface{} { return p.Patient.Sex },
		Set: func(p *entities.CaseProfile, v interface{}) { p.Patient.Sex = asString(v) }},
	{Label: "Immunocompromised", Scored: true,
		Get: func(p *entities.CaseProfile) interface{} { return p.Patient.Immunocompromised },
		Set: func(p *entities.CaseProfile, v interface{}) { p.Patient.Immunocompromised = asString(v) }},
	{Label: "Weight", Scored: true,
		Get: func(p *entities.CaseProfile) interface{} { return p.Patient.WeightKg },
		Set: func(p *entities.CaseProfile, v interface{}) { p.Patient.WeightKg = asFloat(v) }},
	{Label: "Comorbidities", Scored: true,
		Get: func(p *entities.CaseProfile) interface{} { return p.Patient.Comorbidities },
		Set: func(p *entities.CaseProfile, v interface{}) { p.Patient.Comorbidities = asList(v) }},
	{Label: "Medications", Scored: true,
		Get: func(p *entities.CaseProfile) interface{} { return p.Patient.Medications },
		Set: func(p *entities.CaseProfile, v interface{}) { p.Patient.Medications = asList(v) }},
	{Label: "Allergies", Scored: true,
		Get: func(p *entities.CaseProfile) interface{} { return p.Patient.Allergies },
		Set: func(p *entities.CaseProfile, v interface{}) { p.Patient.Allergies = asString(v) }},

	// Presentation.
	{Label: "Chief Complaint", Scored: true,
		Get: func(p *entities.CaseProfile) interface{} { return p.Presentation.ChiefComplaint },
		Set: func(p *entities.CaseProfile, v interface{}) { p.Presentation.ChiefComplaint = asString(v) }},
	{Label: "Symptom Duration", Scored: true,
		Get: func(p *entities.CaseProfile) interface{} { return p.Presentation.SymptomDuration },
		Set: func(p *entities.CaseProfile, v interface{}) { p.Presentation.SymptomDuration = asString(v) }},
	{Label: "History of Present Illness", Scored: true,
		Get: func(p *entities.CaseProfile) interface{} { return p.Presentation.HPI },
		Set: func(p *entities.CaseProfile, v interface{}) { p.Presentation.HPI = asString(v) }},
	{Label: "Past Medical History", Scored: true,
		Get: func(p *entities.CaseProfile) interface{} { return p.Presentation.PMH },
		Set: func(p *entities.CaseProfile, v interface{}) { p.Presentation.PMH = asString(v) }},

	// Study.
	{Label: "Modality", Scored: true,
		Get: func(p *entities.CaseProfile) interface{} { return p.Study.Modality },
		Set: func(p *entities.CaseProfile, v interface{}) { p.Study.Modality = asString(v) }},
	{Label: "Body Region", Scored: true,
		Get: func(p *entities.CaseProfile) interface{} { return p.Study.BodyRegion },
		Set: func(p *entities.CaseProfile, v interface{}) { p.Study.BodyRegion = asString(v) }},
	{Label: "View Position", Scored: true,
		Get: func(p *entities.CaseProfile) interface{} { return p.Study.ViewPosition },
		Set: func(p *entities.CaseProfile, v interface{}) { p.Study.ViewPosition = asString(v) }},
	{Label: "Region Descriptor",
		Get: func(p *entities.CaseProfile) interface{} { return p.Study.RadiologyRegion },
		Set: func(p *entities.CaseProfile, v interface{}) { p.Study.RadiologyRegion = asString(v) }},
	{Label: "Caption",
		Get: func(p *entities.CaseProfile) interface{} { return p.Study.Caption },
		Set: func(p *entities.CaseProfile, v interface{}) { p.Study.Caption = asString(v) }},
	{Label: "Image Type",
		Get: func(p *entities.CaseProfile) interface{} { return p.Study.ImageType },
		Set: func(p *entities.CaseProfile, v interface{}) { p.Study.ImageType = asString(v) }},
	{Label: "Image Subtype",
		Get: func(p *entities.CaseProfile) interface{} { return p.Study.ImageSubtype },
		Set: func(p *entities.CaseProfile, v interface{}) { p.Study.ImageSubtype = asString(v) }},
	{Label: "Image URL",
		Get: func(p *entities.CaseProfile) interface{} { return p.Study.ImageURL },
		Set: func(p *entities.CaseProfile, v interface{}) { p.Study.ImageURL = asString(v) }},
	{Label: "Storage Path",
		Get: func(p *entities.CaseProfile) interface{} { return p.Study.StoragePath },
		Set: func(p *entities.CaseProfile, v interface{}) { p.Study.StoragePath = asString(v) }},

	// Assessment.
	{Label: "Primary Diagnosis", Scored: true,
		Get: func(p *entities.CaseProfile) interface{} { return p.Assessment.DiagnosisPrimary },
		Set: func(p *entities.CaseProfile, v interface{}) { p.Assessment.DiagnosisPrimary = asString(v) }},
	{Label: "Suspected Diagnoses", Scored: true,
		Get: func(p *entities.CaseProfile) interface{} { return p.Assessment.SuspectedPrimary },
		Set: func(p *entities.CaseProfile, v interface{}) { p.Assessment.SuspectedPrimary = asList(v) }},
	{Label: "Differential", Scored: true,
		Get: func(p *entities.CaseProfile) interface{} { return p.Assessment.Differential },
		Set: func(p *entities.CaseProfile, v interface{}) { p.Assessment.Differential = asList(v) }},
	{Label: "Urgency", Scored: true,
		Get: func(p *entities.CaseProfile) interface{} { return p.Assessment.Urgency },
		Set: func(p *entities.CaseProfile, v interface{}) { p.Assessment.Urgency = asString(v) }},
	{Label: "Infectious Concern", Scored: true,
		Get: func(p *entities.CaseProfile) interface{} { return p.Assessment.InfectiousConcern },
		Set: func(p *entities.CaseProfile, v interface{}) { p.Assessment.InfectiousConcern = asString(v) }},
	{Label: "ICU Candidate", Scored: true,
		Get: func(p *entities.CaseProfile) interface{} { return p.Assessment.ICUCandidate },
		Set: func(p *entities.CaseProfile, v interface{}) { p.Assessment.ICUCandidate = asString(v) }},

	// Summary.
	{Label: "One-liner", Scored: true,
		Get: func(p *entities.CaseProfile) interface{} { return p.Summary.OneLiner },
		Set: func(p *entities.CaseProfile, v interface{}) { p.Summary.OneLiner = asString(v) }},
	{Label: "Key Points",
		Get: func(p *entities.CaseProfile) interface{} { return p.Summary.KeyPoints },
		Set: func(p *entities.CaseProfile, v interface{}) { p.Summary.KeyPoints = asList(v) }},
	{Label: "Red Flags",
		Get: func(p *entities.CaseProfile) interface{} { return p.Summary.RedFlags },
		Set: func(p *entities.CaseProfile, v interface{}) { p.Summary.RedFlags = asList(v) }},
}

// serializeFieldValue renders a field value for change comparison.
func serializeFieldValue(v interface{}) string {
	return fmt.Sprintf("%v", v)
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asInt(v interface{}) int {
	n, _ := v.(int)
	return n
}

func asFloat(v interface{}) float64 {
	f, _ := v.(float64)
	return f
}

func asList(v interface{}) []string {
	list, _ := v.([]string)
	if list == nil {
		return nil
	}
	out := make([]string, len(list))
	copy(out, list)
	return out
}
