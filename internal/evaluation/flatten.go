package evaluation

import (
	"strconv"
	"strings"

	"github.com/TejPotu/case-twin/internal/domain/entities"
)

// FlattenProfile renders a case profile as a flat path-to-value map using the
// profile's JSON field names, so golden expectations can address any field
// with a dotted path. List fields are joined with ", "; empty fields are
// omitted. Identity fields are excluded because extraction never assigns them.
func FlattenProfile(p *entities.CaseProfile) map[string]string {
	out := map[string]string{}
	if p == nil {
		return out
	}

	put := func(path, value string) {
		if strings.TrimSpace(value) != "" {
			out[path] = value
		}
	}
	putList := func(path string, values []string) {
		put(path, strings.Join(values, ", "))
	}

	if p.Patient.AgeYears > 0 {
		put("patient.age_years", strconv.Itoa(p.Patient.AgeYears))
	}
	put("patient.sex", p.Patient.Sex)
	put("patient.immunocompromised", p.Patient.Immunocompromised)
	if p.Patient.WeightKg > 0 {
		put("patient.weight_kg", strconv.FormatFloat(p.Patient.WeightKg, 'f', -1, 64))
	}
	putList("patient.comorbidities", p.Patient.Comorbidities)
	putList("patient.medications", p.Patient.Medications)
	put("patient.allergies", p.Patient.Allergies)

	put("presentation.chief_complaint", p.Presentation.ChiefComplaint)
	put("presentation.symptom_duration", p.Presentation.SymptomDuration)
	put("presentation.hpi", p.Presentation.HPI)
	put("presentation.pmh", p.Presentation.PMH)

	put("study.modality", p.Study.Modality)
	put("study.body_region", p.Study.BodyRegion)
	put("study.view_position", p.Study.ViewPosition)
	put("study.radiology_region", p.Study.RadiologyRegion)
	put("study.caption", p.Study.Caption)
	put("study.image_type", p.Study.ImageType)
	put("study.image_subtype", p.Study.ImageSubtype)

	put("assessment.diagnosis_primary", p.Assessment.DiagnosisPrimary)
	putList("assessment.suspected_primary", p.Assessment.SuspectedPrimary)
	putList("assessment.differential", p.Assessment.Differential)
	put("assessment.urgency", p.Assessment.Urgency)
	put("assessment.infectious_concern", p.Assessment.InfectiousConcern)
	put("assessment.icu_candidate", p.Assessment.ICUCandidate)

	put("summary.one_liner", p.Summary.OneLiner)
	putList("summary.key_points", p.Summary.KeyPoints)
	putList("summary.red_flags", p.Summary.RedFlags)

	for key, value := range p.ExtraFields {
		if !value.IsEmpty() {
			put("extra_fields."+key, value.String())
		}
	}

	return out
}
