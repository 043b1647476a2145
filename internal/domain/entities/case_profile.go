package entities

import (
	"encoding/json"
	"fmt"
)

// CaseProfile is the structured clinical case record the intake orchestrator
// builds incrementally. Every field is optional; the profile is well-formed in
// any partially filled state.
type CaseProfile struct {
	// Identity fields are assigned once and never overwritten.
	ProfileID string `json:"profile_id,omitempty"`
	CaseID    string `json:"case_id,omitempty"`
	ImageID   string `json:"image_id,omitempty"`

	Patient      Patient      `json:"patient"`
	Presentation Presentation `json:"presentation"`
	Study        Study        `json:"study"`
	Assessment   Assessment   `json:"assessment"`
	Summary      Summary      `json:"summary"`

	// ExtraFields is the escape hatch for clinical data the fixed schema has
	// no slot for (smoking status, travel history, code status, ...).
	ExtraFields map[string]ExtraValue `json:"extra_fields,omitempty"`
}

// Patient holds demographic and background information.
type Patient struct {
	AgeYears          int      `json:"age_years,omitempty"`
	Sex               string   `json:"sex,omitempty"`
	Immunocompromised string   `json:"immunocompromised,omitempty"`
	WeightKg          float64  `json:"weight_kg,omitempty"`
	Comorbidities     []string `json:"comorbidities,omitempty"`
	Medications       []string `json:"medications,omitempty"`
	Allergies         string   `json:"allergies,omitempty"`
}

// Presentation holds the presenting complaint and history narratives.
type Presentation struct {
	ChiefComplaint  string `json:"chief_complaint,omitempty"`
	SymptomDuration string `json:"symptom_duration,omitempty"`
	HPI             string `json:"hpi,omitempty"`
	PMH             string `json:"pmh,omitempty"`
}

// Study describes the imaging study attached to the case.
type Study struct {
	Modality        string `json:"modality,omitempty"`
	BodyRegion      string `json:"body_region,omitempty"`
	ViewPosition    string `json:"view_position,omitempty"`
	RadiologyRegion string `json:"radiology_region,omitempty"`
	Caption         string `json:"caption,omitempty"`
	ImageType       string `json:"image_type,omitempty"`
	ImageSubtype    string `json:"image_subtype,omitempty"`
	ImageURL        string `json:"image_url,omitempty"`
	StoragePath     string `json:"storage_path,omitempty"`
}

// Assessment holds the working clinical assessment.
type Assessment struct {
	DiagnosisPrimary  string   `json:"diagnosis_primary,omitempty"`
	SuspectedPrimary  []string `json:"suspected_primary,omitempty"`
	Differential      []string `json:"differential,omitempty"`
	Urgency           string   `json:"urgency,omitempty"`
	InfectiousConcern string   `json:"infectious_concern,omitempty"`
	ICUCandidate      string   `json:"icu_candidate,omitempty"`
}

// Summary holds the one-line synthesis and highlights.
type Summary struct {
	OneLiner  string   `json:"one_liner,omitempty"`
	KeyPoints []string `json:"key_points,omitempty"`
	RedFlags  []string `json:"red_flags,omitempty"`
}

// ExtraValue is the value type for ExtraFields: either a single string or an
// ordered list of strings. The zero value is empty.
type ExtraValue struct {
	Text string
	List []string
}

// NewExtraText wraps a single string value.
func NewExtraText(text string) ExtraValue {
	return ExtraValue{Text: text}
}

// NewExtraList wraps a list value.
func NewExtraList(items ...string) ExtraValue {
	return ExtraValue{List: items}
}

// IsEmpty reports whether the value carries no data.
func (v ExtraValue) IsEmpty() bool {
	return v.Text == "" && len(v.List) == 0
}

// String renders the value for display.
func (v ExtraValue) String() string {
	if len(v.List) > 0 {
		out := ""
		for i, item := range v.List {
			if i > 0 {
				out += ", "
			}
			out += item
		}
		return out
	}
	return v.Text
}

// MarshalJSON encodes the value as a bare string or a string array.
func (v ExtraValue) MarshalJSON() ([]byte, error) {
	if len(v.List) > 0 {
		return json.Marshal(v.List)
	}
	return json.Marshal(v.Text)
}

// UnmarshalJSON accepts either a string or a string array.
func (v *ExtraValue) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*v = ExtraValue{Text: text}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*v = ExtraValue{List: list}
		return nil
	}
	return fmt.Errorf("extra field value must be a string or a string array")
}

// IsEmptyValue is the shared emptiness predicate used by the completeness
// scorer, merge engine, and field diff: a field is empty iff it is the zero
// value, an empty string, or an empty list.
func IsEmptyValue(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case int:
		return val == 0
	case float64:
		return val == 0
	case []string:
		return len(val) == 0
	case ExtraValue:
		return val.IsEmpty()
	default:
		return false
	}
}

// Clone returns a deep copy of the profile.
func (p *CaseProfile) Clone() *CaseProfile {
	if p == nil {
		return nil
	}
	clone := *p
	clone.Patient.Comorbidities = cloneStrings(p.Patient.Comorbidities)
	clone.Patient.Medications = cloneStrings(p.Patient.Medications)
	clone.Assessment.SuspectedPrimary = cloneStrings(p.Assessment.SuspectedPrimary)
	clone.Assessment.Differential = cloneStrings(p.Assessment.Differential)
	clone.Summary.KeyPoints = cloneStrings(p.Summary.KeyPoints)
	clone.Summary.RedFlags = cloneStrings(p.Summary.RedFlags)
	if p.ExtraFields != nil {
		clone.ExtraFields = make(map[string]ExtraValue, len(p.ExtraFields))
		for k, v := range p.ExtraFields {
			v.List = cloneStrings(v.List)
			clone.ExtraFields[k] = v
		}
	}
	return &clone
}

// SetExtra records an extra field, allocating the map on first use.
func (p *CaseProfile) SetExtra(key string, value ExtraValue) {
	if value.IsEmpty() {
		return
	}
	if p.ExtraFields == nil {
		p.ExtraFields = make(map[string]ExtraValue)
	}
	p.ExtraFields[key] = value
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
