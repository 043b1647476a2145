package services

import (
	"github.com/TejPotu/case-twin/internal/domain/entities"
)

// Followup is the assistant's next prompt: a rendered question plus the empty
// fields it would most like answered, most valuable first.
type Followup struct {
	Message        string   `json:"message"`
	PriorityFields []string `json:"priority_fields"`
}

const maxPriorityFields = 3

// followupPriority orders empty fields by how much they advance the clinical
// picture: presentation and history before demographics, demographics before
// study metadata. Fields not listed here are never asked about directly.
var followupPriority = []string{
	"Chief Complaint",
	"Symptom Duration",
	"History of Present Illness",
	"Comorbidities",
	"Past Medical History",
	"Medications",
	"Age",
	"Sex",
	"Immunocompromised",
	"Allergies",
	"Weight",
	"Modality",
	"Body Region",
	"View Position",
	"Urgency",
}

// followupPhrases renders each field label as the thing being asked for.
var followupPhrases = map[string]string{
	"Chief Complaint":            "what brings the patient in",
	"Symptom Duration":           "how long the symptoms have been going on",
	"History of Present Illness": "more about how the illness has evolved",
	"Comorbidities":              "any chronic conditions the patient has",
	"Past Medical History":       "the relevant past medical history",
	"Medications":                "what medications the patient is taking",
	"Age":                        "the patient's age",
	"Sex":                        "the patient's sex",
	"Immunocompromised":          "whether the patient is immunocompromised",
	"Allergies":                  "any known allergies",
	"Weight":                     "the patient's weight",
	"Modality":                   "what kind of imaging study this is",
	"Body Region":                "which body region was imaged",
	"View Position":              "the view position of the study",
	"Urgency":                    "how urgent the presentation is",
}

// NextFollowup produces the assistant's next question for the given profile
// and completeness percentage. Deterministic: the same profile always yields
// the same prompt. The first priority field becomes the orchestrator's current
// question pointer; nothing enforces that the user actually answers it.
func NextFollowup(p *entities.CaseProfile, percent int) Followup {
	if p == nil {
		p = &entities.CaseProfile{}
	}

	empty := make(map[string]bool)
	for _, def := range profileFields {
		if entities.IsEmptyValue(def.Get(p)) {
			empty[def.Label] = true
		}
	}

	var priority []string
	for _, label := range followupPriority {
		if empty[label] {
			priority = append(priority, label)
		}
		if len(priority) == maxPriorityFields {
			break
		}
	}

	if len(priority) == 0 {
		return Followup{
			Message: "The case profile looks complete. Review it and proceed to twin search whenever you're ready.",
		}
	}

	message := "Could you tell me " + followupPhrases[priority[0]] + "?"
	if len(priority) > 1 {
		message += " It would also help to know " + followupPhrases[priority[1]]
		if len(priority) > 2 {
			message += " and " + followupPhrases[priority[2]]
		}
		message += "."
	}
	if IsReady(percent) {
		message = "The profile is ready for twin search, but more detail sharpens the match. " + message
	}

	return Followup{Message: message, PriorityFields: priority}
}
