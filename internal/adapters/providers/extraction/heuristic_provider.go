// Package extraction provides ExtractionProvider implementations that turn a
// free-text clinical turn (plus any uploaded studies) into a CaseProfile.
package extraction

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/TejPotu/case-twin/internal/domain/entities"
	"github.com/TejPotu/case-twin/internal/domain/providers"
	"github.com/TejPotu/case-twin/pkg/utils"
)

// HeuristicProvider extracts a case profile from clinical text with lexicon
// and pattern matching only. It needs no network access and is the fallback
// when no model-backed provider is configured.
type HeuristicProvider struct {
	normalizer *utils.NoteNormalizer
}

// NewHeuristicProvider creates a new pattern-based extraction provider. When
// the abbreviation config is missing the provider still works; shorthand in
// the note is simply left unexpanded.
func NewHeuristicProvider() *HeuristicProvider {
	p := &HeuristicProvider{}
	if normalizer, err := utils.NewNoteNormalizer(utils.GetAbbreviationConfigPath()); err == nil {
		p.normalizer = normalizer
	}
	return p
}

var (
	ageRe      = regexp.MustCompile(`(?i)(\d{1,3})\s*[- ]?(?:year|yr)s?[- ]?old`)
	femaleRe   = regexp.MustCompile(`(?i)\bfemale\b|\bwoman\b`)
	maleRe     = regexp.MustCompile(`(?i)\bmale\b|\bman\b`)
	immunoRe   = regexp.MustCompile(`(?i)immunocompromised|immunosuppressed`)
	allergyRe  = regexp.MustCompile(`(?i)no known allerg`)
	chiefRe    = regexp.MustCompile(`(?i)(?:present(?:ing)? with|complaint of|admitted for|scheduled for)\s+([^.!?\n]{5,120})`)
	durationRe = regexp.MustCompile(`(?i)(?:for|over|duration of)\s+((?:\d+\s*)?(?:day|week|month|year)s?)`)

	ctRe   = regexp.MustCompile(`(?i)ct|computed tomography`)
	mriRe  = regexp.MustCompile(`(?i)mri`)
	xrayRe = regexp.MustCompile(`(?i)x[- ]?ray|cxr|chest x`)

	thoraxRe  = regexp.MustCompile(`(?i)thorax|chest|pulmonary|lung`)
	abdomenRe = regexp.MustCompile(`(?i)abdomen|abdominal|liver`)
	headRe    = regexp.MustCompile(`(?i)brain|head|neuro`)

	paViewRe = regexp.MustCompile(`(?i)\bPA\b|posteroanterior`)
	apViewRe = regexp.MustCompile(`(?i)\bAP\b|anteroposterior`)

	urgentRe  = regexp.MustCompile(`(?i)urgent|emergency|stat`)
	routineRe = regexp.MustCompile(`(?i)routine|elective|scheduled`)

	infectiousRe = regexp.MustCompile(`(?i)infection|sepsis|pneumonia|fever`)
	icuRe        = regexp.MustCompile(`(?i)icu|intensive care|critical`)
)

type lexiconEntry struct {
	pattern *regexp.Regexp
	label   string
}

var comorbidityLexicon = []lexiconEntry{
	{regexp.MustCompile(`(?i)hypertension|HTN`), "hypertension"},
	{regexp.MustCompile(`(?i)type 2 diabet|T2DM|DM2`), "type 2 diabetes"},
	{regexp.MustCompile(`(?i)type 1 diabet|T1DM|DM1`), "type 1 diabetes"},
	{regexp.MustCompile(`(?i)atrial fibrillation|AF\b|AFib`), "atrial fibrillation"},
	{regexp.MustCompile(`(?i)heart failure|CHF`), "heart failure"},
	{regexp.MustCompile(`(?i)COPD|chronic obstructive`), "COPD"},
	{regexp.MustCompile(`(?i)asthma`), "asthma"},
	{regexp.MustCompile(`(?i)cirrhosis|liver cirrhosis`), "liver cirrhosis"},
	{regexp.MustCompile(`(?i)hepatocellular carcinoma|HCC`), "hepatocellular carcinoma"},
	{regexp.MustCompile(`(?i)chronic kidney|CKD`), "chronic kidney disease"},
	{regexp.MustCompile(`(?i)coronary artery disease|CAD`), "coronary artery disease"},
	{regexp.MustCompile(`(?i)obesity`), "obesity"},
}

var diagnosisLexicon = []lexiconEntry{
	{regexp.MustCompile(`(?i)scimitar`), "scimitar syndrome"},
	{regexp.MustCompile(`(?i)pneumonia`), "community-acquired pneumonia"},
	{regexp.MustCompile(`(?i)pulmonary embolism|PE\b`), "pulmonary embolism"},
	{regexp.MustCompile(`(?i)lung malignancy|lung cancer|NSCLC|SCLC`), "lung malignancy"},
	{regexp.MustCompile(`(?i)stroke|ischemic`), "acute ischemic stroke"},
	{regexp.MustCompile(`(?i)heart failure|pulmonary edema`), "heart failure"},
	{regexp.MustCompile(`(?i)pneumothorax`), "pneumothorax"},
	{regexp.MustCompile(`(?i)pleural effusion`), "pleural effusion"},
	{regexp.MustCompile(`(?i)aortic dissection`), "aortic dissection"},
}

const hpiMaxLen = 600

// Extract builds a CaseProfile from the turn's text and file names. Fields the
// text does not support stay empty so the merge step never overwrites earlier
// answers with guesses.
func (p *HeuristicProvider) Extract(_ context.Context, input providers.ExtractionInput) (*entities.CaseProfile, error) {
	text := input.Text
	if input.Notes != nil && len(input.Notes.Data) > 0 {
		text = strings.TrimSpace(text + "\n" + string(input.Notes.Data))
	}
	if p.normalizer != nil {
		text = p.normalizer.NormalizeNote(text)
	}

	caseID := uuid.NewString()
	imageID := uuid.NewString()
	profile := &entities.CaseProfile{
		ProfileID: caseID + ":" + imageID,
		CaseID:    caseID,
		ImageID:   imageID,
	}

	extractPatient(profile, text)
	extractPresentation(profile, text)
	extractStudy(profile, text, fileNames(input))
	extractAssessment(profile, text)
	fillSummary(profile)
	extractExtraFields(profile, text)

	return profile, nil
}

func fileNames(input providers.ExtractionInput) []string {
	var names []string
	for _, f := range input.Images {
		if f.Name != "" {
			names = append(names, f.Name)
		}
	}
	for _, f := range input.Dicoms {
		if f.Name != "" {
			names = append(names, f.Name)
		}
	}
	return names
}

func extractPatient(p *entities.CaseProfile, text string) {
	if m := ageRe.FindStringSubmatch(text); m != nil {
		if age, err := strconv.Atoi(m[1]); err == nil {
			p.Patient.AgeYears = age
		}
	}

	// Female first: "female" contains "male".
	switch {
	case femaleRe.MatchString(text):
		p.Patient.Sex = "female"
	case maleRe.MatchString(text):
		p.Patient.Sex = "male"
	}

	switch {
	case immunoRe.MatchString(text):
		p.Patient.Immunocompromised = "yes"
	case strings.TrimSpace(text) != "":
		p.Patient.Immunocompromised = "no"
	}

	for _, entry := range comorbidityLexicon {
		if entry.pattern.MatchString(text) {
			p.Patient.Comorbidities = append(p.Patient.Comorbidities, entry.label)
		}
	}

	if allergyRe.MatchString(text) {
		p.Patient.Allergies = "no known allergies"
	}
}

func extractPresentation(p *entities.CaseProfile, text string) {
	if m := chiefRe.FindStringSubmatch(text); m != nil {
		p.Presentation.ChiefComplaint = strings.TrimSpace(m[1])
	}
	if m := durationRe.FindStringSubmatch(text); m != nil {
		p.Presentation.SymptomDuration = strings.TrimSpace(m[1])
	}
	if len(text) > 40 {
		hpi := text
		if len(hpi) > hpiMaxLen {
			hpi = hpi[:hpiMaxLen]
		}
		p.Presentation.HPI = hpi
	}
	if len(p.Patient.Comorbidities) > 0 {
		p.Presentation.PMH = strings.Join(p.Patient.Comorbidities, ", ")
	}
}

func extractStudy(p *entities.CaseProfile, text string, imageNames []string) {
	combined := text + " " + strings.Join(imageNames, " ")
	switch {
	case ctRe.MatchString(combined):
		p.Study.Modality = "CT"
		p.Study.ImageType = "radiology"
		p.Study.ImageSubtype = "ct"
	case mriRe.MatchString(combined):
		p.Study.Modality = "MRI"
		p.Study.ImageType = "radiology"
		p.Study.ImageSubtype = "mri"
	case xrayRe.MatchString(combined):
		p.Study.Modality = "CXR"
		p.Study.ImageType = "radiology"
		p.Study.ImageSubtype = "x_ray"
	case len(imageNames) > 0:
		p.Study.Modality = "Imaging"
		p.Study.ImageType = "radiology"
	}

	switch {
	case thoraxRe.MatchString(text):
		p.Study.BodyRegion = "thorax"
		p.Study.RadiologyRegion = "thorax"
	case abdomenRe.MatchString(text):
		p.Study.BodyRegion = "abdomen"
	case headRe.MatchString(text):
		p.Study.BodyRegion = "head"
	}

	switch {
	case paViewRe.MatchString(text):
		p.Study.ViewPosition = "PA"
	case apViewRe.MatchString(text):
		p.Study.ViewPosition = "AP"
	}
}

func extractAssessment(p *entities.CaseProfile, text string) {
	for _, entry := range diagnosisLexicon {
		if entry.pattern.MatchString(text) {
			p.Assessment.DiagnosisPrimary = entry.label
			suspected := []string{entry.label}
			if n := len(p.Patient.Comorbidities); n > 0 {
				if n > 2 {
					n = 2
				}
				suspected = append(suspected, p.Patient.Comorbidities[:n]...)
			}
			p.Assessment.SuspectedPrimary = suspected
			break
		}
	}

	switch {
	case urgentRe.MatchString(text):
		p.Assessment.Urgency = "emergent"
	case routineRe.MatchString(text):
		p.Assessment.Urgency = "routine"
	case strings.TrimSpace(text) != "":
		p.Assessment.Urgency = "semi-urgent"
	}

	if strings.TrimSpace(text) != "" {
		if infectiousRe.MatchString(text) {
			p.Assessment.InfectiousConcern = "yes"
		} else {
			p.Assessment.InfectiousConcern = "no"
		}
		if icuRe.MatchString(text) {
			p.Assessment.ICUCandidate = "yes"
		} else {
			p.Assessment.ICUCandidate = "no"
		}
	}
}

func fillSummary(p *entities.CaseProfile) {
	age := p.Patient.AgeYears
	sex := p.Patient.Sex
	diag := p.Assessment.DiagnosisPrimary
	cc := p.Presentation.ChiefComplaint

	if age > 0 && sex != "" && (diag != "" || cc != "") {
		comorbs := "multiple comorbidities"
		if len(p.Patient.Comorbidities) > 0 {
			top := p.Patient.Comorbidities
			if len(top) > 3 {
				top = top[:3]
			}
			comorbs = strings.Join(top, ", ")
		}
		lead := cc
		if lead == "" {
			lead = diag
		}
		p.Summary.OneLiner = fmt.Sprintf("%d-year-old %s with %s presenting with %s.", age, sex, comorbs, lead)
	}
	if diag != "" {
		p.Summary.KeyPoints = []string{"Primary finding: " + diag}
	}
}
