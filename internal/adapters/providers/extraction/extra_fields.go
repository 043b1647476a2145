package extraction

import (
	"regexp"
	"strings"

	"github.com/TejPotu/case-twin/internal/domain/entities"
)

// Extra-field scanners capture clinical context outside the base schema. Each
// hit lands in CaseProfile.ExtraFields under a stable snake_case key.
var (
	smokerRe    = regexp.MustCompile(`(?i)(?:smok(?:ing|er|es)|tobacco)[^.\n]{0,60}?((?:\d+\s*)?(?:pack[- ]?year|cigarette|cigar|pipe)[^.\n]{0,40})?`)
	nonSmokerRe = regexp.MustCompile(`(?i)non[- ]?smok|never smoked|no smoking`)
	alcoholRe   = regexp.MustCompile(`(?i)alcohol[^.\n]{0,80}`)
	bmiRe       = regexp.MustCompile(`(?i)BMI\s*(?:of\s*)?(\d{1,2}(?:\.\d)?)`)
	heightRe    = regexp.MustCompile(`(?i)(\d{1,3})\s*(cm|ft|feet|inches?)`)
	bloodRe     = regexp.MustCompile(`(?i)\b(A|B|AB|O)[+-]?\s*blood\s*type|\bblood\s*type\s*(A|B|AB|O)[+-]?\b`)
	familyRe    = regexp.MustCompile(`(?i)family\s*(?:history|hx)[^.\n]{0,150}`)
	occupRe     = regexp.MustCompile(`(?i)(?:occupation|works?\s*as|employed\s*(?:as|at)|profession)[^.\n]{0,80}`)
	ethnicityRe = regexp.MustCompile(`(?i)(?:ethnicity|race|racial background)\s*[:\-]?\s*([A-Za-z\s\-]+)`)
	vaccineRe   = regexp.MustCompile(`(?i)(?:vaccin|immuniz)[^.\n]{0,80}`)
	travelRe    = regexp.MustCompile(`(?i)(?:travel(?:led|ed)?\s*(?:to|from)|recent\s*travel)[^.\n]{0,100}`)
	funcRe      = regexp.MustCompile(`(?i)(?:functional status|ADLs?|activities of daily|ambulates?|independent)[^.\n]{0,80}`)
	codeRe      = regexp.MustCompile(`(?i)(?:code\s*status|full\s*code|DNR|DNI|comfort\s*care)[^.\n]{0,60}`)
	socialRe    = regexp.MustCompile(`(?i)social\s*(?:history|hx)[^.\n]{0,200}`)
)

func extractExtraFields(p *entities.CaseProfile, text string) {
	setText := func(key, value string) {
		p.SetExtra(key, entities.ExtraValue{Text: value})
	}

	if m := smokerRe.FindStringSubmatch(text); m != nil {
		detail := strings.TrimSpace(m[1])
		if detail == "" {
			detail = "smoker"
		}
		setText("smoking_status", detail)
	}
	if nonSmokerRe.MatchString(text) {
		setText("smoking_status", "non-smoker")
	}

	if m := alcoholRe.FindString(text); m != "" {
		setText("alcohol_use", truncate(strings.TrimSpace(m), 120))
	}

	bmiSeen := false
	if m := bmiRe.FindStringSubmatch(text); m != nil {
		setText("bmi", m[1])
		bmiSeen = true
	}
	if m := heightRe.FindStringSubmatch(text); m != nil && !bmiSeen {
		setText("height", m[1]+" "+m[2])
	}

	if m := bloodRe.FindStringSubmatch(text); m != nil {
		group := m[1]
		if group == "" {
			group = m[2]
		}
		setText("blood_type", strings.ToUpper(group))
	}

	if m := familyRe.FindString(text); m != "" {
		setText("family_history", truncate(strings.TrimSpace(m), 200))
	}
	if m := occupRe.FindString(text); m != "" {
		setText("occupation", truncate(strings.TrimSpace(m), 120))
	}
	if m := ethnicityRe.FindStringSubmatch(text); m != nil {
		setText("ethnicity", truncate(strings.TrimSpace(m[1]), 60))
	}
	if m := vaccineRe.FindString(text); m != "" {
		setText("vaccination", truncate(strings.TrimSpace(m), 120))
	}
	if m := travelRe.FindString(text); m != "" {
		setText("travel_history", truncate(strings.TrimSpace(m), 150))
	}
	if m := funcRe.FindString(text); m != "" {
		setText("functional_status", truncate(strings.TrimSpace(m), 120))
	}
	if m := codeRe.FindString(text); m != "" {
		setText("code_status", truncate(strings.TrimSpace(m), 80))
	}
	if m := socialRe.FindString(text); m != "" {
		setText("social_history", truncate(strings.TrimSpace(m), 250))
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
