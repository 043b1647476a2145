package evaluation

import (
	"sort"
	"strings"
)

// FieldAccuracy computes the fraction of expected fields whose extracted value
// matches after normalization. Returns 0.0 if expected is empty.
func FieldAccuracy(expected, actual map[string]string) float64 {
	if len(expected) == 0 {
		return 0.0
	}

	matched := 0
	for path, want := range expected {
		if NormalizeValue(actual[path]) == NormalizeValue(want) {
			matched++
		}
	}

	return float64(matched) / float64(len(expected))
}

// FieldCoverage computes the fraction of expected fields for which the
// extractor produced any non-empty value, right or wrong. Coverage bounds
// accuracy from above; the gap between them is extraction noise.
func FieldCoverage(expected, actual map[string]string) float64 {
	if len(expected) == 0 {
		return 0.0
	}

	filled := 0
	for path := range expected {
		if strings.TrimSpace(actual[path]) != "" {
			filled++
		}
	}

	return float64(filled) / float64(len(expected))
}

// Mismatches returns the expected field paths whose extracted value does not
// match, formatted as "path: want=X got=Y".
func Mismatches(expected, actual map[string]string) []string {
	var out []string
	for path, want := range expected {
		got := actual[path]
		if NormalizeValue(got) != NormalizeValue(want) {
			out = append(out, path+": want="+want+" got="+got)
		}
	}
	sort.Strings(out)
	return out
}

// NormalizeValue canonicalizes a field value for comparison: lowercase,
// trimmed, with internal whitespace collapsed.
func NormalizeValue(value string) string {
	return strings.Join(strings.Fields(strings.ToLower(value)), " ")
}
