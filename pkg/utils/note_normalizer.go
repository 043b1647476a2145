package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
)

// NormalizationConfig holds clinical abbreviation and typo correction data
type NormalizationConfig struct {
	Abbreviations map[string]AbbreviationEntry `json:"abbreviations"`
	Typos         map[string]string            `json:"typos"`
}

// AbbreviationEntry represents a clinical abbreviation
type AbbreviationEntry struct {
	Expanded   string   `json:"expanded"`
	Alternates []string `json:"alternates"`
	Category   string   `json:"category"`
}

type expansionRule struct {
	re       *regexp.Regexp
	expanded string
}

// NoteNormalizer expands clinical shorthand in free-text notes so that
// downstream pattern extraction sees full terms. "NKDA" becomes
// "no known allergies", "65 yo" becomes "65 year old".
type NoteNormalizer struct {
	config *NormalizationConfig
	typos  []expansionRule
	rules  []expansionRule
}

// NewNoteNormalizer loads the abbreviation config and precompiles the
// replacement rules. Longer abbreviations are compiled first so that
// overlapping shorthand resolves to the most specific expansion.
func NewNoteNormalizer(configPath string) (*NoteNormalizer, error) {
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config NormalizationConfig
	if err := json.Unmarshal(configFile, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	n := &NoteNormalizer{config: &config}

	for typo, correct := range config.Typos {
		n.typos = append(n.typos, expansionRule{
			re:       regexp.MustCompile("(?i)" + regexp.QuoteMeta(typo)),
			expanded: correct,
		})
	}
	sort.Slice(n.typos, func(i, j int) bool {
		return n.typos[i].expanded < n.typos[j].expanded
	})

	var abbrevs []string
	for abbr := range config.Abbreviations {
		abbrevs = append(abbrevs, abbr)
	}
	sort.Slice(abbrevs, func(i, j int) bool {
		if len(abbrevs[i]) != len(abbrevs[j]) {
			return len(abbrevs[i]) > len(abbrevs[j])
		}
		return abbrevs[i] < abbrevs[j]
	})

	for _, abbr := range abbrevs {
		entry := config.Abbreviations[abbr]
		n.rules = append(n.rules, expansionRule{
			re:       regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(abbr) + `\b`),
			expanded: entry.Expanded,
		})
		for _, alt := range entry.Alternates {
			n.rules = append(n.rules, expansionRule{
				re:       regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(alt) + `\b`),
				expanded: entry.Expanded,
			})
		}
	}

	return n, nil
}

// NormalizeNote corrects known typos and expands abbreviations in a note.
// The original text is never mutated; callers get a corrected copy.
func (n *NoteNormalizer) NormalizeNote(text string) string {
	if text == "" {
		return ""
	}

	result := text
	for _, rule := range n.typos {
		result = rule.re.ReplaceAllString(result, rule.expanded)
	}
	for _, rule := range n.rules {
		result = rule.re.ReplaceAllString(result, rule.expanded)
	}
	return result
}

// GetAbbreviationConfigPath returns the abbreviation config path
func GetAbbreviationConfigPath() string {
	// Check environment variable first
	if configPath := os.Getenv("CLINICAL_ABBREV_CONFIG"); configPath != "" {
		return configPath
	}

	// Default path
	return "config/clinical_abbreviations.json"
}
