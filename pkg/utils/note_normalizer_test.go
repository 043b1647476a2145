package utils

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNoteNormalizer_Success(t *testing.T) {
	configPath := filepath.Join("../../config/clinical_abbreviations.json")

	normalizer, err := NewNoteNormalizer(configPath)
	require.NoError(t, err)
	require.NotNil(t, normalizer)
	require.NotNil(t, normalizer.config)
	require.Greater(t, len(normalizer.config.Abbreviations), 0)
}

func TestNewNoteNormalizer_FileNotFound(t *testing.T) {
	configPath := "/nonexistent/path/config.json"

	normalizer, err := NewNoteNormalizer(configPath)
	assert.Error(t, err)
	assert.Nil(t, normalizer)
}

func TestNormalizeNote_EmptyString(t *testing.T) {
	configPath := filepath.Join("../../config/clinical_abbreviations.json")
	normalizer, err := NewNoteNormalizer(configPath)
	require.NoError(t, err)

	assert.Equal(t, "", normalizer.NormalizeNote(""))
}

func TestNormalizeNote_TypoCorrection(t *testing.T) {
	configPath := filepath.Join("../../config/clinical_abbreviations.json")
	normalizer, err := NewNoteNormalizer(configPath)
	require.NoError(t, err)

	testCases := []struct {
		input    string
		expected string
	}{
		{"suspected pnuemonia in the right lobe", "suspected pneumonia in the right lobe"},
		{"history of hypertention", "history of hypertension"},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, normalizer.NormalizeNote(tc.input))
		})
	}
}

func TestNormalizeNote_AbbreviationExpansion(t *testing.T) {
	configPath := filepath.Join("../../config/clinical_abbreviations.json")
	normalizer, err := NewNoteNormalizer(configPath)
	require.NoError(t, err)

	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"age shorthand", "65 yo male", "65 year old male"},
		{"age shorthand with slash", "65 y/o male", "65 year old male"},
		{"allergy shorthand", "NKDA, afebrile", "no known allergies, afebrile"},
		{"symptom shorthand", "presenting with SOB and fever", "presenting with shortness of breath and fever"},
		{"word boundaries respected", "the mayor spoke", "the mayor spoke"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, normalizer.NormalizeNote(tc.input))
		})
	}
}
