package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSuggestionsFromFencedOutput(t *testing.T) {
	raw := "```json\n{\"results\": [{\"category\": \"Deep Work\", \"confidence\": 0.82}, {\"category\": \"Meetings\", \"confidence\": 0.6}]}\n```"

	got, err := parseSuggestions(raw, 2)
	require.NoError(t, err)
	assert.Equal(t, "Deep Work", got[0].Category)
	assert.Equal(t, 0.82, got[0].Confidence)
	assert.Equal(t, "Meetings", got[1].Category)
}

func TestParseSuggestionsCountMismatch(t *testing.T) {
	raw := `{"results": [{"category": "Deep Work", "confidence": 0.8}]}`
	_, err := parseSuggestions(raw, 2)
	assert.Error(t, err)
}

func TestParseSuggestionsEmptyCategoryDefaults(t *testing.T) {
	raw := `{"results": [{"category": "", "confidence": 0.3}]}`
	got, err := parseSuggestions(raw, 1)
	require.NoError(t, err)
	assert.Equal(t, "Uncategorized", got[0].Category)
}

func TestParseScores(t *testing.T) {
	raw := "Here is the scoring:\n{\"scores\": {\"1\": 8.5, \"0\": 4}}"
	got, err := parseScores(raw)
	require.NoError(t, err)
	assert.Equal(t, map[uint]float64{1: 8.5, 0: 4}, got)
}

func TestParseScoresMissingObject(t *testing.T) {
	_, err := parseScores("sorry, I cannot help with that")
	assert.Error(t, err)
}
