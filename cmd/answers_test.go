package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnswers_YAML(t *testing.T) {
	data := []byte(`
- question_text: What is your budget?
  answer_value: {min: 3000, max: 5000}
- question_text: Which area?
  answer_value: [Beach, Old Town]
`)
	got, err := parseAnswers(data)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "What is your budget?", got[0].QuestionText)
	assert.Equal(t, map[string]any{"min": 3000, "max": 5000}, got[0].AnswerValue)
	assert.Equal(t, []any{"Beach", "Old Town"}, got[1].AnswerValue)
}

func TestParseAnswers_JSON(t *testing.T) {
	got, err := parseAnswers([]byte(`[{"question_text": "Preferred cuisine", "answer_value": "Seafood"}]`))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Seafood", got[0].AnswerValue)
}

func TestParseAnswers_Invalid(t *testing.T) {
	_, err := parseAnswers([]byte("question_text: not a list"))
	assert.Error(t, err)
}

func TestLoadAnswers(t *testing.T) {
	got, err := loadAnswers("")
	require.NoError(t, err)
	assert.Nil(t, got)

	path := filepath.Join(t.TempDir(), "answers.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- question_text: Dietary needs\n  answer_value: vegan\n"), 0o600))
	got, err = loadAnswers(path)
	require.NoError(t, err)
	require.Len(t, got, 1)

	_, err = loadAnswers(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
