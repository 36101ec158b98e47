package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/trip-planner/internal/model"
)

// answerEntry is one questionnaire answer in an answers file. YAML is a
// superset of JSON, so both formats load.
type answerEntry struct {
	QuestionID   string `yaml:"question_id"`
	QuestionText string `yaml:"question_text"`
	Section      string `yaml:"section"`
	AnswerValue  any    `yaml:"answer_value"`
}

// loadAnswers reads answer records from path. An empty path yields none.
func loadAnswers(path string) ([]model.AnswerRecord, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read answers %s", path)
	}
	return parseAnswers(data)
}

func parseAnswers(data []byte) ([]model.AnswerRecord, error) {
	var entries []answerEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, eris.Wrap(err, "parse answers")
	}
	out := make([]model.AnswerRecord, 0, len(entries))
	for _, e := range entries {
		out = append(out, model.AnswerRecord{
			QuestionID:   e.QuestionID,
			QuestionText: e.QuestionText,
			Section:      e.Section,
			AnswerValue:  e.AnswerValue,
		})
	}
	return out, nil
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
