package consolidate

import (
	"fmt"
	"strings"

	"github.com/sells-group/trip-planner/internal/model"
)

// explain builds an attributed rationale: every sentence names the members
// and the preference fields involved.
func explain(c model.Candidate, matches []model.PreferenceMatch, selectedBy []string) model.Rationale {
	var parts []string
	for _, user := range satisfiedUsers(matches) {
		var fields []string
		for _, m := range matches {
			if m.UserID != user {
				continue
			}
			fields = append(fields, fmt.Sprintf("%s: %s", m.Field, strings.Join(m.Values, ", ")))
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", user, strings.Join(fields, "; ")))
	}

	var text string
	if len(parts) > 0 {
		text = "Satisfies " + joinAnd(parts) + "."
	} else {
		text = "Matches no stated preference of any member."
	}
	if len(selectedBy) > 0 {
		text += " Selected by " + joinAnd(selectedBy) + "."
	}

	return model.Rationale{
		CandidateID: c.ID,
		Text:        text,
		Matches:     matches,
		SelectedBy:  selectedBy,
	}
}

func joinAnd(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}
