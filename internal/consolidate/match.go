package consolidate

import (
	"strings"

	"github.com/sells-group/trip-planner/internal/model"
	"github.com/sells-group/trip-planner/internal/ranking"
)

// member is one participant's snapshot.
type member struct {
	userID string
	prefs  model.PreferenceSet
}

// candidateMatches lists which member preference fields a candidate satisfies.
// Each (member, field) pair appears at most once.
func candidateMatches(c model.Candidate, members []member) []model.PreferenceMatch {
	name := model.NormalizeToken(c.Name)
	loc := model.NormalizeToken(c.Location)
	all := model.NormalizeToken(strings.Join([]string{c.Name, c.Description, c.Location, strings.Join(c.Tags, " ")}, " "))
	detail := model.NormalizeToken(c.Description + " " + strings.Join(c.Tags, " ") + " " + c.Name)

	var out []model.PreferenceMatch
	for _, m := range members {
		for _, f := range m.prefs.SetFields() {
			var hit []string
			switch f {
			case model.FieldBudget:
				if withinBudget(c, m.prefs.Budget) {
					hit = []string{"within " + formatAmount(m.prefs.Budget.Max)}
				}
			case model.FieldLocation:
				hit = containing(m.prefs.Location, name+" "+loc)
			case model.FieldTypes:
				hit = containing(m.prefs.Types, all)
			case model.FieldAmenities, model.FieldDietary:
				hit = containing(m.prefs.Values(f), detail)
			case model.FieldKeywords:
				hit = containing(m.prefs.Keywords, all)
			}
			if len(hit) > 0 {
				out = append(out, model.PreferenceMatch{UserID: m.userID, Field: f, Values: hit})
			}
		}
	}
	return out
}

func containing(tokens []string, haystack string) []string {
	var hit []string
	for _, tok := range tokens {
		if strings.Contains(haystack, tok) {
			hit = append(hit, tok)
		}
	}
	return hit
}

// withinBudget requires a parseable price at or under the member's ceiling.
func withinBudget(c model.Candidate, b *model.Budget) bool {
	if b == nil {
		return false
	}
	p, ok := ranking.ParsePrice(c.PriceEstimate)
	return ok && p.Low <= b.Max
}

// satisfiedUsers returns the distinct users attributed in matches, in order.
func satisfiedUsers(matches []model.PreferenceMatch) []string {
	var users []string
	seen := make(map[string]struct{})
	for _, m := range matches {
		if _, ok := seen[m.UserID]; ok {
			continue
		}
		seen[m.UserID] = struct{}{}
		users = append(users, m.UserID)
	}
	return users
}

// topPreference is the first stated preference of a member, by field priority.
func topPreference(p model.PreferenceSet) (model.PreferenceField, string, bool) {
	for _, f := range []model.PreferenceField{model.FieldTypes, model.FieldLocation, model.FieldDietary, model.FieldAmenities, model.FieldKeywords} {
		if vals := p.Values(f); len(vals) > 0 {
			return f, vals[0], true
		}
	}
	if p.Budget != nil {
		return model.FieldBudget, "", true
	}
	return "", "", false
}
