package consolidate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sells-group/trip-planner/internal/model"
)

// detectConflicts reports pairs of members whose stated preferences cannot
// both be met: disjoint types or locations that no candidate satisfies for
// both, and budget ranges that do not overlap.
func detectConflicts(members []member, matches map[string][]model.PreferenceMatch) []string {
	conflicts := []string{}
	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			a, b := members[i], members[j]
			for _, f := range []model.PreferenceField{model.FieldTypes, model.FieldLocation} {
				av, bv := a.prefs.Values(f), b.prefs.Values(f)
				if len(av) == 0 || len(bv) == 0 || intersects(av, bv) {
					continue
				}
				if bridged(matches, f, a.userID, b.userID) {
					continue
				}
				conflicts = append(conflicts, fmt.Sprintf("%s: %s prefers %s while %s prefers %s; no candidate satisfies both",
					f, a.userID, strings.Join(av, ", "), b.userID, strings.Join(bv, ", ")))
			}
			if ab, bb := a.prefs.Budget, b.prefs.Budget; ab != nil && bb != nil && (ab.Max < bb.Min || bb.Max < ab.Min) {
				conflicts = append(conflicts, fmt.Sprintf("budget: %s (%s-%s) and %s (%s-%s) do not overlap",
					a.userID, formatAmount(ab.Min), formatAmount(ab.Max),
					b.userID, formatAmount(bb.Min), formatAmount(bb.Max)))
			}
		}
	}
	return conflicts
}

func intersects(a, b []string) bool {
	set := make(map[string]struct{}, len(a))
	for _, v := range a {
		set[v] = struct{}{}
	}
	for _, v := range b {
		if _, ok := set[v]; ok {
			return true
		}
	}
	return false
}

// bridged reports whether any candidate satisfies field f for both users.
func bridged(matches map[string][]model.PreferenceMatch, f model.PreferenceField, u1, u2 string) bool {
	for _, ms := range matches {
		var has1, has2 bool
		for _, m := range ms {
			if m.Field != f {
				continue
			}
			has1 = has1 || m.UserID == u1
			has2 = has2 || m.UserID == u2
		}
		if has1 && has2 {
			return true
		}
	}
	return false
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
