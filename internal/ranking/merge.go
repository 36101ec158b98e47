package ranking

import "github.com/sells-group/trip-planner/internal/model"

// Merge concatenates candidate lists and drops later duplicates (same
// source reference, or same case-insensitive name when the reference is
// missing). Inputs are not modified; the first occurrence wins.
func Merge(lists ...[]model.Candidate) []model.Candidate {
	total := 0
	for _, l := range lists {
		total += len(l)
	}
	out := make([]model.Candidate, 0, total)
	seen := make(map[string]struct{}, total)
	for _, l := range lists {
		for _, c := range l {
			key := c.DedupKey()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}
