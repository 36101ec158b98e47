package ranking

import (
	"strings"

	"github.com/sells-group/trip-planner/internal/model"
)

// PriceRange is a parsed candidate price estimate.
type PriceRange struct {
	Low  float64
	High float64
}

// ParsePrice interprets a candidate's price estimate. "Free" parses as zero.
// Symbolic tiers ("$$"), "Varies" and empty strings are unparseable.
func ParsePrice(estimate string) (PriceRange, bool) {
	s := strings.ToLower(strings.TrimSpace(estimate))
	switch s {
	case "":
		return PriceRange{}, false
	case "free", "no cost", "complimentary":
		return PriceRange{}, true
	}
	lo, hi, ok := model.ParseAmountRange(s)
	if !ok {
		return PriceRange{}, false
	}
	return PriceRange{Low: lo, High: hi}, true
}

// overBudget reports whether a candidate's price clearly exceeds the budget
// ceiling scaled by slack. The low end of a price range is compared so a
// range that reaches into the budget is kept.
func overBudget(c model.Candidate, b *model.Budget, slack float64) bool {
	if b == nil {
		return false
	}
	p, ok := ParsePrice(c.PriceEstimate)
	if !ok {
		return false
	}
	return p.Low > b.Max*slack
}
