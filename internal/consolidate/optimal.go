package consolidate

import "math"

// epsilon absorbs float error in products such as 5 × 1.2.
const epsilon = 1e-9

// base is the plan size before the category multiplier.
func base(groupSize int) int {
	switch {
	case groupSize <= 4:
		return 4
	case groupSize <= 6:
		return 5
	default:
		return 6
	}
}

// OptimalCount sizes a consolidated plan:
// clamp(base(groupSize) × multiplier, floor, max(floor, ceilingFraction × distinct)),
// never exceeding the number of distinct candidates available.
func OptimalCount(groupSize int, multiplier float64, distinct int, floor int, ceilingFraction float64) int {
	if distinct <= 0 {
		return 0
	}
	raw := int(math.Floor(float64(base(groupSize))*multiplier + epsilon))
	upper := max(floor, int(math.Floor(ceilingFraction*float64(distinct)+epsilon)))
	count := min(max(raw, floor), upper)
	return min(count, distinct)
}
