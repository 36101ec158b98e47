package model

import (
	"math"
	"strconv"
	"strings"
)

var currencyTokens = []string{"usd", "eur", "gbp", "inr", "rs.", "rs", "$", "€", "£", "₹", "¥"}

// ParseAmount parses a money-ish string such as "4,000", "$120/night" or
// "2.5k". It reports false when s holds no usable number.
func ParseAmount(s string) (float64, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.Index(s, "/"); i >= 0 {
		s = s[:i]
	}
	if i := strings.Index(s, " per "); i >= 0 {
		s = s[:i]
	}
	for _, tok := range currencyTokens {
		s = strings.ReplaceAll(s, tok, "")
	}
	s = strings.NewReplacer(",", "", "_", "", " ", "").Replace(s)
	if s == "" {
		return 0, false
	}

	mult := 1.0
	if strings.HasSuffix(s, "k") {
		mult = 1000
		s = strings.TrimSuffix(s, "k")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v * mult, true
}

// ParseAmountRange parses "4000-5000", "$10 – $20" or "100 to 200". A single
// amount yields lo == hi. Bounds are returned ordered.
func ParseAmountRange(s string) (lo, hi float64, ok bool) {
	norm := strings.ReplaceAll(strings.ToLower(s), "–", "-")
	norm = strings.ReplaceAll(norm, "—", "-")
	norm = strings.ReplaceAll(norm, " to ", "-")

	parts := strings.Split(norm, "-")
	switch len(parts) {
	case 1:
		v, ok := ParseAmount(parts[0])
		return v, v, ok
	case 2:
		a, okA := ParseAmount(parts[0])
		b, okB := ParseAmount(parts[1])
		if !okA || !okB {
			return 0, 0, false
		}
		if a > b {
			a, b = b, a
		}
		return a, b, true
	default:
		return 0, 0, false
	}
}
