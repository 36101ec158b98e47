package model

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// PreferenceField names one of the structured preference buckets.
type PreferenceField string

const (
	FieldBudget    PreferenceField = "budget"
	FieldTypes     PreferenceField = "types"
	FieldAmenities PreferenceField = "amenities"
	FieldDietary   PreferenceField = "dietary"
	FieldLocation  PreferenceField = "location"
	FieldKeywords  PreferenceField = "keywords"
)

// Budget is an inclusive numeric price range in the trip currency.
type Budget struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// NewBudget returns a budget with min <= max.
func NewBudget(a, b float64) *Budget {
	if a > b {
		a, b = b, a
	}
	return &Budget{Min: a, Max: b}
}

// PreferenceSet is one member's structured preferences for a category.
// Set fields are deduplicated, lower-cased and keep first-seen order.
type PreferenceSet struct {
	Category  Category `json:"category"`
	Budget    *Budget  `json:"budget,omitempty"`
	Types     []string `json:"types,omitempty"`
	Amenities []string `json:"amenities,omitempty"`
	Dietary   []string `json:"dietary,omitempty"`
	Location  []string `json:"location,omitempty"`
	Keywords  []string `json:"free_text_keywords,omitempty"`
}

// IsEmpty reports whether no preference field is set.
func (p PreferenceSet) IsEmpty() bool {
	return p.Budget == nil && len(p.Types) == 0 && len(p.Amenities) == 0 &&
		len(p.Dietary) == 0 && len(p.Location) == 0 && len(p.Keywords) == 0
}

// Values returns the token values for a set-valued field.
func (p PreferenceSet) Values(f PreferenceField) []string {
	switch f {
	case FieldTypes:
		return p.Types
	case FieldAmenities:
		return p.Amenities
	case FieldDietary:
		return p.Dietary
	case FieldLocation:
		return p.Location
	case FieldKeywords:
		return p.Keywords
	default:
		return nil
	}
}

// SetFields lists the fields that carry at least one value, in a fixed order.
func (p PreferenceSet) SetFields() []PreferenceField {
	var out []PreferenceField
	if p.Budget != nil {
		out = append(out, FieldBudget)
	}
	for _, f := range []PreferenceField{FieldTypes, FieldAmenities, FieldDietary, FieldLocation, FieldKeywords} {
		if len(p.Values(f)) > 0 {
			out = append(out, f)
		}
	}
	return out
}

// Normalized returns a copy with every set field case-folded and
// deduplicated and the budget bounds ordered.
func (p PreferenceSet) Normalized() PreferenceSet {
	out := PreferenceSet{
		Category:  p.Category,
		Types:     AppendUnique(nil, p.Types...),
		Amenities: AppendUnique(nil, p.Amenities...),
		Dietary:   AppendUnique(nil, p.Dietary...),
		Location:  AppendUnique(nil, p.Location...),
		Keywords:  AppendUnique(nil, p.Keywords...),
	}
	if p.Budget != nil {
		out.Budget = NewBudget(p.Budget.Min, p.Budget.Max)
	}
	return out
}

// Canonical serializes the set into a stable string: set members are sorted
// so that two sets with the same content produce the same output.
func (p PreferenceSet) Canonical() string {
	n := p.Normalized()
	var b strings.Builder
	b.WriteString("category=")
	b.WriteString(string(n.Category))
	if n.Budget != nil {
		b.WriteString(";budget=")
		b.WriteString(strconv.FormatFloat(n.Budget.Min, 'f', -1, 64))
		b.WriteByte('-')
		b.WriteString(strconv.FormatFloat(n.Budget.Max, 'f', -1, 64))
	}
	for _, f := range []PreferenceField{FieldTypes, FieldAmenities, FieldDietary, FieldLocation, FieldKeywords} {
		vals := append([]string(nil), n.Values(f)...)
		if len(vals) == 0 {
			continue
		}
		sort.Strings(vals)
		b.WriteByte(';')
		b.WriteString(string(f))
		b.WriteByte('=')
		b.WriteString(strings.Join(vals, ","))
	}
	return b.String()
}

// NormalizeToken trims and lower-cases s using Unicode case rules.
func NormalizeToken(s string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(s))
}

// AppendUnique appends the normalized, non-empty values not already in dst.
func AppendUnique(dst []string, vals ...string) []string {
	seen := make(map[string]struct{}, len(dst)+len(vals))
	for _, v := range dst {
		seen[v] = struct{}{}
	}
	for _, v := range vals {
		n := NormalizeToken(v)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		dst = append(dst, n)
	}
	return dst
}
