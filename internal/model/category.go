package model

import (
	_ "embed"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Category is one of the four trip-planning verticals.
type Category string

const (
	CategoryStay      Category = "stay"
	CategoryTransport Category = "transport"
	CategoryDining    Category = "dining"
	CategoryActivity  Category = "activity"
)

// AllCategories returns every category in display order.
func AllCategories() []Category {
	return []Category{CategoryStay, CategoryTransport, CategoryDining, CategoryActivity}
}

// categoryAliases maps room-type labels used by clients onto categories.
var categoryAliases = map[string]Category{
	"stay":           CategoryStay,
	"stays":          CategoryStay,
	"accommodation":  CategoryStay,
	"hotel":          CategoryStay,
	"lodging":        CategoryStay,
	"transport":      CategoryTransport,
	"transportation": CategoryTransport,
	"travel":         CategoryTransport,
	"dining":         CategoryDining,
	"food":           CategoryDining,
	"restaurant":     CategoryDining,
	"restaurants":    CategoryDining,
	"activity":       CategoryActivity,
	"activities":     CategoryActivity,
	"things_to_do":   CategoryActivity,
}

// ParseCategory resolves a category name or alias (case-insensitive).
func ParseCategory(s string) (Category, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
	if c, ok := categoryAliases[key]; ok {
		return c, nil
	}
	return "", eris.Wrapf(ErrInvalidInput, "model: unknown category %q", s)
}

// Valid reports whether c is one of the four known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryStay, CategoryTransport, CategoryDining, CategoryActivity:
		return true
	default:
		return false
	}
}

// CategoryProfile is the per-category configuration record.
type CategoryProfile struct {
	Label            string   `yaml:"label"`
	SearchNoun       string   `yaml:"search_noun"`
	Multiplier       float64  `yaml:"multiplier"`
	DefaultQuestions []string `yaml:"questions"`
}

//go:embed categories.yaml
var categoriesYAML []byte

var (
	profilesOnce sync.Once
	profiles     map[Category]CategoryProfile
)

func loadProfiles() {
	raw := make(map[string]CategoryProfile)
	if err := yaml.Unmarshal(categoriesYAML, &raw); err != nil {
		panic(eris.Wrap(err, "model: parse embedded categories.yaml"))
	}
	profiles = make(map[Category]CategoryProfile, len(raw))
	for k, v := range raw {
		profiles[Category(k)] = v
	}
}

// Profile returns the configuration record for c. Unknown categories get a
// neutral profile with multiplier 1.0.
func Profile(c Category) CategoryProfile {
	profilesOnce.Do(loadProfiles)
	if p, ok := profiles[c]; ok {
		return p
	}
	return CategoryProfile{Label: string(c), SearchNoun: string(c), Multiplier: 1.0}
}
