package preference

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/trip-planner/internal/model"
)

// Extractor builds a PreferenceSet from answer records.
type Extractor struct {
	classifier Classifier
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithClassifier replaces the default keyword classifier.
func WithClassifier(c Classifier) Option {
	return func(e *Extractor) {
		e.classifier = c
	}
}

// NewExtractor creates an Extractor. The keyword classifier is used unless
// overridden.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{classifier: NewKeywordClassifier()}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Extract normalizes answers into a PreferenceSet for the category.
// Malformed values are skipped; no answers yields an empty set.
// When several budget answers parse, the last one wins.
func (e *Extractor) Extract(category model.Category, answers []model.AnswerRecord) model.PreferenceSet {
	prefs := model.PreferenceSet{Category: category}

	for _, a := range answers {
		if a.AnswerValue == nil {
			continue
		}
		bucket := e.classifier.Classify(a.QuestionText)

		if bucket == BucketBudget {
			if b, ok := parseBudget(a.AnswerValue); ok {
				prefs.Budget = b
			} else {
				zap.L().Debug("skipping unparseable budget answer",
					zap.String("question", a.QuestionText),
					zap.Any("value", a.AnswerValue),
				)
			}
			continue
		}

		vals := flattenValues(a.AnswerValue)
		switch bucket {
		case BucketTypes:
			prefs.Types = model.AppendUnique(prefs.Types, vals...)
		case BucketAmenities:
			prefs.Amenities = model.AppendUnique(prefs.Amenities, vals...)
		case BucketDietary:
			prefs.Dietary = model.AppendUnique(prefs.Dietary, vals...)
		case BucketLocation:
			prefs.Location = model.AppendUnique(prefs.Location, vals...)
		default:
			prefs.Keywords = model.AppendUnique(prefs.Keywords, vals...)
		}
	}

	return prefs
}

// parseBudget accepts {min,max} / {min_value,max_value} maps, "lo-hi"
// strings, and single amounts (treated as an upper limit).
func parseBudget(v any) (*model.Budget, bool) {
	switch t := v.(type) {
	case map[string]any:
		return budgetFromMap(t)
	case map[string]float64:
		m := make(map[string]any, len(t))
		for k, f := range t {
			m[k] = f
		}
		return budgetFromMap(m)
	case string:
		lo, hi, ok := model.ParseAmountRange(t)
		if !ok {
			return nil, false
		}
		if lo == hi {
			return model.NewBudget(0, hi), true
		}
		return model.NewBudget(lo, hi), true
	default:
		n, ok := toNumber(v)
		if !ok {
			return nil, false
		}
		return model.NewBudget(0, n), true
	}
}

func budgetFromMap(m map[string]any) (*model.Budget, bool) {
	lo, okLo := lookupNumber(m, "min_value", "min")
	hi, okHi := lookupNumber(m, "max_value", "max")
	if !okLo || !okHi {
		return nil, false
	}
	return model.NewBudget(lo, hi), true
}

func lookupNumber(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return toNumber(v)
		}
	}
	return 0, false
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		return model.ParseAmount(n)
	default:
		return 0, false
	}
}

// flattenValues turns a scalar or list answer into string tokens. Scalar
// strings are split on commas and semicolons. Range objects and booleans
// are skipped.
func flattenValues(v any) []string {
	switch t := v.(type) {
	case string:
		return splitList(t)
	case []string:
		var out []string
		for _, s := range t {
			out = append(out, splitList(s)...)
		}
		return out
	case []any:
		var out []string
		for _, item := range t {
			out = append(out, flattenValues(item)...)
		}
		return out
	case float64:
		return []string{strconv.FormatFloat(t, 'f', -1, 64)}
	case int, int64, json.Number:
		return []string{fmt.Sprint(t)}
	default:
		return nil
	}
}

func splitList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';'
	})
}
