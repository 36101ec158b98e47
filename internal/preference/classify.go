// Package preference turns stored question/answer records into structured
// preference sets.
package preference

import "strings"

// Classifier maps a question label onto the preference field it feeds.
type Classifier interface {
	Classify(questionText string) Bucket
}

// Bucket is the destination of a classified answer.
type Bucket string

const (
	BucketBudget    Bucket = "budget"
	BucketTypes     Bucket = "types"
	BucketAmenities Bucket = "amenities"
	BucketDietary   Bucket = "dietary"
	BucketLocation  Bucket = "location"
	BucketKeywords  Bucket = "keywords"
)

type keywordRule struct {
	bucket   Bucket
	keywords []string
}

// defaultRules are checked in order; the first rule with a matching keyword wins.
var defaultRules = []keywordRule{
	{BucketBudget, []string{"budget", "price", "cost", "spend", "afford"}},
	{BucketTypes, []string{"type", "category", "style", "kind of", "cuisine", "mode of"}},
	{BucketAmenities, []string{"amenit", "feature", "facilit", "must-have", "must have"}},
	{BucketDietary, []string{"diet", "allerg", "vegetarian", "vegan"}},
	{BucketLocation, []string{"location", "area", "neighborhood", "neighbourhood", "where", "region", "district"}},
}

// KeywordClassifier classifies by case-insensitive substring match on the
// question text. Anything unmatched lands in BucketKeywords.
type KeywordClassifier struct {
	rules []keywordRule
}

// NewKeywordClassifier returns a classifier using the built-in keyword table.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{rules: defaultRules}
}

// Classify implements Classifier.
func (k *KeywordClassifier) Classify(questionText string) Bucket {
	text := strings.ToLower(questionText)
	for _, r := range k.rules {
		for _, kw := range r.keywords {
			if strings.Contains(text, kw) {
				return r.bucket
			}
		}
	}
	return BucketKeywords
}
