// Package ranking scores and filters candidates against a member's preferences.
package ranking

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/trip-planner/internal/model"
)

// Weights are the per-match score contributions. Rating is scaled to stay
// below two or three preference matches.
type Weights struct {
	Location float64
	Type     float64
	Amenity  float64
	Rating   float64
}

// Config tunes the scoring filter.
type Config struct {
	// BudgetSlack multiplies the budget ceiling before excluding a candidate.
	BudgetSlack float64
	Weights     Weights
}

// DefaultConfig returns the product defaults: 50% budget slack and
// 50/30/20/10 weights.
func DefaultConfig() Config {
	return Config{
		BudgetSlack: 1.5,
		Weights: Weights{
			Location: 50,
			Type:     30,
			Amenity:  20,
			Rating:   10,
		},
	}
}

// Scored is a ranked candidate with its relevance score.
type Scored struct {
	Candidate model.Candidate
	Score     float64
	Matches   int
}

// Scorer ranks candidates for a preference set.
type Scorer struct {
	cfg Config
}

// NewScorer returns a Scorer; zero config fields fall back to defaults.
func NewScorer(cfg Config) *Scorer {
	def := DefaultConfig()
	if cfg.BudgetSlack <= 0 {
		cfg.BudgetSlack = def.BudgetSlack
	}
	if cfg.Weights == (Weights{}) {
		cfg.Weights = def.Weights
	}
	return &Scorer{cfg: cfg}
}

// Rank applies budget exclusion, deduplication and relevance ordering.
// Equal scores keep provider order. An empty input returns an empty slice.
func (s *Scorer) Rank(candidates []model.Candidate, prefs model.PreferenceSet) []model.Candidate {
	scored := s.RankScored(candidates, prefs)
	out := make([]model.Candidate, len(scored))
	for i, sc := range scored {
		out[i] = sc.Candidate
	}
	return out
}

// RankScored is Rank but keeps the score of each survivor.
func (s *Scorer) RankScored(candidates []model.Candidate, prefs model.PreferenceSet) []Scored {
	prefs = prefs.Normalized()

	kept := make([]model.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if overBudget(c, prefs.Budget, s.cfg.BudgetSlack) {
			zap.L().Debug("excluding over-budget candidate",
				zap.String("name", c.Name),
				zap.String("price", c.PriceEstimate),
				zap.Float64("budget_max", prefs.Budget.Max),
			)
			continue
		}
		kept = append(kept, c)
	}

	// Dedup runs before sorting so the survivor is always the first in provider order.
	kept = Merge(kept)

	out := make([]Scored, len(kept))
	for i, c := range kept {
		score, matches := s.score(c, prefs)
		out[i] = Scored{Candidate: c, Score: score, Matches: matches}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// Score returns the relevance score of one candidate.
func (s *Scorer) Score(c model.Candidate, prefs model.PreferenceSet) float64 {
	score, _ := s.score(c, prefs.Normalized())
	return score
}

func (s *Scorer) score(c model.Candidate, prefs model.PreferenceSet) (float64, int) {
	name := model.NormalizeToken(c.Name)
	location := model.NormalizeToken(c.Location)
	detail := model.NormalizeToken(c.Description + " " + strings.Join(c.Tags, " "))

	w := s.cfg.Weights
	total := 0.0
	matches := 0

	for _, tok := range prefs.Location {
		if strings.Contains(name, tok) || strings.Contains(location, tok) {
			total += w.Location
			matches++
		}
	}
	for _, tok := range prefs.Types {
		if strings.Contains(name, tok) {
			total += w.Type
			matches++
		}
	}
	for _, tok := range append(append([]string(nil), prefs.Amenities...), prefs.Dietary...) {
		if strings.Contains(detail, tok) {
			total += w.Amenity
			matches++
		}
	}

	total += c.RatingValue() * w.Rating
	return total, matches
}

// Rank ranks with the default configuration.
func Rank(candidates []model.Candidate, prefs model.PreferenceSet) []model.Candidate {
	return NewScorer(DefaultConfig()).Rank(candidates, prefs)
}
