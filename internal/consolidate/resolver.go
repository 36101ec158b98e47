// Package consolidate merges every member's finalized selections for a
// category into one bounded, attributed group plan.
package consolidate

import (
	"fmt"
	"slices"
	"sort"

	"go.uber.org/zap"

	"github.com/sells-group/trip-planner/internal/consensus"
	"github.com/sells-group/trip-planner/internal/model"
	"github.com/sells-group/trip-planner/internal/ranking"
)

// Config tunes plan sizing and participation gating.
type Config struct {
	// MinMembers is the number of distinct members required to consolidate.
	MinMembers int
	// Floor is the smallest plan size when enough candidates exist.
	Floor int
	// CeilingFraction caps the plan at this share of distinct candidates.
	CeilingFraction float64
	// Multipliers overrides the per-category profile multiplier.
	Multipliers map[model.Category]float64
}

// DefaultConfig returns the product defaults.
func DefaultConfig() Config {
	return Config{MinMembers: 2, Floor: 4, CeilingFraction: 0.8}
}

// Resolver produces consolidated plans. It holds no state between calls.
type Resolver struct {
	cfg Config
}

// NewResolver creates a Resolver; zero config fields fall back to defaults.
func NewResolver(cfg Config) *Resolver {
	def := DefaultConfig()
	if cfg.MinMembers <= 0 {
		cfg.MinMembers = def.MinMembers
	}
	if cfg.Floor <= 0 {
		cfg.Floor = def.Floor
	}
	if cfg.CeilingFraction <= 0 {
		cfg.CeilingFraction = def.CeilingFraction
	}
	return &Resolver{cfg: cfg}
}

// MinMembers is the number of distinct members needed before consolidating.
func (r *Resolver) MinMembers() int { return r.cfg.MinMembers }

func (r *Resolver) multiplier(c model.Category) float64 {
	if m, ok := r.cfg.Multipliers[c]; ok && m > 0 {
		return m
	}
	return model.Profile(c).Multiplier
}

// ranked is a union candidate with its ranking inputs.
type ranked struct {
	candidate  model.Candidate
	matches    []model.PreferenceMatch
	selectedBy []string
	support    int
	position   int
}

// Consolidate builds the plan for category from member selections.
func (r *Resolver) Consolidate(category model.Category, selections []model.MemberSelection) (*model.ConsolidatedPlan, error) {
	return r.ConsolidateWithVotes(category, selections, nil)
}

// ConsolidateWithVotes is Consolidate with a vote board whose up votes add
// to selection support under the consensus_priority strategy. board may be nil.
//
// The selection slice is snapshotted on entry. A member with several
// selections is represented by the last one. Fewer than MinMembers distinct
// members yields a *model.ParticipationError.
func (r *Resolver) ConsolidateWithVotes(category model.Category, selections []model.MemberSelection, board *consensus.Board) (*model.ConsolidatedPlan, error) {
	snapshot := slices.Clone(selections)
	log := zap.L().With(zap.String("category", string(category)))

	latest := make(map[string]model.MemberSelection)
	var order []string
	for _, s := range snapshot {
		if s.UserID == "" || (s.Category != "" && s.Category != category) {
			continue
		}
		if _, ok := latest[s.UserID]; !ok {
			order = append(order, s.UserID)
		}
		latest[s.UserID] = s
	}
	if len(order) < r.cfg.MinMembers {
		return nil, &model.ParticipationError{Category: category, Completed: len(order), Required: r.cfg.MinMembers}
	}

	members := make([]member, len(order))
	lists := make([][]model.Candidate, len(order))
	selectedBy := make(map[string][]string)
	for i, uid := range order {
		s := latest[uid]
		members[i] = member{userID: uid, prefs: s.PreferencesUsed.Normalized()}
		lists[i] = s.SelectedCandidates
		seen := make(map[string]struct{})
		for _, c := range s.SelectedCandidates {
			k := c.DedupKey()
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			selectedBy[k] = append(selectedBy[k], uid)
		}
	}

	union := ranking.Merge(lists...)
	plan := &model.ConsolidatedPlan{
		Category:            category,
		ChosenCandidates:    []model.Candidate{},
		Rationale:           []model.Rationale{},
		ConflictsIdentified: []string{},
		MemberCount:         len(members),
	}
	if len(union) == 0 {
		plan.Summary = "No candidate data was available from any member; nothing to consolidate."
		log.Debug("consolidation skipped, no candidates", zap.Int("members", len(members)))
		return plan, nil
	}

	items := make([]ranked, len(union))
	matchesByKey := make(map[string][]model.PreferenceMatch, len(union))
	for i, c := range union {
		k := c.DedupKey()
		m := candidateMatches(c, members)
		matchesByKey[k] = m
		support := len(selectedBy[k])
		if board != nil {
			if res, ok := board.Get(c.ID); ok {
				support += res.UpCount
			}
		}
		items[i] = ranked{candidate: c, matches: m, selectedBy: selectedBy[k], support: support, position: i}
	}

	plan.ConflictsIdentified = detectConflicts(members, matchesByKey)
	plan.ResolutionStrategy = chooseStrategy(plan.ConflictsIdentified, items)
	sortItems(items, plan.ResolutionStrategy)

	plan.OptimalCount = OptimalCount(len(members), r.multiplier(category), len(union), r.cfg.Floor, r.cfg.CeilingFraction)

	var chosen []ranked
	switch plan.ResolutionStrategy {
	case model.StrategyBalancedMix:
		chosen = balancedMix(items, members, plan.OptimalCount)
	case model.StrategyOverlap:
		chosen = overlapFirst(items, plan.OptimalCount)
	default:
		chosen = items[:plan.OptimalCount]
	}
	// Reserved balanced_mix picks may outnumber the computed count.
	if len(chosen) > plan.OptimalCount {
		log.Debug("plan grew past optimal count to keep every member represented",
			zap.Int("optimal", plan.OptimalCount),
			zap.Int("chosen", len(chosen)),
		)
		plan.OptimalCount = len(chosen)
	}

	for _, it := range chosen {
		plan.ChosenCandidates = append(plan.ChosenCandidates, it.candidate)
		plan.Rationale = append(plan.Rationale, explain(it.candidate, it.matches, it.selectedBy))
	}
	plan.Summary = fmt.Sprintf("Chose %d of %d candidates for %d members using the %s strategy.",
		len(chosen), len(union), len(members), plan.ResolutionStrategy)

	log.Debug("consolidated plan",
		zap.Int("members", len(members)),
		zap.Int("candidates", len(union)),
		zap.Int("chosen", len(chosen)),
		zap.String("strategy", string(plan.ResolutionStrategy)),
		zap.Int("conflicts", len(plan.ConflictsIdentified)),
	)
	return plan, nil
}

func chooseStrategy(conflicts []string, items []ranked) model.ResolutionStrategy {
	if len(conflicts) > 0 {
		return model.StrategyBalancedMix
	}
	for _, it := range items {
		if len(satisfiedUsers(it.matches)) >= 2 {
			return model.StrategyOverlap
		}
	}
	return model.StrategyConsensusPriority
}

// sortItems orders by match count; rating breaks exact ties. Under
// consensus_priority, member support is compared before rating.
func sortItems(items []ranked, strategy model.ResolutionStrategy) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if len(a.matches) != len(b.matches) {
			return len(a.matches) > len(b.matches)
		}
		if strategy == model.StrategyConsensusPriority && a.support != b.support {
			return a.support > b.support
		}
		return a.candidate.RatingValue() > b.candidate.RatingValue()
	})
}

// overlapFirst moves the candidate satisfying the most members to the front,
// then keeps ranking order.
func overlapFirst(items []ranked, count int) []ranked {
	best := 0
	for i, it := range items {
		if len(satisfiedUsers(it.matches)) > len(satisfiedUsers(items[best].matches)) {
			best = i
		}
	}
	out := make([]ranked, 0, len(items))
	out = append(out, items[best])
	out = append(out, items[:best]...)
	out = append(out, items[best+1:]...)
	return out[:count]
}

// balancedMix reserves, for each member, the best-ranked candidate matching
// that member's top-stated preference, then fills by rank. Reserved picks
// are kept even when they outnumber count; the caller widens the plan's
// optimal count to match.
func balancedMix(items []ranked, members []member, count int) []ranked {
	reserved := make(map[int]bool)
	for _, m := range members {
		field, value, ok := topPreference(m.prefs)
		if !ok {
			continue
		}
		for i, it := range items {
			if matchesTop(it.matches, m.userID, field, value) {
				reserved[i] = true
				break
			}
		}
	}

	remaining := count - len(reserved)
	var out []ranked
	for i, it := range items {
		switch {
		case reserved[i]:
			out = append(out, it)
		case remaining > 0:
			out = append(out, it)
			remaining--
		}
	}
	return out
}

func matchesTop(matches []model.PreferenceMatch, userID string, field model.PreferenceField, value string) bool {
	for _, m := range matches {
		if m.UserID != userID || m.Field != field {
			continue
		}
		if field == model.FieldBudget {
			return true
		}
		if slices.Contains(m.Values, value) {
			return true
		}
	}
	return false
}
