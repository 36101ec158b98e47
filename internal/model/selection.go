package model

import "time"

// AnswerRecord is one stored answer to a preference question.
// AnswerValue is a scalar, a []any list, or a map with min/max keys.
type AnswerRecord struct {
	QuestionID   string `json:"question_id,omitempty"`
	QuestionText string `json:"question_text"`
	Section      string `json:"section,omitempty"`
	AnswerValue  any    `json:"answer_value"`
}

// MemberSelection is the set of candidates a member finalized for a category.
type MemberSelection struct {
	UserID             string        `json:"user_id"`
	Category           Category      `json:"category"`
	SelectedCandidates []Candidate   `json:"selected_candidates"`
	PreferencesUsed    PreferenceSet `json:"preferences_used"`
	FinalizedAt        time.Time     `json:"finalized_at,omitempty"`
}

// ResolutionStrategy names how member disagreements were settled.
type ResolutionStrategy string

const (
	StrategyOverlap           ResolutionStrategy = "overlap"
	StrategyBalancedMix       ResolutionStrategy = "balanced_mix"
	StrategyConsensusPriority ResolutionStrategy = "consensus_priority"
)

// PreferenceMatch attributes a satisfied preference field to a member.
type PreferenceMatch struct {
	UserID string          `json:"user_id"`
	Field  PreferenceField `json:"field"`
	Values []string        `json:"values,omitempty"`
}

// Rationale explains why a candidate made the consolidated plan.
type Rationale struct {
	CandidateID string            `json:"candidate_id"`
	Text        string            `json:"text"`
	Matches     []PreferenceMatch `json:"matches,omitempty"`
	SelectedBy  []string          `json:"selected_by,omitempty"`
}

// ConsolidatedPlan is the group's merged recommendation for one category.
type ConsolidatedPlan struct {
	Category            Category           `json:"category"`
	ChosenCandidates    []Candidate        `json:"chosen_candidates"`
	Rationale           []Rationale        `json:"rationale"`
	ConflictsIdentified []string           `json:"conflicts_identified"`
	ResolutionStrategy  ResolutionStrategy `json:"resolution_strategy,omitempty"`
	OptimalCount        int                `json:"optimal_count"`
	MemberCount         int                `json:"member_count"`
	Summary             string             `json:"summary,omitempty"`
}
