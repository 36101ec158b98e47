// Package store persists room candidates, votes, member selections and
// consolidated plans.
package store

import (
	"context"

	"github.com/sells-group/trip-planner/internal/model"
)

// Store defines the persistence interface for trip rooms. Lookups that match
// nothing return an error wrapping model.ErrNotFound.
type Store interface {
	// Candidates
	SaveCandidates(ctx context.Context, roomID string, category model.Category, candidates []model.Candidate) error
	ListCandidates(ctx context.Context, roomID string, category model.Category) ([]model.Candidate, error)
	GetCandidate(ctx context.Context, roomID string, category model.Category, candidateID string) (*model.Candidate, error)

	// Votes
	UpsertVote(ctx context.Context, roomID string, category model.Category, vote model.Vote) error
	ListVotes(ctx context.Context, roomID string, category model.Category) ([]model.Vote, error)

	// Selections
	SaveSelection(ctx context.Context, roomID string, sel model.MemberSelection) error
	ListSelections(ctx context.Context, roomID string, category model.Category) ([]model.MemberSelection, error)

	// Plans
	SavePlan(ctx context.Context, roomID string, plan *model.ConsolidatedPlan) error
	GetPlan(ctx context.Context, roomID string, category model.Category) (*model.ConsolidatedPlan, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// uniqueByID drops later candidates that repeat an id.
func uniqueByID(candidates []model.Candidate) []model.Candidate {
	seen := make(map[string]struct{}, len(candidates))
	out := make([]model.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := seen[c.ID]; ok {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	return out
}
