// Package consensus tallies member votes into per-candidate counts and a
// group-size-aware shortlist.
package consensus

import (
	"sort"

	"github.com/sells-group/trip-planner/internal/model"
)

type voteKey struct {
	candidateID string
	userID      string
}

// Board holds tallied results for one room and category.
type Board struct {
	order   []string
	results map[string]*model.ConsensusResult
}

// Tally counts only the most recent vote per (candidate, user). Votes with
// equal timestamps resolve to the one later in the slice. candidateIDs seeds
// the insertion order so candidates without votes still appear with zero counts.
func Tally(votes []model.Vote, candidateIDs ...string) *Board {
	b := &Board{
		results: make(map[string]*model.ConsensusResult),
	}
	for _, id := range candidateIDs {
		b.ensure(id)
	}

	latest := make(map[voteKey]model.Vote, len(votes))
	var keys []voteKey
	for _, v := range votes {
		if v.CandidateID == "" || v.UserID == "" {
			continue
		}
		b.ensure(v.CandidateID)
		k := voteKey{candidateID: v.CandidateID, userID: v.UserID}
		prev, seen := latest[k]
		if !seen {
			keys = append(keys, k)
		}
		if !seen || !v.CastAt.Before(prev.CastAt) {
			latest[k] = v
		}
	}

	for _, k := range keys {
		v := latest[k]
		r := b.results[k.candidateID]
		switch v.Type {
		case model.VoteUp:
			r.UpCount++
		case model.VoteDown:
			r.DownCount++
		default:
			r.NeutralCount++
		}
		r.Score = r.UpCount - r.DownCount
	}
	return b
}

func (b *Board) ensure(id string) {
	if _, ok := b.results[id]; ok {
		return
	}
	b.order = append(b.order, id)
	b.results[id] = &model.ConsensusResult{CandidateID: id}
}

// Get returns the result for one candidate.
func (b *Board) Get(candidateID string) (model.ConsensusResult, bool) {
	r, ok := b.results[candidateID]
	if !ok {
		return model.ConsensusResult{}, false
	}
	return *r, true
}

// Results returns a copy of every result keyed by candidate ID.
func (b *Board) Results() map[string]model.ConsensusResult {
	out := make(map[string]model.ConsensusResult, len(b.results))
	for id, r := range b.results {
		out[id] = *r
	}
	return out
}

// Ranked orders results by score, then up votes, then insertion order.
func (b *Board) Ranked() []model.ConsensusResult {
	out := make([]model.ConsensusResult, len(b.order))
	for i, id := range b.order {
		out[i] = *b.results[id]
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].UpCount > out[j].UpCount
	})
	return out
}

// TopK returns up to K(groupSize) liked candidates in rank order.
// Candidates nobody voted up are never included.
func (b *Board) TopK(groupSize int) []model.ConsensusResult {
	k := K(groupSize)
	out := make([]model.ConsensusResult, 0, k)
	for _, r := range b.Ranked() {
		if len(out) == k {
			break
		}
		if r.UpCount > 0 {
			out = append(out, r)
		}
	}
	return out
}

// K is the shortlist size: 2 for groups of up to five, 3 for larger groups.
func K(groupSize int) int {
	if groupSize <= 5 {
		return 2
	}
	return 3
}
