package pipeline

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/trip-planner/internal/consensus"
	"github.com/sells-group/trip-planner/internal/model"
)

// ConsensusView is the vote board for one room and category.
type ConsensusView struct {
	Category  model.Category          `json:"category"`
	GroupSize int                     `json:"group_size"`
	K         int                     `json:"k"`
	Results   []model.ConsensusResult `json:"results"`
	Top       []model.ConsensusResult `json:"top"`
}

// CastVote records vote after checking that the candidate belongs to the
// room and category. A zero CastAt is stamped with the current time.
func (p *Pipeline) CastVote(ctx context.Context, roomID string, category model.Category, vote model.Vote) error {
	if err := p.requireStore(); err != nil {
		return err
	}
	if !category.Valid() {
		return eris.Wrapf(model.ErrInvalidInput, "pipeline: unknown category %q", category)
	}
	if strings.TrimSpace(vote.UserID) == "" || strings.TrimSpace(vote.CandidateID) == "" {
		return eris.Wrap(model.ErrInvalidInput, "pipeline: vote needs user_id and candidate_id")
	}
	switch vote.Type {
	case model.VoteUp, model.VoteDown, model.VoteNeutral:
	default:
		return eris.Wrapf(model.ErrInvalidInput, "pipeline: unknown vote type %q", vote.Type)
	}

	if _, err := p.store.GetCandidate(ctx, roomID, category, vote.CandidateID); err != nil {
		return eris.Wrap(err, "pipeline: vote target")
	}
	if vote.CastAt.IsZero() {
		vote.CastAt = p.now().UTC()
	}
	if err := p.store.UpsertVote(ctx, roomID, category, vote); err != nil {
		return eris.Wrap(err, "pipeline: record vote")
	}

	zap.L().Debug("pipeline: vote recorded",
		zap.String("room", roomID),
		zap.String("category", string(category)),
		zap.String("candidate", vote.CandidateID),
		zap.String("vote", string(vote.Type)),
	)
	return nil
}

// Consensus tallies the room's votes for category. A groupSize of zero or
// less uses the number of distinct voters. A room with no candidates yields
// an empty view.
func (p *Pipeline) Consensus(ctx context.Context, roomID string, category model.Category, groupSize int) (*ConsensusView, error) {
	board, voters, err := p.board(ctx, roomID, category)
	if err != nil {
		return nil, err
	}
	if groupSize <= 0 {
		groupSize = voters
	}

	return &ConsensusView{
		Category:  category,
		GroupSize: groupSize,
		K:         consensus.K(groupSize),
		Results:   board.Ranked(),
		Top:       board.TopK(groupSize),
	}, nil
}

// board loads candidates and votes and tallies them. It returns the number
// of distinct voters alongside the board.
func (p *Pipeline) board(ctx context.Context, roomID string, category model.Category) (*consensus.Board, int, error) {
	if err := p.requireStore(); err != nil {
		return nil, 0, err
	}
	candidates, err := p.store.ListCandidates(ctx, roomID, category)
	if err != nil {
		return nil, 0, eris.Wrap(err, "pipeline: load candidates")
	}
	if len(candidates) == 0 {
		return consensus.Tally(nil), 0, nil
	}
	votes, err := p.store.ListVotes(ctx, roomID, category)
	if err != nil {
		return nil, 0, eris.Wrap(err, "pipeline: load votes")
	}

	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.ID
	}
	voters := make(map[string]struct{})
	for _, v := range votes {
		voters[v.UserID] = struct{}{}
	}
	return consensus.Tally(votes, ids...), len(voters), nil
}
