package pipeline

import (
	"context"
	"errors"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/trip-planner/internal/model"
)

// FinalizeRequest is a member finishing a category with chosen candidates.
type FinalizeRequest struct {
	RoomID       string               `json:"room_id"`
	UserID       string               `json:"user_id"`
	Category     model.Category       `json:"category"`
	CandidateIDs []string             `json:"candidate_ids"`
	Answers      []model.AnswerRecord `json:"answers"`
}

// ConsolidationOutcome reports whether a plan was produced. When too few
// members have finished, Waiting is set and Plan is nil.
type ConsolidationOutcome struct {
	AIAnalyzed bool                    `json:"ai_analyzed"`
	Waiting    bool                    `json:"waiting"`
	Completed  int                     `json:"completed"`
	Required   int                     `json:"required"`
	Plan       *model.ConsolidatedPlan `json:"plan,omitempty"`
}

// FinalizeSelection stores the member's selection for the category,
// replacing any earlier one. Candidate ids must belong to the room.
func (p *Pipeline) FinalizeSelection(ctx context.Context, req FinalizeRequest) (*model.MemberSelection, error) {
	if err := p.requireStore(); err != nil {
		return nil, err
	}
	if !req.Category.Valid() {
		return nil, eris.Wrapf(model.ErrInvalidInput, "pipeline: unknown category %q", req.Category)
	}
	if strings.TrimSpace(req.UserID) == "" {
		return nil, eris.Wrap(model.ErrInvalidInput, "pipeline: selection needs user_id")
	}

	selected := make([]model.Candidate, 0, len(req.CandidateIDs))
	seen := make(map[string]struct{}, len(req.CandidateIDs))
	for _, id := range req.CandidateIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		c, err := p.store.GetCandidate(ctx, req.RoomID, req.Category, id)
		if err != nil {
			return nil, eris.Wrap(err, "pipeline: selected candidate")
		}
		selected = append(selected, *c)
	}

	sel := model.MemberSelection{
		UserID:             req.UserID,
		Category:           req.Category,
		SelectedCandidates: selected,
		PreferencesUsed:    p.extractor.Extract(req.Category, req.Answers),
		FinalizedAt:        p.now().UTC(),
	}
	if err := p.store.SaveSelection(ctx, req.RoomID, sel); err != nil {
		return nil, eris.Wrap(err, "pipeline: save selection")
	}

	zap.L().Info("pipeline: selection finalized",
		zap.String("room", req.RoomID),
		zap.String("category", string(req.Category)),
		zap.String("user", req.UserID),
		zap.Int("candidates", len(selected)),
	)
	return &sel, nil
}

// Consolidate reads the member selections once and, when enough distinct
// members have finished, builds and stores the group plan. Up votes in the
// room feed the consensus_priority tie-break.
func (p *Pipeline) Consolidate(ctx context.Context, roomID string, category model.Category) (*ConsolidationOutcome, error) {
	if err := p.requireStore(); err != nil {
		return nil, err
	}
	if !category.Valid() {
		return nil, eris.Wrapf(model.ErrInvalidInput, "pipeline: unknown category %q", category)
	}
	log := zap.L().With(zap.String("room", roomID), zap.String("category", string(category)))

	selections, err := p.store.ListSelections(ctx, roomID, category)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: load selections")
	}

	required := p.resolver.MinMembers()
	completed := distinctMembers(selections)
	if completed < required {
		log.Info("pipeline: waiting for members", zap.Int("completed", completed), zap.Int("required", required))
		return &ConsolidationOutcome{Waiting: true, Completed: completed, Required: required}, nil
	}

	board, _, err := p.board(ctx, roomID, category)
	if err != nil {
		return nil, err
	}

	plan, err := p.resolver.ConsolidateWithVotes(category, selections, board)
	if err != nil {
		var pe *model.ParticipationError
		if errors.As(err, &pe) {
			return &ConsolidationOutcome{Waiting: true, Completed: pe.Completed, Required: pe.Required}, nil
		}
		return nil, eris.Wrap(err, "pipeline: consolidate")
	}

	if err := p.store.SavePlan(ctx, roomID, plan); err != nil {
		return nil, eris.Wrap(err, "pipeline: save plan")
	}

	log.Info("pipeline: plan consolidated",
		zap.Int("members", plan.MemberCount),
		zap.Int("chosen", len(plan.ChosenCandidates)),
		zap.String("strategy", string(plan.ResolutionStrategy)),
		zap.Int("conflicts", len(plan.ConflictsIdentified)),
	)
	return &ConsolidationOutcome{
		AIAnalyzed: true,
		Completed:  completed,
		Required:   required,
		Plan:       plan,
	}, nil
}

// Plan returns the last stored plan for category.
func (p *Pipeline) Plan(ctx context.Context, roomID string, category model.Category) (*model.ConsolidatedPlan, error) {
	if err := p.requireStore(); err != nil {
		return nil, err
	}
	plan, err := p.store.GetPlan(ctx, roomID, category)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: load plan")
	}
	return plan, nil
}

func distinctMembers(selections []model.MemberSelection) int {
	seen := make(map[string]struct{}, len(selections))
	for _, s := range selections {
		if s.UserID != "" {
			seen[s.UserID] = struct{}{}
		}
	}
	return len(seen)
}
