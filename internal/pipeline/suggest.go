package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/trip-planner/internal/cache"
	"github.com/sells-group/trip-planner/internal/model"
	"github.com/sells-group/trip-planner/internal/source"
)

// SuggestRequest asks for ranked candidates for one room and category.
type SuggestRequest struct {
	RoomID      string               `json:"room_id"`
	Category    model.Category       `json:"category"`
	Destination string               `json:"destination"`
	Answers     []model.AnswerRecord `json:"answers"`
	Limit       int                  `json:"limit,omitempty"`
}

// SuggestResult is the ranked candidate list and the preferences behind it.
type SuggestResult struct {
	Category    model.Category      `json:"category"`
	Preferences model.PreferenceSet `json:"preferences"`
	Candidates  []model.Candidate   `json:"candidates"`
	Fingerprint string              `json:"fingerprint"`
}

// Suggest extracts preferences, fetches candidates through the cache, ranks
// them and, when a store is configured and a room is given, adds the ranked
// list to the room's candidates for the category.
func (p *Pipeline) Suggest(ctx context.Context, req SuggestRequest) (*SuggestResult, error) {
	if !req.Category.Valid() {
		return nil, eris.Wrapf(model.ErrInvalidInput, "pipeline: unknown category %q", req.Category)
	}
	log := zap.L().With(
		zap.String("room", req.RoomID),
		zap.String("category", string(req.Category)),
	)

	prefs := p.extractor.Extract(req.Category, req.Answers)
	fp := cache.Fingerprint(req.Category, req.Destination, prefs)

	raw, err := p.cache.GetOrGenerate(ctx, fp, p.cacheTTL, func(ctx context.Context) ([]model.Candidate, error) {
		return p.source.Fetch(ctx, source.Request{
			Category:    req.Category,
			Destination: req.Destination,
			Prefs:       prefs,
			Limit:       req.Limit,
		})
	})
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: generate candidates")
	}

	ranked := p.scorer.Rank(raw, prefs)
	if req.Limit > 0 && len(ranked) > req.Limit {
		ranked = ranked[:req.Limit]
	}

	if p.store != nil && req.RoomID != "" {
		if err := p.store.SaveCandidates(ctx, req.RoomID, req.Category, ranked); err != nil {
			return nil, eris.Wrap(err, "pipeline: save candidates")
		}
	}

	log.Info("pipeline: suggestions ready",
		zap.Int("fetched", len(raw)),
		zap.Int("ranked", len(ranked)),
	)
	return &SuggestResult{
		Category:    req.Category,
		Preferences: prefs,
		Candidates:  ranked,
		Fingerprint: fp,
	}, nil
}

// SuggestAll runs Suggest for several requests concurrently. Results keep
// the request order; the first failure cancels the rest.
func (p *Pipeline) SuggestAll(ctx context.Context, reqs []SuggestRequest) ([]*SuggestResult, error) {
	results := make([]*SuggestResult, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, req := range reqs {
		g.Go(func() error {
			res, err := p.Suggest(gctx, req)
			if err != nil {
				return eris.Wrapf(err, "pipeline: suggest %s", req.Category)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
