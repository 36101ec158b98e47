package source

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/trip-planner/internal/model"
)

// Fallback tries sources in order. The first non-empty result wins; an empty
// success is returned only when no later source produces candidates. When
// every source fails, the last error is returned.
type Fallback struct {
	sources []Source
}

// NewFallback creates a Fallback over sources.
func NewFallback(sources ...Source) *Fallback {
	return &Fallback{sources: sources}
}

// Name implements Source.
func (f *Fallback) Name() string { return "fallback" }

// Fetch implements Source.
func (f *Fallback) Fetch(ctx context.Context, req Request) ([]model.Candidate, error) {
	var (
		lastErr   error
		succeeded bool
	)
	for _, s := range f.sources {
		out, err := s.Fetch(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, eris.Wrap(err, "source: fallback canceled")
			}
			zap.L().Warn("candidate source failed, trying next",
				zap.String("source", s.Name()),
				zap.String("category", string(req.Category)),
				zap.Error(err),
			)
			lastErr = err
			continue
		}
		if len(out) > 0 {
			return out, nil
		}
		succeeded = true
	}

	if succeeded || lastErr == nil {
		return []model.Candidate{}, nil
	}
	return nil, eris.Wrap(lastErr, "source: all sources failed")
}
