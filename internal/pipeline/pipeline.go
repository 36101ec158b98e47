// Package pipeline wires preference extraction, the candidate cache, the
// candidate source, ranking, voting and consolidation into room operations.
package pipeline

import (
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/trip-planner/internal/cache"
	"github.com/sells-group/trip-planner/internal/consolidate"
	"github.com/sells-group/trip-planner/internal/preference"
	"github.com/sells-group/trip-planner/internal/ranking"
	"github.com/sells-group/trip-planner/internal/source"
	"github.com/sells-group/trip-planner/internal/store"
)

const (
	defaultCacheTTL    = time.Hour
	defaultConcurrency = 4
)

var errNoStore = eris.New("pipeline: no store configured")

// Pipeline orchestrates room operations. Only Suggest works without a store.
type Pipeline struct {
	store       store.Store
	source      source.Source
	cache       cache.Cache
	extractor   *preference.Extractor
	scorer      *ranking.Scorer
	resolver    *consolidate.Resolver
	cacheTTL    time.Duration
	concurrency int
	now         func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithCache replaces the default in-memory candidate cache.
func WithCache(c cache.Cache) Option {
	return func(p *Pipeline) { p.cache = c }
}

// WithCacheTTL sets how long generated candidate lists are reused.
func WithCacheTTL(ttl time.Duration) Option {
	return func(p *Pipeline) { p.cacheTTL = ttl }
}

// WithExtractor replaces the default preference extractor.
func WithExtractor(e *preference.Extractor) Option {
	return func(p *Pipeline) { p.extractor = e }
}

// WithScorer replaces the default scorer.
func WithScorer(s *ranking.Scorer) Option {
	return func(p *Pipeline) { p.scorer = s }
}

// WithResolver replaces the default consolidation resolver.
func WithResolver(r *consolidate.Resolver) Option {
	return func(p *Pipeline) { p.resolver = r }
}

// WithConcurrency bounds SuggestAll fan-out.
func WithConcurrency(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithClock overrides the time source used to stamp votes and selections.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New creates a Pipeline. st may be nil when only Suggest is needed.
func New(st store.Store, src source.Source, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:       st,
		source:      src,
		cache:       cache.NewMemory(),
		extractor:   preference.NewExtractor(),
		scorer:      ranking.NewScorer(ranking.DefaultConfig()),
		resolver:    consolidate.NewResolver(consolidate.DefaultConfig()),
		cacheTTL:    defaultCacheTTL,
		concurrency: defaultConcurrency,
		now:         time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Pipeline) requireStore() error {
	if p.store == nil {
		return errNoStore
	}
	return nil
}
