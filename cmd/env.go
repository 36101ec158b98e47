package main

import (
	"context"
	"time"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/trip-planner/internal/config"
	"github.com/sells-group/trip-planner/internal/consolidate"
	"github.com/sells-group/trip-planner/internal/model"
	"github.com/sells-group/trip-planner/internal/pipeline"
	"github.com/sells-group/trip-planner/internal/ranking"
	"github.com/sells-group/trip-planner/internal/resilience"
	"github.com/sells-group/trip-planner/internal/source"
	"github.com/sells-group/trip-planner/internal/store"
	anthropicpkg "github.com/sells-group/trip-planner/pkg/anthropic"
	"github.com/sells-group/trip-planner/pkg/google"
)

// appEnv holds the store and pipeline shared by the room commands.
type appEnv struct {
	Store    store.Store
	Pipeline *pipeline.Pipeline
}

// Close releases resources held by the environment.
func (e *appEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initStore opens the configured store backend.
func initStore(ctx context.Context, c *config.Config) (store.Store, error) {
	switch c.Store.Driver {
	case "sqlite":
		return store.NewSQLite(c.Store.DatabaseURL)
	case "postgres":
		return store.NewPostgres(ctx, c.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: c.Store.MaxConns,
			MinConns: c.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", c.Store.Driver)
	}
}

// initSource builds the configured candidate provider, each wrapped with
// rate limiting, retry and a circuit breaker.
func initSource(c *config.Config) (source.Source, error) {
	guard := source.GuardConfig{
		RatePerSec: c.Source.RatePerSec,
		Burst:      c.Source.Burst,
		Retry: resilience.Policy{
			Attempts: c.Source.RetryAttempts,
		},
		BreakerFailures: c.Source.BreakerFailures,
		BreakerTimeout:  time.Duration(c.Source.BreakerTimeoutSecs) * time.Second,
	}

	var places, llm source.Source
	if c.Google.Key != "" {
		client := google.NewClient(c.Google.Key, google.WithBaseURL(c.Google.BaseURL))
		places = source.Guard(source.NewPlacesSource(client), guard)
		zap.L().Info("google places source enabled")
	}
	if c.Anthropic.Key != "" {
		// Guarded owns retries; the SDK's own are disabled.
		client := anthropicpkg.NewClient(c.Anthropic.Key, option.WithMaxRetries(0))
		llm = source.Guard(source.NewLLMSource(client,
			source.WithModel(c.Anthropic.Model),
			source.WithMaxTokens(c.Anthropic.MaxTokens),
		), guard)
		zap.L().Info("llm source enabled", zap.String("model", c.Anthropic.Model))
	}

	switch c.Source.Provider {
	case "places":
		if places == nil {
			return nil, eris.New("places provider requires TRIP_GOOGLE_KEY")
		}
		return places, nil
	case "llm":
		if llm == nil {
			return nil, eris.New("llm provider requires TRIP_ANTHROPIC_KEY")
		}
		return llm, nil
	case "fallback":
		var chain []source.Source
		for _, s := range []source.Source{places, llm} {
			if s != nil {
				chain = append(chain, s)
			}
		}
		if len(chain) == 0 {
			return nil, eris.New("fallback provider requires TRIP_GOOGLE_KEY or TRIP_ANTHROPIC_KEY")
		}
		return source.NewFallback(chain...), nil
	default:
		return nil, eris.Errorf("unsupported source provider: %s", c.Source.Provider)
	}
}

// pipelineOptions maps tuning config onto pipeline options.
func pipelineOptions(c *config.Config) []pipeline.Option {
	multipliers := make(map[model.Category]float64, len(c.Consolidation.Multipliers))
	for k, v := range c.Consolidation.Multipliers {
		cat, err := model.ParseCategory(k)
		if err != nil {
			zap.L().Warn("ignoring multiplier for unknown category", zap.String("category", k))
			continue
		}
		multipliers[cat] = v
	}

	return []pipeline.Option{
		pipeline.WithCacheTTL(time.Duration(c.Cache.TTLSecs) * time.Second),
		pipeline.WithScorer(ranking.NewScorer(ranking.Config{
			BudgetSlack: c.Ranking.BudgetSlack,
			Weights: ranking.Weights{
				Location: c.Ranking.LocationWeight,
				Type:     c.Ranking.TypeWeight,
				Amenity:  c.Ranking.AmenityWeight,
				Rating:   c.Ranking.RatingWeight,
			},
		})),
		pipeline.WithResolver(consolidate.NewResolver(consolidate.Config{
			MinMembers:      c.Consolidation.MinMembers,
			Floor:           c.Consolidation.Floor,
			CeilingFraction: c.Consolidation.CeilingFraction,
			Multipliers:     multipliers,
		})),
	}
}

// initEnv validates config for mode, opens and migrates the store and builds
// the pipeline. The suggest and serve modes also build a candidate source.
// Callers should defer env.Close().
func initEnv(ctx context.Context, mode string) (*appEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	var src source.Source
	if mode != "store" {
		s, err := initSource(cfg)
		if err != nil {
			return nil, err
		}
		src = s
	}

	st, err := initStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	return &appEnv{
		Store:    st,
		Pipeline: pipeline.New(st, src, pipelineOptions(cfg)...),
	}, nil
}
