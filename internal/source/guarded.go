package source

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/trip-planner/internal/model"
	"github.com/sells-group/trip-planner/internal/resilience"
)

// GuardConfig tunes the protections applied by Guard.
type GuardConfig struct {
	// RatePerSec limits calls per second; 0 disables limiting.
	RatePerSec float64
	Burst      int
	Retry      resilience.Policy
	// BreakerFailures is the consecutive failure count that opens the
	// breaker. Default 5.
	BreakerFailures uint32
	// BreakerTimeout is how long the breaker stays open. Default 30s.
	BreakerTimeout time.Duration
}

// Guarded wraps a Source with rate limiting, retry on transient errors and a
// circuit breaker.
type Guarded struct {
	inner   Source
	limiter *rate.Limiter
	policy  resilience.Policy
	breaker *gobreaker.CircuitBreaker[[]model.Candidate]
}

// Guard wraps inner according to cfg.
func Guard(inner Source, cfg GuardConfig) *Guarded {
	limit := rate.Inf
	if cfg.RatePerSec > 0 {
		limit = rate.Limit(cfg.RatePerSec)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	timeout := cfg.BreakerTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	policy := cfg.Retry
	if policy.Name == "" {
		policy.Name = inner.Name()
	}

	g := &Guarded{
		inner:   inner,
		limiter: rate.NewLimiter(limit, burst),
		policy:  policy,
	}
	g.breaker = gobreaker.NewCircuitBreaker[[]model.Candidate](gobreaker.Settings{
		Name:    inner.Name(),
		Timeout: timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			zap.L().Warn("candidate source breaker state change",
				zap.String("source", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return g
}

// Name implements Source.
func (g *Guarded) Name() string { return g.inner.Name() }

// Fetch implements Source.
func (g *Guarded) Fetch(ctx context.Context, req Request) ([]model.Candidate, error) {
	out, err := g.breaker.Execute(func() ([]model.Candidate, error) {
		return resilience.Retry(ctx, g.policy, func(ctx context.Context) ([]model.Candidate, error) {
			if err := g.limiter.Wait(ctx); err != nil {
				return nil, eris.Wrap(err, "source: rate limit wait")
			}
			return g.inner.Fetch(ctx, req)
		})
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, eris.Wrapf(err, "source: %s unavailable", g.inner.Name())
	}
	return out, err
}
