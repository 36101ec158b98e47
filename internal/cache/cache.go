// Package cache memoizes externally sourced candidate lists.
package cache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/trip-planner/internal/model"
)

// Generator produces a fresh candidate list on a cache miss.
type Generator func(ctx context.Context) ([]model.Candidate, error)

// Cache is the injectable candidate cache used by the pipeline.
type Cache interface {
	GetOrGenerate(ctx context.Context, fingerprint string, ttl time.Duration, gen Generator) ([]model.Candidate, error)
}

// Fingerprint returns a SHA-256 hex key over category, destination and the
// full canonical preference set, so differing preferences never collide.
func Fingerprint(category model.Category, destination string, prefs model.PreferenceSet) string {
	normalized := fmt.Sprintf("%s|%s|%s",
		category,
		strings.ToLower(strings.TrimSpace(destination)),
		prefs.Canonical(),
	)
	h := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%x", h)
}

// entry is replaced as a whole; readers never observe a partial write.
type entry struct {
	storedAt   time.Time
	candidates []model.Candidate
}

// Memory is an unbounded in-process cache with TTL staleness. Concurrent
// misses on the same key may each call the generator; the last store wins.
type Memory struct {
	slots sync.Map // fingerprint -> *entry
	now   func() time.Time
}

// Option configures a Memory cache.
type Option func(*Memory)

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Memory) {
		m.now = now
	}
}

// NewMemory creates an empty in-process cache.
func NewMemory(opts ...Option) *Memory {
	m := &Memory{now: time.Now}
	for _, o := range opts {
		o(m)
	}
	return m
}

// GetOrGenerate returns the cached list for fingerprint when it was stored
// less than ttl ago; otherwise it calls gen and stores the result. A failed
// generation is not stored, so the next call retries.
func (m *Memory) GetOrGenerate(ctx context.Context, fingerprint string, ttl time.Duration, gen Generator) ([]model.Candidate, error) {
	log := zap.L().With(zap.String("fingerprint", shortKey(fingerprint)))

	if v, ok := m.slots.Load(fingerprint); ok {
		e := v.(*entry)
		if ttl > 0 && m.now().Sub(e.storedAt) < ttl {
			log.Debug("candidate cache hit", zap.Int("candidates", len(e.candidates)))
			return slices.Clone(e.candidates), nil
		}
	}

	log.Debug("candidate cache miss")

	result, err := gen(ctx)
	if err != nil {
		return nil, &model.GenerationError{Key: shortKey(fingerprint), Err: err}
	}

	m.slots.Store(fingerprint, &entry{
		storedAt:   m.now(),
		candidates: slices.Clone(result),
	})
	return result, nil
}

func shortKey(k string) string {
	if len(k) > 12 {
		return k[:12]
	}
	return k
}
