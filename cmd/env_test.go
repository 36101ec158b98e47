package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/trip-planner/internal/config"
	"github.com/sells-group/trip-planner/internal/source"
)

func testConfig() *config.Config {
	return &config.Config{
		Store:  config.StoreConfig{Driver: "sqlite"},
		Google: config.GoogleConfig{BaseURL: "http://localhost"},
		Anthropic: config.AnthropicConfig{
			Model:     "claude-haiku-4-5-20251001",
			MaxTokens: 1024,
		},
		Source: config.SourceConfig{Provider: "fallback", RetryAttempts: 1},
		Cache:  config.CacheConfig{TTLSecs: 60},
		Ranking: config.RankingConfig{
			BudgetSlack: 1.5, LocationWeight: 50, TypeWeight: 30, AmenityWeight: 20, RatingWeight: 10,
		},
		Consolidation: config.ConsolidationConfig{
			MinMembers: 2, Floor: 4, CeilingFraction: 0.8,
			Multipliers: map[string]float64{"dining": 2, "nightlife": 3},
		},
	}
}

func TestInitSource_Providers(t *testing.T) {
	c := testConfig()
	_, err := initSource(c)
	assert.Error(t, err, "fallback with no keys")

	c.Google.Key = "g"
	src, err := initSource(c)
	require.NoError(t, err)
	assert.IsType(t, &source.Fallback{}, src)

	c.Source.Provider = "places"
	src, err = initSource(c)
	require.NoError(t, err)
	assert.Equal(t, "places", src.Name())

	c.Source.Provider = "llm"
	_, err = initSource(c)
	assert.Error(t, err)

	c.Anthropic.Key = "a"
	src, err = initSource(c)
	require.NoError(t, err)
	assert.Equal(t, "llm", src.Name())

	c.Source.Provider = "carrier-pigeon"
	_, err = initSource(c)
	assert.Error(t, err)
}

func TestInitStore_SQLite(t *testing.T) {
	c := testConfig()
	c.Store.DatabaseURL = filepath.Join(t.TempDir(), "trip.db")

	st, err := initStore(context.Background(), c)
	require.NoError(t, err)
	defer st.Close()
	require.NoError(t, st.Migrate(context.Background()))
}

func TestInitStore_UnknownDriver(t *testing.T) {
	c := testConfig()
	c.Store.Driver = "mysql"
	_, err := initStore(context.Background(), c)
	assert.Error(t, err)
}

func TestPipelineOptions_SkipsUnknownMultiplier(t *testing.T) {
	opts := pipelineOptions(testConfig())
	assert.Len(t, opts, 3)
}
