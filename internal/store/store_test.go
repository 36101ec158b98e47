package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/trip-planner/internal/model"
)

func newTestSQLite(t *testing.T) Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() }) //nolint:errcheck
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func rating(f float64) *float64 { return &f }

func storeTestSuite(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("SaveAndListCandidates", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		cands := []model.Candidate{
			{ID: "b", Name: "Beachfront Cottage", PriceEstimate: "4000", Rating: rating(3.8)},
			{ID: "a", Name: "City Hotel", PriceEstimate: "4500", Tags: []string{"pool"}},
			{ID: "b", Name: "Duplicate id"},
		}
		require.NoError(t, s.SaveCandidates(ctx, "room1", model.CategoryStay, cands))

		got, err := s.ListCandidates(ctx, "room1", model.CategoryStay)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "Beachfront Cottage", got[0].Name)
		assert.Equal(t, "City Hotel", got[1].Name)
		require.NotNil(t, got[0].Rating)
		assert.InDelta(t, 3.8, *got[0].Rating, 0.001)
		assert.Equal(t, []string{"pool"}, got[1].Tags)

		other, err := s.ListCandidates(ctx, "room1", model.CategoryDining)
		require.NoError(t, err)
		assert.Empty(t, other)
	})

	t.Run("SaveCandidatesAppends", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.SaveCandidates(ctx, "room1", model.CategoryStay, []model.Candidate{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}))
		require.NoError(t, s.SaveCandidates(ctx, "room1", model.CategoryStay, []model.Candidate{{ID: "c", Name: "C"}, {ID: "a", Name: "A renamed"}}))

		got, err := s.ListCandidates(ctx, "room1", model.CategoryStay)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "a", got[0].ID)
		assert.Equal(t, "A", got[0].Name)
		assert.Equal(t, "b", got[1].ID)
		assert.Equal(t, "c", got[2].ID)
	})

	t.Run("GetCandidate", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.SaveCandidates(ctx, "room1", model.CategoryActivity, []model.Candidate{{ID: "x", Name: "Surf"}}))

		c, err := s.GetCandidate(ctx, "room1", model.CategoryActivity, "x")
		require.NoError(t, err)
		assert.Equal(t, "Surf", c.Name)

		_, err = s.GetCandidate(ctx, "room1", model.CategoryActivity, "missing")
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("VoteOverwrite", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		t0 := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

		require.NoError(t, s.UpsertVote(ctx, "room1", model.CategoryStay,
			model.Vote{CandidateID: "x", UserID: "alice", Type: model.VoteUp, CastAt: t0}))
		require.NoError(t, s.UpsertVote(ctx, "room1", model.CategoryStay,
			model.Vote{CandidateID: "x", UserID: "alice", Type: model.VoteDown, CastAt: t0.Add(time.Minute)}))
		require.NoError(t, s.UpsertVote(ctx, "room1", model.CategoryStay,
			model.Vote{CandidateID: "x", UserID: "bob", Type: model.VoteUp, CastAt: t0.Add(2 * time.Minute)}))

		votes, err := s.ListVotes(ctx, "room1", model.CategoryStay)
		require.NoError(t, err)
		require.Len(t, votes, 2)
		assert.Equal(t, "alice", votes[0].UserID)
		assert.Equal(t, model.VoteDown, votes[0].Type)
		assert.True(t, votes[0].CastAt.Equal(t0.Add(time.Minute)))
		assert.Equal(t, "bob", votes[1].UserID)
	})

	t.Run("StaleVoteIgnored", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		t0 := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

		require.NoError(t, s.UpsertVote(ctx, "room1", model.CategoryDining,
			model.Vote{CandidateID: "x", UserID: "alice", Type: model.VoteDown, CastAt: t0}))
		require.NoError(t, s.UpsertVote(ctx, "room1", model.CategoryDining,
			model.Vote{CandidateID: "x", UserID: "alice", Type: model.VoteUp, CastAt: t0.Add(-time.Hour)}))

		votes, err := s.ListVotes(ctx, "room1", model.CategoryDining)
		require.NoError(t, err)
		require.Len(t, votes, 1)
		assert.Equal(t, model.VoteDown, votes[0].Type)
	})

	t.Run("VotesScopedByCategory", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		t0 := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

		require.NoError(t, s.UpsertVote(ctx, "room1", model.CategoryDining,
			model.Vote{CandidateID: "place1", UserID: "alice", Type: model.VoteUp, CastAt: t0}))
		require.NoError(t, s.UpsertVote(ctx, "room1", model.CategoryActivity,
			model.Vote{CandidateID: "place1", UserID: "alice", Type: model.VoteDown, CastAt: t0.Add(time.Minute)}))

		dining, err := s.ListVotes(ctx, "room1", model.CategoryDining)
		require.NoError(t, err)
		require.Len(t, dining, 1)
		assert.Equal(t, model.VoteUp, dining[0].Type)

		activity, err := s.ListVotes(ctx, "room1", model.CategoryActivity)
		require.NoError(t, err)
		require.Len(t, activity, 1)
		assert.Equal(t, model.VoteDown, activity[0].Type)
	})

	t.Run("SelectionsOverwritePerMember", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		t0 := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

		first := model.MemberSelection{
			UserID:             "alice",
			Category:           model.CategoryStay,
			SelectedCandidates: []model.Candidate{{ID: "a", Name: "A"}},
			FinalizedAt:        t0,
		}
		second := first
		second.SelectedCandidates = []model.Candidate{{ID: "b", Name: "B"}}
		second.PreferencesUsed = model.PreferenceSet{Category: model.CategoryStay, Types: []string{"cottage"}}
		second.FinalizedAt = t0.Add(time.Hour)
		bob := model.MemberSelection{UserID: "bob", Category: model.CategoryStay, FinalizedAt: t0.Add(time.Minute)}

		require.NoError(t, s.SaveSelection(ctx, "room1", first))
		require.NoError(t, s.SaveSelection(ctx, "room1", bob))
		require.NoError(t, s.SaveSelection(ctx, "room1", second))

		sels, err := s.ListSelections(ctx, "room1", model.CategoryStay)
		require.NoError(t, err)
		require.Len(t, sels, 2)
		assert.Equal(t, "bob", sels[0].UserID)
		assert.Equal(t, "alice", sels[1].UserID)
		assert.Equal(t, "B", sels[1].SelectedCandidates[0].Name)
		assert.Equal(t, []string{"cottage"}, sels[1].PreferencesUsed.Types)
	})

	t.Run("Plans", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		_, err := s.GetPlan(ctx, "room1", model.CategoryStay)
		assert.ErrorIs(t, err, model.ErrNotFound)

		plan := &model.ConsolidatedPlan{
			Category:            model.CategoryStay,
			ChosenCandidates:    []model.Candidate{{ID: "a", Name: "A"}},
			ConflictsIdentified: []string{},
			ResolutionStrategy:  model.StrategyOverlap,
			OptimalCount:        4,
			MemberCount:         2,
		}
		require.NoError(t, s.SavePlan(ctx, "room1", plan))
		plan.OptimalCount = 5
		require.NoError(t, s.SavePlan(ctx, "room1", plan))

		got, err := s.GetPlan(ctx, "room1", model.CategoryStay)
		require.NoError(t, err)
		assert.Equal(t, 5, got.OptimalCount)
		assert.Equal(t, model.StrategyOverlap, got.ResolutionStrategy)
		require.Len(t, got.ChosenCandidates, 1)
	})
}

func TestSQLiteStore(t *testing.T) {
	storeTestSuite(t, newTestSQLite)
}

func TestNewSQLite_BadPath(t *testing.T) {
	_, err := NewSQLite(filepath.Join(t.TempDir(), "missing", "dir", "test.db"))
	assert.Error(t, err)
}

func TestUniqueByID(t *testing.T) {
	out := uniqueByID([]model.Candidate{{ID: "a", Name: "1"}, {ID: "b"}, {ID: "a", Name: "2"}})
	require.Len(t, out, 2)
	assert.Equal(t, "1", out[0].Name)
}
