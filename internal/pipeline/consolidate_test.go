package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/trip-planner/internal/model"
)

func locationAnswer(area string) []model.AnswerRecord {
	return []model.AnswerRecord{{QuestionText: "Which area?", AnswerValue: area}}
}

func TestFinalizeSelection_ResolvesCandidates(t *testing.T) {
	p, st := seededPipeline(t)
	ctx := context.Background()

	sel, err := p.FinalizeSelection(ctx, FinalizeRequest{
		RoomID:       "room1",
		UserID:       "ana",
		Category:     model.CategoryActivity,
		CandidateIDs: []string{"kayak", "fado", "kayak"},
		Answers:      locationAnswer("Coast"),
	})
	require.NoError(t, err)
	require.Len(t, sel.SelectedCandidates, 2)
	assert.Equal(t, "Sea Kayaking", sel.SelectedCandidates[0].Name)
	assert.Equal(t, []string{"coast"}, sel.PreferencesUsed.Location)
	assert.False(t, sel.FinalizedAt.IsZero())

	stored, _ := st.ListSelections(ctx, "room1", model.CategoryActivity)
	assert.Len(t, stored, 1)
}

func TestFinalizeSelection_UnknownCandidate(t *testing.T) {
	p, _ := seededPipeline(t)
	_, err := p.FinalizeSelection(context.Background(), FinalizeRequest{
		RoomID: "room1", UserID: "ana", Category: model.CategoryActivity, CandidateIDs: []string{"zoo"},
	})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestFinalizeSelection_MissingUser(t *testing.T) {
	p, _ := seededPipeline(t)
	_, err := p.FinalizeSelection(context.Background(), FinalizeRequest{RoomID: "room1", Category: model.CategoryActivity})
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestConsolidate_WaitsForMembers(t *testing.T) {
	p, st := seededPipeline(t)
	ctx := context.Background()

	_, err := p.FinalizeSelection(ctx, FinalizeRequest{
		RoomID: "room1", UserID: "ana", Category: model.CategoryActivity, CandidateIDs: []string{"kayak"},
	})
	require.NoError(t, err)

	out, err := p.Consolidate(ctx, "room1", model.CategoryActivity)
	require.NoError(t, err)
	assert.True(t, out.Waiting)
	assert.False(t, out.AIAnalyzed)
	assert.Equal(t, 1, out.Completed)
	assert.Equal(t, 2, out.Required)
	assert.Nil(t, out.Plan)

	_, err = st.GetPlan(ctx, "room1", model.CategoryActivity)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestConsolidate_BuildsAndStoresPlan(t *testing.T) {
	p, _ := seededPipeline(t)
	ctx := context.Background()

	for _, r := range []FinalizeRequest{
		{RoomID: "room1", UserID: "ana", Category: model.CategoryActivity, CandidateIDs: []string{"kayak", "fado"}},
		{RoomID: "room1", UserID: "ben", Category: model.CategoryActivity, CandidateIDs: []string{"kayak"}},
	} {
		_, err := p.FinalizeSelection(ctx, r)
		require.NoError(t, err)
	}
	require.NoError(t, p.CastVote(ctx, "room1", model.CategoryActivity, model.Vote{CandidateID: "fado", UserID: "ben", Type: model.VoteUp}))

	out, err := p.Consolidate(ctx, "room1", model.CategoryActivity)
	require.NoError(t, err)
	assert.True(t, out.AIAnalyzed)
	assert.False(t, out.Waiting)
	require.NotNil(t, out.Plan)
	assert.Equal(t, 2, out.Plan.MemberCount)
	require.NotEmpty(t, out.Plan.ChosenCandidates)
	assert.Equal(t, "kayak", out.Plan.ChosenCandidates[0].ID)

	saved, err := p.Plan(ctx, "room1", model.CategoryActivity)
	require.NoError(t, err)
	assert.Equal(t, out.Plan, saved)
}

func TestConsolidate_LatestSelectionPerMember(t *testing.T) {
	p, _ := seededPipeline(t)
	ctx := context.Background()

	for _, r := range []FinalizeRequest{
		{RoomID: "room1", UserID: "ana", Category: model.CategoryActivity, CandidateIDs: []string{"museum"}},
		{RoomID: "room1", UserID: "ana", Category: model.CategoryActivity, CandidateIDs: []string{"kayak"}},
	} {
		_, err := p.FinalizeSelection(ctx, r)
		require.NoError(t, err)
	}

	out, err := p.Consolidate(ctx, "room1", model.CategoryActivity)
	require.NoError(t, err)
	assert.True(t, out.Waiting)
	assert.Equal(t, 1, out.Completed)
}

func TestPlan_NotFound(t *testing.T) {
	p := New(newMemStore(), nil)
	_, err := p.Plan(context.Background(), "room1", model.CategoryDining)
	assert.ErrorIs(t, err, model.ErrNotFound)
}
