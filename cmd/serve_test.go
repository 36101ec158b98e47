package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/trip-planner/internal/model"
	"github.com/sells-group/trip-planner/internal/pipeline"
	"github.com/sells-group/trip-planner/internal/source"
	"github.com/sells-group/trip-planner/internal/store"
)

type stubSource struct {
	candidates []model.Candidate
	err        error
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) Fetch(context.Context, source.Request) ([]model.Candidate, error) {
	return s.candidates, s.err
}

func newTestRouter(t *testing.T, src source.Source) http.Handler {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "trip.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.Migrate(context.Background()))
	return buildRouter(pipeline.New(st, src), []string{"*"})
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func tapas() *stubSource {
	return &stubSource{candidates: []model.Candidate{
		{ID: "tasca", Name: "Tasca do Chico", PriceEstimate: "30"},
		{ID: "ramiro", Name: "Cervejaria Ramiro", PriceEstimate: "60"},
	}}
}

func TestBuildRouter_Health(t *testing.T) {
	h := buildRouter(nil, []string{"*"})
	rr := do(t, h, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestBuildRouter_CORSPreflight(t *testing.T) {
	h := buildRouter(nil, []string{"https://trips.example.com"})
	req := httptest.NewRequest(http.MethodOptions, "/health", nil)
	req.Header.Set("Origin", "https://trips.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, "https://trips.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestRoomFlow(t *testing.T) {
	h := newTestRouter(t, tapas())
	base := "/rooms/r1/categories/dining"

	rr := do(t, h, http.MethodPost, base+"/suggestions", map[string]any{"destination": "Lisbon"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var res pipeline.SuggestResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.Len(t, res.Candidates, 2)

	rr = do(t, h, http.MethodPost, base+"/votes", map[string]any{"user_id": "ana", "candidate_id": "ramiro", "vote_type": "up"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = do(t, h, http.MethodGet, base+"/consensus?group_size=2", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var view pipeline.ConsensusView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
	assert.Equal(t, 2, view.GroupSize)
	require.NotEmpty(t, view.Results)
	assert.Equal(t, "ramiro", view.Results[0].CandidateID)

	rr = do(t, h, http.MethodPost, base+"/selections", map[string]any{"user_id": "ana", "candidate_ids": []string{"ramiro"}})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = do(t, h, http.MethodPost, base+"/consolidate", nil)
	require.Equal(t, http.StatusAccepted, rr.Code)
	var waiting pipeline.ConsolidationOutcome
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &waiting))
	assert.False(t, waiting.AIAnalyzed)
	assert.True(t, waiting.Waiting)

	rr = do(t, h, http.MethodPost, base+"/selections", map[string]any{"user_id": "ben", "candidate_ids": []string{"ramiro", "tasca"}})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = do(t, h, http.MethodPost, base+"/consolidate", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var done pipeline.ConsolidationOutcome
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &done))
	assert.True(t, done.AIAnalyzed)
	require.NotNil(t, done.Plan)
	assert.Equal(t, 2, done.Plan.MemberCount)

	rr = do(t, h, http.MethodGet, base+"/plan", nil)
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestRoomErrors(t *testing.T) {
	h := newTestRouter(t, tapas())

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"unknown category", http.MethodPost, "/rooms/r1/categories/nightlife/suggestions", map[string]any{"destination": "Lisbon"}, http.StatusBadRequest},
		{"missing destination", http.MethodPost, "/rooms/r1/categories/dining/suggestions", map[string]any{}, http.StatusBadRequest},
		{"bad vote type", http.MethodPost, "/rooms/r1/categories/dining/votes", map[string]any{"user_id": "a", "candidate_id": "x", "vote_type": "meh"}, http.StatusBadRequest},
		{"vote on unknown candidate", http.MethodPost, "/rooms/r1/categories/dining/votes", map[string]any{"user_id": "a", "candidate_id": "x", "vote_type": "up"}, http.StatusNotFound},
		{"bad group size", http.MethodGet, "/rooms/r1/categories/dining/consensus?group_size=-1", nil, http.StatusBadRequest},
		{"missing plan", http.MethodGet, "/rooms/r1/categories/dining/plan", nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rr.Code, rr.Body.String())
		})
	}
}

func TestConsensus_EmptyRoom(t *testing.T) {
	h := newTestRouter(t, tapas())
	rr := do(t, h, http.MethodGet, "/rooms/r1/categories/dining/consensus?group_size=3", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "dining", body["category"])
	assert.Equal(t, 2.0, body["k"])
	assert.Equal(t, []any{}, body["results"])
	assert.Equal(t, []any{}, body["top"])
}

func TestSuggest_ProviderFailure(t *testing.T) {
	h := newTestRouter(t, &stubSource{err: errors.New("upstream 503")})
	rr := do(t, h, http.MethodPost, "/rooms/r1/categories/stay/suggestions", map[string]any{"destination": "Porto"})
	assert.Equal(t, http.StatusBadGateway, rr.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
	assert.Equal(t, http.StatusNotFound, statusFor(model.ErrNotFound))
	assert.Equal(t, http.StatusBadRequest, statusFor(model.ErrInvalidInput))
	assert.Equal(t, http.StatusBadGateway, statusFor(&model.GenerationError{Key: "k", Err: errors.New("x")}))
}
