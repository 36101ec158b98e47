package pipeline

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/mock"

	"github.com/sells-group/trip-planner/internal/model"
	"github.com/sells-group/trip-planner/internal/source"
)

// --- Source Mock ---

type mockSource struct {
	mock.Mock
}

func (m *mockSource) Name() string { return "mock" }

func (m *mockSource) Fetch(ctx context.Context, req source.Request) ([]model.Candidate, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Candidate), args.Error(1)
}

// --- In-memory Store ---

type roomKey struct {
	room     string
	category model.Category
}

type memStore struct {
	mu         sync.Mutex
	candidates map[roomKey][]model.Candidate
	votes      map[roomKey][]model.Vote
	selections map[roomKey][]model.MemberSelection
	plans      map[roomKey]*model.ConsolidatedPlan
	saveErr    error
}

func newMemStore() *memStore {
	return &memStore{
		candidates: make(map[roomKey][]model.Candidate),
		votes:      make(map[roomKey][]model.Vote),
		selections: make(map[roomKey][]model.MemberSelection),
		plans:      make(map[roomKey]*model.ConsolidatedPlan),
	}
}

func (s *memStore) SaveCandidates(_ context.Context, room string, cat model.Category, cands []model.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	k := roomKey{room, cat}
	seen := make(map[string]bool, len(s.candidates[k]))
	for _, c := range s.candidates[k] {
		seen[c.ID] = true
	}
	for _, c := range cands {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		s.candidates[k] = append(s.candidates[k], c)
	}
	return nil
}

func (s *memStore) ListCandidates(_ context.Context, room string, cat model.Category) ([]model.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Candidate(nil), s.candidates[roomKey{room, cat}]...), nil
}

func (s *memStore) GetCandidate(_ context.Context, room string, cat model.Category, id string) (*model.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.candidates[roomKey{room, cat}] {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, eris.Wrapf(model.ErrNotFound, "candidate %s", id)
}

func (s *memStore) UpsertVote(_ context.Context, room string, cat model.Category, v model.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := roomKey{room, cat}
	for i, old := range s.votes[k] {
		if old.CandidateID == v.CandidateID && old.UserID == v.UserID {
			if !v.CastAt.Before(old.CastAt) {
				s.votes[k][i] = v
			}
			return nil
		}
	}
	s.votes[k] = append(s.votes[k], v)
	return nil
}

func (s *memStore) ListVotes(_ context.Context, room string, cat model.Category) ([]model.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Vote(nil), s.votes[roomKey{room, cat}]...), nil
}

func (s *memStore) SaveSelection(_ context.Context, room string, sel model.MemberSelection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := roomKey{room, sel.Category}
	for i, old := range s.selections[k] {
		if old.UserID == sel.UserID {
			s.selections[k][i] = sel
			return nil
		}
	}
	s.selections[k] = append(s.selections[k], sel)
	return nil
}

func (s *memStore) ListSelections(_ context.Context, room string, cat model.Category) ([]model.MemberSelection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.MemberSelection(nil), s.selections[roomKey{room, cat}]...), nil
}

func (s *memStore) SavePlan(_ context.Context, room string, plan *model.ConsolidatedPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans[roomKey{room, plan.Category}] = plan
	return nil
}

func (s *memStore) GetPlan(_ context.Context, room string, cat model.Category) (*model.ConsolidatedPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.plans[roomKey{room, cat}]; ok {
		return p, nil
	}
	return nil, eris.Wrapf(model.ErrNotFound, "plan %s", cat)
}

func (s *memStore) Migrate(context.Context) error { return nil }
func (s *memStore) Close() error                  { return nil }
