package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/trip-planner/internal/db"
	"github.com/sells-group/trip-planner/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS candidates (
	room_id    TEXT NOT NULL,
	category   TEXT NOT NULL,
	id         TEXT NOT NULL,
	position   INTEGER NOT NULL,
	payload    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (room_id, category, id)
);

CREATE TABLE IF NOT EXISTS votes (
	id           TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	room_id      TEXT NOT NULL,
	category     TEXT NOT NULL,
	candidate_id TEXT NOT NULL,
	user_id      TEXT NOT NULL,
	vote_type    TEXT NOT NULL,
	cast_at      TIMESTAMPTZ NOT NULL,
	UNIQUE (room_id, category, candidate_id, user_id)
);

CREATE TABLE IF NOT EXISTS selections (
	room_id      TEXT NOT NULL,
	category     TEXT NOT NULL,
	user_id      TEXT NOT NULL,
	payload      JSONB NOT NULL,
	finalized_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (room_id, category, user_id)
);

CREATE TABLE IF NOT EXISTS plans (
	room_id    TEXT NOT NULL,
	category   TEXT NOT NULL,
	payload    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (room_id, category)
);

CREATE INDEX IF NOT EXISTS idx_votes_room_category ON votes(room_id, category);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

var candidateColumns = []string{"room_id", "category", "id", "position", "payload", "created_at"}

// SaveCandidates adds candidates to the room's pool for category. Ids
// already stored keep their first payload and position; new ones are
// appended after them.
func (s *PostgresStore) SaveCandidates(ctx context.Context, roomID string, category model.Category, candidates []model.Candidate) error {
	unique := uniqueByID(candidates)
	if len(unique) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin save candidates")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var next int
	if err := tx.QueryRow(ctx,
		`SELECT COALESCE(MAX(position) + 1, 0) FROM candidates WHERE room_id = $1 AND category = $2`,
		roomID, string(category),
	).Scan(&next); err != nil {
		return eris.Wrap(err, "postgres: next candidate position")
	}

	now := time.Now().UTC()
	rows := make([][]any, 0, len(unique))
	for i, c := range unique {
		payload, err := json.Marshal(c)
		if err != nil {
			return eris.Wrap(err, "postgres: marshal candidate")
		}
		rows = append(rows, []any{roomID, string(category), c.ID, next + i, payload, now})
	}

	if _, err := db.BulkUpsert(ctx, tx, db.UpsertConfig{
		Table:        "candidates",
		Columns:      candidateColumns,
		ConflictKeys: []string{"room_id", "category", "id"},
		KeepExisting: true,
	}, rows); err != nil {
		return eris.Wrap(err, "postgres: add candidates")
	}
	return eris.Wrap(tx.Commit(ctx), "postgres: commit candidates")
}

func (s *PostgresStore) ListCandidates(ctx context.Context, roomID string, category model.Category) ([]model.Candidate, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT payload FROM candidates WHERE room_id = $1 AND category = $2 ORDER BY position`,
		roomID, string(category),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list candidates")
	}
	defer rows.Close()

	var out []model.Candidate
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "postgres: scan candidate")
		}
		var c model.Candidate
		if err := json.Unmarshal(payload, &c); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal candidate")
		}
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate candidates")
}

func (s *PostgresStore) GetCandidate(ctx context.Context, roomID string, category model.Category, candidateID string) (*model.Candidate, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM candidates WHERE room_id = $1 AND category = $2 AND id = $3`,
		roomID, string(category), candidateID,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(model.ErrNotFound, "postgres: candidate %s", candidateID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get candidate %s", candidateID)
	}

	var c model.Candidate
	if err := json.Unmarshal(payload, &c); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal candidate")
	}
	return &c, nil
}

// UpsertVote keeps one vote per (room, category, candidate, user). An incoming vote
// older than the stored one is ignored.
func (s *PostgresStore) UpsertVote(ctx context.Context, roomID string, category model.Category, vote model.Vote) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO votes (id, room_id, category, candidate_id, user_id, vote_type, cast_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (room_id, category, candidate_id, user_id) DO UPDATE SET
			vote_type = EXCLUDED.vote_type,
			cast_at = EXCLUDED.cast_at
		WHERE EXCLUDED.cast_at >= votes.cast_at`,
		uuid.New().String(), roomID, string(category), vote.CandidateID, vote.UserID,
		string(vote.Type), vote.CastAt.UTC(),
	)
	return eris.Wrapf(err, "postgres: upsert vote %s/%s", vote.CandidateID, vote.UserID)
}

func (s *PostgresStore) ListVotes(ctx context.Context, roomID string, category model.Category) ([]model.Vote, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT candidate_id, user_id, vote_type, cast_at FROM votes
		WHERE room_id = $1 AND category = $2 ORDER BY cast_at, user_id`,
		roomID, string(category),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list votes")
	}
	defer rows.Close()

	var out []model.Vote
	for rows.Next() {
		var (
			v   model.Vote
			typ string
		)
		if err := rows.Scan(&v.CandidateID, &v.UserID, &typ, &v.CastAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan vote")
		}
		v.Type = model.VoteType(typ)
		out = append(out, v)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate votes")
}

// SaveSelection replaces the member's previous selection for the category.
func (s *PostgresStore) SaveSelection(ctx context.Context, roomID string, sel model.MemberSelection) error {
	payload, err := json.Marshal(sel)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal selection")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO selections (room_id, category, user_id, payload, finalized_at) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (room_id, category, user_id) DO UPDATE SET
			payload = EXCLUDED.payload,
			finalized_at = EXCLUDED.finalized_at`,
		roomID, string(sel.Category), sel.UserID, payload, sel.FinalizedAt.UTC(),
	)
	return eris.Wrapf(err, "postgres: save selection %s", sel.UserID)
}

func (s *PostgresStore) ListSelections(ctx context.Context, roomID string, category model.Category) ([]model.MemberSelection, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT payload FROM selections WHERE room_id = $1 AND category = $2 ORDER BY finalized_at, user_id`,
		roomID, string(category),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list selections")
	}
	defer rows.Close()

	var out []model.MemberSelection
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "postgres: scan selection")
		}
		var sel model.MemberSelection
		if err := json.Unmarshal(payload, &sel); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal selection")
		}
		out = append(out, sel)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate selections")
}

func (s *PostgresStore) SavePlan(ctx context.Context, roomID string, plan *model.ConsolidatedPlan) error {
	payload, err := json.Marshal(plan)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal plan")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO plans (room_id, category, payload, created_at) VALUES ($1, $2, $3, now())
		ON CONFLICT (room_id, category) DO UPDATE SET
			payload = EXCLUDED.payload,
			created_at = EXCLUDED.created_at`,
		roomID, string(plan.Category), payload,
	)
	return eris.Wrapf(err, "postgres: save plan %s", plan.Category)
}

func (s *PostgresStore) GetPlan(ctx context.Context, roomID string, category model.Category) (*model.ConsolidatedPlan, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM plans WHERE room_id = $1 AND category = $2`,
		roomID, string(category),
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(model.ErrNotFound, "postgres: plan %s", category)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get plan %s", category)
	}

	var plan model.ConsolidatedPlan
	if err := json.Unmarshal(payload, &plan); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal plan")
	}
	return &plan, nil
}
