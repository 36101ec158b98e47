package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/trip-planner/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. Timestamps are
// stored as unix nanoseconds so they compare correctly in SQL.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS candidates (
	room_id    TEXT NOT NULL,
	category   TEXT NOT NULL,
	id         TEXT NOT NULL,
	position   INTEGER NOT NULL,
	payload    TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	PRIMARY KEY (room_id, category, id)
);

CREATE TABLE IF NOT EXISTS votes (
	id           TEXT PRIMARY KEY,
	room_id      TEXT NOT NULL,
	category     TEXT NOT NULL,
	candidate_id TEXT NOT NULL,
	user_id      TEXT NOT NULL,
	vote_type    TEXT NOT NULL,
	cast_at      INTEGER NOT NULL,
	UNIQUE (room_id, category, candidate_id, user_id)
);

CREATE TABLE IF NOT EXISTS selections (
	room_id      TEXT NOT NULL,
	category     TEXT NOT NULL,
	user_id      TEXT NOT NULL,
	payload      TEXT NOT NULL,
	finalized_at INTEGER NOT NULL,
	PRIMARY KEY (room_id, category, user_id)
);

CREATE TABLE IF NOT EXISTS plans (
	room_id    TEXT NOT NULL,
	category   TEXT NOT NULL,
	payload    TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	PRIMARY KEY (room_id, category)
);

CREATE INDEX IF NOT EXISTS idx_votes_room_category ON votes(room_id, category);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveCandidates adds candidates to the room's pool for category. Ids
// already stored keep their first payload and position; new ones are
// appended after them.
func (s *SQLiteStore) SaveCandidates(ctx context.Context, roomID string, category model.Category, candidates []model.Candidate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin save candidates")
	}
	defer tx.Rollback() //nolint:errcheck

	var next int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position) + 1, 0) FROM candidates WHERE room_id = ? AND category = ?`,
		roomID, string(category),
	).Scan(&next); err != nil {
		return eris.Wrap(err, "sqlite: next candidate position")
	}

	now := time.Now().UTC().UnixNano()
	for i, c := range uniqueByID(candidates) {
		payload, err := json.Marshal(c)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal candidate")
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO candidates (room_id, category, id, position, payload, created_at) VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (room_id, category, id) DO NOTHING`,
			roomID, string(category), c.ID, next+i, string(payload), now,
		); err != nil {
			return eris.Wrapf(err, "sqlite: insert candidate %s", c.ID)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit candidates")
}

func (s *SQLiteStore) ListCandidates(ctx context.Context, roomID string, category model.Category) ([]model.Candidate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM candidates WHERE room_id = ? AND category = ? ORDER BY position`,
		roomID, string(category),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list candidates")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.Candidate
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan candidate")
		}
		var c model.Candidate
		if err := json.Unmarshal([]byte(payload), &c); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal candidate")
		}
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate candidates")
}

func (s *SQLiteStore) GetCandidate(ctx context.Context, roomID string, category model.Category, candidateID string) (*model.Candidate, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM candidates WHERE room_id = ? AND category = ? AND id = ?`,
		roomID, string(category), candidateID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(model.ErrNotFound, "sqlite: candidate %s", candidateID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get candidate %s", candidateID)
	}

	var c model.Candidate
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal candidate")
	}
	return &c, nil
}

// UpsertVote keeps one vote per (room, category, candidate, user). An incoming vote
// older than the stored one is ignored.
func (s *SQLiteStore) UpsertVote(ctx context.Context, roomID string, category model.Category, vote model.Vote) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO votes (id, room_id, category, candidate_id, user_id, vote_type, cast_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (room_id, category, candidate_id, user_id) DO UPDATE SET
			vote_type = excluded.vote_type,
			cast_at = excluded.cast_at
		WHERE excluded.cast_at >= votes.cast_at`,
		uuid.New().String(), roomID, string(category), vote.CandidateID, vote.UserID,
		string(vote.Type), vote.CastAt.UTC().UnixNano(),
	)
	return eris.Wrapf(err, "sqlite: upsert vote %s/%s", vote.CandidateID, vote.UserID)
}

func (s *SQLiteStore) ListVotes(ctx context.Context, roomID string, category model.Category) ([]model.Vote, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT candidate_id, user_id, vote_type, cast_at FROM votes
		WHERE room_id = ? AND category = ? ORDER BY cast_at, user_id`,
		roomID, string(category),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list votes")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.Vote
	for rows.Next() {
		var (
			v      model.Vote
			typ    string
			castAt int64
		)
		if err := rows.Scan(&v.CandidateID, &v.UserID, &typ, &castAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan vote")
		}
		v.Type = model.VoteType(typ)
		v.CastAt = time.Unix(0, castAt).UTC()
		out = append(out, v)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate votes")
}

// SaveSelection replaces the member's previous selection for the category.
func (s *SQLiteStore) SaveSelection(ctx context.Context, roomID string, sel model.MemberSelection) error {
	payload, err := json.Marshal(sel)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal selection")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO selections (room_id, category, user_id, payload, finalized_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (room_id, category, user_id) DO UPDATE SET
			payload = excluded.payload,
			finalized_at = excluded.finalized_at`,
		roomID, string(sel.Category), sel.UserID, string(payload), sel.FinalizedAt.UTC().UnixNano(),
	)
	return eris.Wrapf(err, "sqlite: save selection %s", sel.UserID)
}

func (s *SQLiteStore) ListSelections(ctx context.Context, roomID string, category model.Category) ([]model.MemberSelection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM selections WHERE room_id = ? AND category = ? ORDER BY finalized_at, user_id`,
		roomID, string(category),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list selections")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.MemberSelection
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan selection")
		}
		var sel model.MemberSelection
		if err := json.Unmarshal([]byte(payload), &sel); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal selection")
		}
		out = append(out, sel)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate selections")
}

func (s *SQLiteStore) SavePlan(ctx context.Context, roomID string, plan *model.ConsolidatedPlan) error {
	payload, err := json.Marshal(plan)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal plan")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO plans (room_id, category, payload, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (room_id, category) DO UPDATE SET
			payload = excluded.payload,
			created_at = excluded.created_at`,
		roomID, string(plan.Category), string(payload), time.Now().UTC().UnixNano(),
	)
	return eris.Wrapf(err, "sqlite: save plan %s", plan.Category)
}

func (s *SQLiteStore) GetPlan(ctx context.Context, roomID string, category model.Category) (*model.ConsolidatedPlan, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM plans WHERE room_id = ? AND category = ?`,
		roomID, string(category),
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(model.ErrNotFound, "sqlite: plan %s", category)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get plan %s", category)
	}

	var plan model.ConsolidatedPlan
	if err := json.Unmarshal([]byte(payload), &plan); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal plan")
	}
	return &plan, nil
}
