package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists session records in a sessions table, keyed by the
// opaque token with a jsonb payload for data and flash queues. Records
// survive process restarts; concurrency control is the database's.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a session store backed by the given pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// sessionPayload is the jsonb column shape.
type sessionPayload struct {
	Flash map[string][]string `json:"flash,omitempty"`
	Data  map[string]any      `json:"data,omitempty"`
}

// CreateSchema creates the sessions table when it does not exist yet.
// Deployments using goose migrations get the same table from migrations/;
// this is the programmatic path for standalone use.
func (s *PostgresStore) CreateSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS sessions (
			token            TEXT PRIMARY KEY,
			id               UUID NOT NULL,
			user_id          UUID,
			payload          JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at       TIMESTAMPTZ NOT NULL,
			last_activity_at TIMESTAMPTZ NOT NULL,
			expires_at       TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS sessions_expires_at_idx ON sessions (expires_at)`)
	if err != nil {
		return errors.Join(ErrStoreFault, err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, token string) (*Session, error) {
	var (
		sess    Session
		payload []byte
	)

	err := s.pool.QueryRow(ctx,
		`SELECT token, id, user_id, payload, created_at, last_activity_at, expires_at
		 FROM sessions WHERE token = $1`, token,
	).Scan(&sess.Token, &sess.ID, &sess.UserID, &payload, &sess.CreatedAt, &sess.LastActivityAt, &sess.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, errors.Join(ErrStoreFault, err)
	}

	if sess.IsExpired() {
		_ = s.Destroy(ctx, token)
		return nil, ErrSessionExpired
	}

	var p sessionPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, errors.Join(ErrInvalidSession, err)
	}
	sess.Flash = p.Flash
	sess.Data = p.Data
	if sess.Flash == nil {
		sess.Flash = make(map[string][]string)
	}
	if sess.Data == nil {
		sess.Data = make(map[string]any)
	}

	return &sess, nil
}

func (s *PostgresStore) Save(ctx context.Context, sess *Session) error {
	if sess == nil || sess.Token == "" {
		return ErrInvalidSession
	}

	payload, err := json.Marshal(sessionPayload{Flash: sess.Flash, Data: sess.Data})
	if err != nil {
		return errors.Join(ErrInvalidSession, err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO sessions (token, id, user_id, payload, created_at, last_activity_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (token) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			payload = EXCLUDED.payload,
			last_activity_at = EXCLUDED.last_activity_at,
			expires_at = EXCLUDED.expires_at`,
		sess.Token, sess.ID, sess.UserID, payload, sess.CreatedAt, sess.LastActivityAt, sess.ExpiresAt)
	if err != nil {
		return errors.Join(ErrStoreFault, err)
	}
	return nil
}

func (s *PostgresStore) Touch(ctx context.Context, token string, lastActivity, expiresAt time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE sessions SET last_activity_at = $2, expires_at = $3 WHERE token = $1`,
		token, lastActivity, expiresAt)
	if err != nil {
		return errors.Join(ErrStoreFault, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (s *PostgresStore) Destroy(ctx context.Context, token string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token); err != nil {
		return errors.Join(ErrStoreFault, err)
	}
	return nil
}

func (s *PostgresStore) DeleteExpired(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < now()`); err != nil {
		return errors.Join(ErrStoreFault, err)
	}
	return nil
}

// DestroyByUserID removes every session belonging to one user, e.g. after a
// password change.
func (s *PostgresStore) DestroyByUserID(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID); err != nil {
		return errors.Join(ErrStoreFault, err)
	}
	return nil
}

var _ Store = (*PostgresStore)(nil)
