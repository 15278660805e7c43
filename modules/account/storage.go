package account

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Eerick6/infanps/pkg/auth"
)

// PgStorage persists user records in the users table. It backs both the
// local credential strategy and the per-request identity resolution.
type PgStorage struct {
	pool *pgxpool.Pool
}

// NewPgStorage creates a user storage over the given pool.
func NewPgStorage(pool *pgxpool.Pool) *PgStorage {
	return &PgStorage{pool: pool}
}

func (s *PgStorage) GetUserByID(ctx context.Context, id uuid.UUID) (*auth.Identity, error) {
	return s.scanUser(s.pool.QueryRow(ctx,
		`SELECT id, email, name, auth_method, created_at FROM users WHERE id = $1`, id))
}

func (s *PgStorage) GetUserByEmail(ctx context.Context, email string) (*auth.Identity, error) {
	return s.scanUser(s.pool.QueryRow(ctx,
		`SELECT id, email, name, auth_method, created_at FROM users WHERE email = $1`, email))
}

func (s *PgStorage) CreateUser(ctx context.Context, user *auth.Identity) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, email, name, auth_method, created_at) VALUES ($1, $2, $3, $4, $5)`,
		user.ID, user.Email, user.Name, user.AuthMethod, user.CreatedAt)
	return err
}

func (s *PgStorage) GetPasswordHash(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	var hash []byte
	err := s.pool.QueryRow(ctx,
		`SELECT password_hash FROM users WHERE id = $1 AND password_hash IS NOT NULL`, userID,
	).Scan(&hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}
	return hash, nil
}

func (s *PgStorage) StorePasswordHash(ctx context.Context, userID uuid.UUID, hash []byte) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2 WHERE id = $1`, userID, hash)
	return err
}

func (s *PgStorage) scanUser(row pgx.Row) (*auth.Identity, error) {
	var user auth.Identity
	if err := row.Scan(&user.ID, &user.Email, &user.Name, &user.AuthMethod, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

var (
	_ auth.LocalStorage     = (*PgStorage)(nil)
	_ auth.IdentityResolver = (*PgStorage)(nil)
	_ auth.OAuthStorage     = (*PgStorage)(nil)
)
