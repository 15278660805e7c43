package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Eerick6/infanps/pkg/logger"
)

// LocalStorage defines the storage operations needed by the local strategy.
type LocalStorage interface {
	GetUserByEmail(ctx context.Context, email string) (*Identity, error)
	CreateUser(ctx context.Context, user *Identity) error
	GetPasswordHash(ctx context.Context, userID uuid.UUID) ([]byte, error)
	StorePasswordHash(ctx context.Context, userID uuid.UUID, hash []byte) error
}

// LocalStrategy validates email/password credentials against stored bcrypt
// hashes.
type LocalStrategy struct {
	storage    LocalStorage
	bcryptCost int
	log        *slog.Logger
}

// LocalOption configures the local strategy.
type LocalOption func(*LocalStrategy)

// WithBcryptCost sets the bcrypt cost for password hashing.
func WithBcryptCost(cost int) LocalOption {
	return func(s *LocalStrategy) {
		s.bcryptCost = cost
	}
}

// WithLocalLogger sets a custom logger for the strategy.
func WithLocalLogger(log *slog.Logger) LocalOption {
	return func(s *LocalStrategy) {
		s.log = log
	}
}

// NewLocalStrategy creates the password strategy.
func NewLocalStrategy(storage LocalStorage, opts ...LocalOption) *LocalStrategy {
	s := &LocalStrategy{
		storage:    storage,
		bcryptCost: bcrypt.DefaultCost,
		log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *LocalStrategy) Name() string { return string(MethodLocal) }

// Authenticate verifies email and password. Every rejection path returns the
// same ErrInvalidCredentials so a caller cannot tell which field was wrong.
func (s *LocalStrategy) Authenticate(ctx context.Context, creds Credentials) (*Identity, error) {
	email := normalizeEmail(creds.Email)
	if email == "" || creds.Password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.storage.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.log.ErrorContext(ctx, "user lookup failed",
			logger.Error(err),
			logger.Component("auth.local"),
		)
		return nil, errors.Join(ErrStrategyFailure, err)
	}

	hash, err := s.storage.GetPasswordHash(ctx, user.ID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.log.ErrorContext(ctx, "password hash lookup failed",
			logger.Error(err),
			logger.UserID(user.ID),
			logger.Component("auth.local"),
		)
		return nil, errors.Join(ErrStrategyFailure, err)
	}

	if err := bcrypt.CompareHashAndPassword(hash, []byte(creds.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// Register creates a new user with email and password.
func (s *LocalStrategy) Register(ctx context.Context, email, name, password string) (*Identity, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	_, err := s.storage.GetUserByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailAlreadyExists
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, errors.Join(ErrStrategyFailure, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, errors.Join(ErrStrategyFailure, err)
	}

	user := &Identity{
		ID:         uuid.New(),
		Email:      email,
		Name:       name,
		AuthMethod: MethodLocal,
		CreatedAt:  time.Now(),
	}

	if err := s.storage.CreateUser(ctx, user); err != nil {
		return nil, errors.Join(ErrStrategyFailure, err)
	}

	if err := s.storage.StorePasswordHash(ctx, user.ID, hash); err != nil {
		return nil, errors.Join(ErrStrategyFailure, err)
	}

	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var _ Strategy = (*LocalStrategy)(nil)
