package auth_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eerick6/infanps/pkg/auth"
)

// memStorage is an in-memory user store shared by the auth tests.
type memStorage struct {
	mu     sync.Mutex
	users  map[uuid.UUID]*auth.Identity
	hashes map[uuid.UUID][]byte

	lookupErr error
}

func newMemStorage() *memStorage {
	return &memStorage{
		users:  make(map[uuid.UUID]*auth.Identity),
		hashes: make(map[uuid.UUID][]byte),
	}
}

func (s *memStorage) GetUserByID(_ context.Context, id uuid.UUID) (*auth.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	return user, nil
}

func (s *memStorage) GetUserByEmail(_ context.Context, email string) (*auth.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (s *memStorage) CreateUser(_ context.Context, user *auth.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
	return nil
}

func (s *memStorage) GetPasswordHash(_ context.Context, userID uuid.UUID) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	hash, ok := s.hashes[userID]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	return hash, nil
}

func (s *memStorage) StorePasswordHash(_ context.Context, userID uuid.UUID, hash []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hashes[userID] = hash
	return nil
}

func (s *memStorage) deleteUser(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

func TestLocalStrategy_RegisterAndAuthenticate(t *testing.T) {
	t.Parallel()

	storage := newMemStorage()
	strategy := auth.NewLocalStrategy(storage, auth.WithBcryptCost(4))

	user, err := strategy.Register(context.Background(), "Ana@Example.COM", "Ana", "secreta123")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email, "email must be normalized")
	assert.Equal(t, auth.MethodLocal, user.AuthMethod)

	got, err := strategy.Authenticate(context.Background(), auth.Credentials{
		Email:    "ana@example.com",
		Password: "secreta123",
	})
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestLocalStrategy_RejectionsAreIndistinguishable(t *testing.T) {
	t.Parallel()

	storage := newMemStorage()
	strategy := auth.NewLocalStrategy(storage, auth.WithBcryptCost(4))

	_, err := strategy.Register(context.Background(), "ana@example.com", "Ana", "secreta123")
	require.NoError(t, err)

	tests := []struct {
		name  string
		creds auth.Credentials
	}{
		{"wrong password", auth.Credentials{Email: "ana@example.com", Password: "incorrecta"}},
		{"unknown email", auth.Credentials{Email: "nadie@example.com", Password: "secreta123"}},
		{"empty email", auth.Credentials{Password: "secreta123"}},
		{"empty password", auth.Credentials{Email: "ana@example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := strategy.Authenticate(context.Background(), tt.creds)
			assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
		})
	}
}

func TestLocalStrategy_StorageFaultIsNotInvalidCredentials(t *testing.T) {
	t.Parallel()

	storage := newMemStorage()
	storage.lookupErr = errors.New("connection refused")
	strategy := auth.NewLocalStrategy(storage, auth.WithBcryptCost(4))

	_, err := strategy.Authenticate(context.Background(), auth.Credentials{
		Email:    "ana@example.com",
		Password: "secreta123",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, auth.ErrStrategyFailure)
	assert.NotErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLocalStrategy_RegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	storage := newMemStorage()
	strategy := auth.NewLocalStrategy(storage, auth.WithBcryptCost(4))

	_, err := strategy.Register(context.Background(), "ana@example.com", "Ana", "secreta123")
	require.NoError(t, err)

	_, err = strategy.Register(context.Background(), "ANA@example.com", "Otra", "diferente")
	assert.ErrorIs(t, err, auth.ErrEmailAlreadyExists)
}
