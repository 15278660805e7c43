package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AuthMethod identifies how an identity was established.
type AuthMethod string

const (
	MethodLocal AuthMethod = "local"
	MethodOAuth AuthMethod = "oauth"
)

// Identity is the resolved user for a request. Sessions never store an
// Identity — only its ID — so user data is always read fresh per request.
type Identity struct {
	ID         uuid.UUID  `json:"id"`
	Email      string     `json:"email"`
	Name       string     `json:"name"`
	AuthMethod AuthMethod `json:"auth_method"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Credentials carries strategy input. Local uses Email/Password; OAuth uses
// Code/State from the provider callback. A strategy reads only its fields.
type Credentials struct {
	Email    string
	Password string
	Code     string
	State    string
}

// Strategy is a pluggable credential-validation algorithm. Implementations
// must return ErrInvalidCredentials for any rejected credential set without
// revealing which part was wrong, and wrap internal faults in
// ErrStrategyFailure.
type Strategy interface {
	Name() string
	Authenticate(ctx context.Context, creds Credentials) (*Identity, error)
}

// IdentityResolver looks an identity up by its key. The session only holds
// the key; this is the per-request lookup collaborator.
type IdentityResolver interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*Identity, error)
}
