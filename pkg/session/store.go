package session

import (
	"context"
	"time"
)

// Store defines the interface for durable session persistence. Records must
// survive process restarts for every backend except MemoryStore.
type Store interface {
	// Get retrieves a session by token. Returns ErrSessionNotFound when no
	// record exists and ErrSessionExpired when the record's TTL has passed.
	Get(ctx context.Context, token string) (*Session, error)

	// Save upserts a session record. The record carries its own ExpiresAt,
	// so each save resets the store-side TTL.
	Save(ctx context.Context, session *Session) error

	// Touch updates activity and expiry without rewriting the payload.
	Touch(ctx context.Context, token string, lastActivity, expiresAt time.Time) error

	// Destroy removes a session by token. Missing records are not an error.
	Destroy(ctx context.Context, token string) error

	// DeleteExpired removes all expired sessions.
	DeleteExpired(ctx context.Context) error
}
