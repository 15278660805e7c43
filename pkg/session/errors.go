package session

import "errors"

var (
	// ErrSessionNotFound indicates no session record exists for a token.
	ErrSessionNotFound = errors.New("session.not_found")

	// ErrSessionExpired indicates the session record has expired.
	ErrSessionExpired = errors.New("session.expired")

	// ErrInvalidSession indicates a malformed or unusable session record.
	ErrInvalidSession = errors.New("session.invalid")

	// ErrTokenGeneration indicates token generation failed.
	ErrTokenGeneration = errors.New("session.token_generation_failed")

	// ErrStoreFault indicates the backing store failed; the manager recovers
	// by degrading to a fresh record.
	ErrStoreFault = errors.New("session.store_fault")
)
