package session

import (
	"time"

	"github.com/google/uuid"
)

// Session is a server-side session record. The client only ever holds the
// opaque Token; all state lives in the store. Mutating methods flag the
// record dirty so the manager can skip redundant store writes.
type Session struct {
	ID             uuid.UUID           `json:"id"`
	Token          string              `json:"token"`
	UserID         *uuid.UUID          `json:"user_id,omitempty"`
	Flash          map[string][]string `json:"flash,omitempty"`
	Data           map[string]any      `json:"data,omitempty"`
	ExpiresAt      time.Time           `json:"expires_at"`
	LastActivityAt time.Time           `json:"last_activity_at"`
	CreatedAt      time.Time           `json:"created_at"`

	dirty bool
}

// NewSession creates a fresh anonymous session record.
func NewSession(token string, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:             uuid.New(),
		Token:          token,
		Flash:          make(map[string][]string),
		Data:           make(map[string]any),
		ExpiresAt:      now.Add(ttl),
		LastActivityAt: now,
		CreatedAt:      now,
	}
}

// IsAuthenticated returns true if the session has a user ID.
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.UserID != nil
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return s != nil && time.Now().After(s.ExpiresAt)
}

// IsDirty reports whether the record was mutated since it was loaded.
func (s *Session) IsDirty() bool {
	return s != nil && s.dirty
}

// Get retrieves a value from session data.
func (s *Session) Get(key string) (any, bool) {
	if s == nil || s.Data == nil {
		return nil, false
	}
	val, ok := s.Data[key]
	return val, ok
}

// GetString retrieves a string value from session data.
func (s *Session) GetString(key string) (string, bool) {
	val, ok := s.Get(key)
	if !ok {
		return "", false
	}
	str, ok := val.(string)
	return str, ok
}

// Set stores a value in session data.
func (s *Session) Set(key string, value any) {
	if s == nil {
		return
	}
	if s.Data == nil {
		s.Data = make(map[string]any)
	}
	s.Data[key] = value
	s.dirty = true
}

// Delete removes a value from session data.
func (s *Session) Delete(key string) {
	if s == nil || s.Data == nil {
		return
	}
	if _, ok := s.Data[key]; ok {
		delete(s.Data, key)
		s.dirty = true
	}
}

// SetUserID binds the session to a user identity. Only the identity key is
// stored, never user data.
func (s *Session) SetUserID(id uuid.UUID) {
	if s == nil {
		return
	}
	s.UserID = &id
	s.dirty = true
}

// ClearUserID detaches the session from its user.
func (s *Session) ClearUserID() {
	if s == nil || s.UserID == nil {
		return
	}
	s.UserID = nil
	s.dirty = true
}

// PushFlash appends a message to the named flash category. The message
// becomes visible to the next request that drains the session.
func (s *Session) PushFlash(category, message string) {
	if s == nil {
		return
	}
	if s.Flash == nil {
		s.Flash = make(map[string][]string)
	}
	s.Flash[category] = append(s.Flash[category], message)
	s.dirty = true
}

// DrainFlash returns all queued flash messages and clears them from the
// record in one step, so a message is never rendered twice.
func (s *Session) DrainFlash() map[string][]string {
	if s == nil || len(s.Flash) == 0 {
		return map[string][]string{}
	}
	drained := s.Flash
	s.Flash = make(map[string][]string)
	s.dirty = true
	return drained
}

// Clear removes all data and flash messages from the session.
func (s *Session) Clear() {
	if s == nil {
		return
	}
	s.Data = make(map[string]any)
	s.Flash = make(map[string][]string)
	s.dirty = true
}

// Touch updates the last activity time.
func (s *Session) Touch() {
	if s == nil {
		return
	}
	s.LastActivityAt = time.Now()
}

func (s *Session) markClean() {
	if s != nil {
		s.dirty = false
	}
}
