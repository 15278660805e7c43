package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Eerick6/infanps/pkg/logger"
)

// Manager owns the session lifecycle: it resolves the cookie-carried token
// to a record, hands the record to the request, and writes it back once the
// handler completes. Two concurrent requests on one session may race on
// load/save; the last writer wins and no optimistic locking is attempted.
type Manager struct {
	store     Store
	transport Transport
	config    Config
	log       *slog.Logger
}

// Option is a functional option for configuring the Manager.
type Option func(*Manager)

// WithStore sets the session store backend.
func WithStore(store Store) Option {
	return func(m *Manager) {
		m.store = store
	}
}

// WithTransport sets a custom session transport.
func WithTransport(transport Transport) Option {
	return func(m *Manager) {
		m.transport = transport
	}
}

// WithConfig sets custom configuration.
func WithConfig(config Config) Option {
	return func(m *Manager) {
		m.config = config
	}
}

// WithLogger sets the logger used for store fault reporting.
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) {
		m.log = log
	}
}

// New creates a session manager. A transport is required unless one is built
// from a cookie manager; a store defaults to in-memory.
func New(transport Transport, opts ...Option) *Manager {
	m := &Manager{
		transport: transport,
		config:    DefaultConfig(),
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.store == nil {
		m.store = NewMemoryStore(m.config.CleanupInterval)
	}
	if m.transport == nil {
		// Fail fast on misconfiguration to prevent insecure runtime behavior.
		panic("session: transport is required")
	}

	return m
}

// Load resolves the request to a session record. A missing, invalid, or
// expired token yields a fresh empty record and a new cookie — never an
// error. A failing store read is logged and degraded to a fresh record, so
// sessions never hard-fail the request.
func (m *Manager) Load(ctx context.Context, w http.ResponseWriter, r *http.Request) (*Session, error) {
	token, err := m.transport.GetToken(r)
	if err == nil {
		sess, err := m.store.Get(ctx, token)
		switch {
		case err == nil:
			if !sess.IsExpired() {
				return sess, nil
			}
			_ = m.store.Destroy(ctx, token)
		case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrSessionExpired):
			// Stale cookie, fall through to a fresh record.
		default:
			m.log.ErrorContext(ctx, "session store read failed, degrading to fresh session",
				logger.Error(errors.Join(ErrStoreFault, err)),
				logger.Component("session"),
			)
		}
	}

	return m.issue(ctx, w)
}

// issue creates, persists, and announces a fresh session record.
func (m *Manager) issue(ctx context.Context, w http.ResponseWriter) (*Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	sess := NewSession(token, m.config.TTL)
	if err := m.store.Save(ctx, sess); err != nil {
		// Keep serving with the in-memory record; the next save retries.
		m.log.ErrorContext(ctx, "session store write failed",
			logger.Error(errors.Join(ErrStoreFault, err)),
			logger.SessionID(sess.ID),
			logger.Component("session"),
		)
	} else {
		sess.markClean()
	}

	m.transport.SetToken(w, token, m.config.TTL)
	return sess, nil
}

// Save writes the record back after handler completion. Clean records only
// get their rolling TTL touched; dirty records are persisted in full. An
// abandoned request (client disconnect) is never partially saved.
func (m *Manager) Save(ctx context.Context, sess *Session) {
	if sess == nil || ctx.Err() != nil {
		return
	}

	now := time.Now()
	expiresAt := now.Add(m.config.TTL)

	if !sess.IsDirty() {
		if err := m.store.Touch(ctx, sess.Token, now, expiresAt); err != nil && !errors.Is(err, ErrSessionNotFound) {
			m.log.ErrorContext(ctx, "session touch failed",
				logger.Error(err),
				logger.SessionID(sess.ID),
				logger.Component("session"),
			)
		}
		return
	}

	sess.ExpiresAt = expiresAt
	sess.LastActivityAt = now
	if err := m.store.Save(ctx, sess); err != nil {
		m.log.ErrorContext(ctx, "session save failed",
			logger.Error(errors.Join(ErrStoreFault, err)),
			logger.SessionID(sess.ID),
			logger.Component("session"),
		)
		return
	}
	sess.markClean()
}

// Authenticate binds the session to a user identity and rotates the token
// so a pre-login identifier can never be replayed into an authenticated
// session. The refreshed cookie is set on the response.
func (m *Manager) Authenticate(ctx context.Context, w http.ResponseWriter, sess *Session, userID uuid.UUID) error {
	newToken, err := generateToken()
	if err != nil {
		return err
	}

	oldToken := sess.Token
	sess.Token = newToken
	sess.SetUserID(userID)
	sess.ExpiresAt = time.Now().Add(m.config.TTL)
	sess.Touch()

	if err := m.store.Save(ctx, sess); err != nil {
		return errors.Join(ErrStoreFault, err)
	}
	sess.markClean()

	if oldToken != "" {
		_ = m.store.Destroy(ctx, oldToken)
	}

	m.transport.SetToken(w, newToken, m.config.TTL)
	return nil
}

// Destroy deletes the session record and clears the cookie (logout).
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, sess *Session) error {
	if sess != nil && sess.Token != "" {
		if err := m.store.Destroy(ctx, sess.Token); err != nil {
			return errors.Join(ErrStoreFault, err)
		}
		sess.Clear()
		sess.ClearUserID()
		sess.markClean()
	}

	m.transport.ClearToken(w)
	return nil
}

// Config exposes the manager's effective configuration.
func (m *Manager) Config() Config {
	return m.config
}

// generateToken creates a cryptographically secure opaque token.
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrTokenGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
