package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/Eerick6/infanps/pkg/logger"
	"github.com/Eerick6/infanps/pkg/session"
)

// Service composes the registered strategies with the session manager. It is
// the only component that writes identity into a session, and the only one
// that reads it back out.
type Service struct {
	strategies map[string]Strategy
	resolver   IdentityResolver
	sessions   *session.Manager
	log        *slog.Logger
}

// ServiceOption configures the auth service.
type ServiceOption func(*Service)

// WithServiceLogger sets a custom logger for the service.
func WithServiceLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.log = log
	}
}

// NewService creates the authentication service.
func NewService(resolver IdentityResolver, sessions *session.Manager, opts ...ServiceOption) *Service {
	s := &Service{
		strategies: make(map[string]Strategy),
		resolver:   resolver,
		sessions:   sessions,
		log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Register adds a strategy under its own name. Later registrations with the
// same name replace earlier ones.
func (s *Service) Register(strategy Strategy) {
	s.strategies[strategy.Name()] = strategy
}

// Authenticate dispatches credentials to the named strategy.
func (s *Service) Authenticate(ctx context.Context, strategyName string, creds Credentials) (*Identity, error) {
	strategy, ok := s.strategies[strategyName]
	if !ok {
		return nil, ErrUnknownStrategy
	}

	identity, err := strategy.Authenticate(ctx, creds)
	if err != nil {
		if errors.Is(err, ErrStrategyFailure) {
			s.log.ErrorContext(ctx, "authentication strategy failed",
				slog.String("strategy", strategyName),
				logger.Error(err),
				logger.Component("auth"),
			)
		}
		return nil, err
	}

	return identity, nil
}

// Login authenticates and binds the resulting identity to the request's
// session: the session gains the serialized identity key and a rotated,
// refreshed cookie. Only the key is persisted, never user data.
func (s *Service) Login(ctx context.Context, w http.ResponseWriter, strategyName string, creds Credentials) (*Identity, error) {
	identity, err := s.Authenticate(ctx, strategyName, creds)
	if err != nil {
		return nil, err
	}

	sess, ok := session.FromContext(ctx)
	if !ok {
		return nil, errors.Join(ErrStrategyFailure, errors.New("no session in request context"))
	}

	if err := s.sessions.Authenticate(ctx, w, sess, s.Serialize(identity)); err != nil {
		return nil, errors.Join(ErrStrategyFailure, err)
	}

	return identity, nil
}

// Logout destroys the request's session and clears the cookie.
func (s *Service) Logout(ctx context.Context, w http.ResponseWriter) error {
	sess, ok := session.FromContext(ctx)
	if !ok {
		return nil
	}
	return s.sessions.Destroy(ctx, w, sess)
}

// Serialize reduces an identity to the key stored in the session.
func (s *Service) Serialize(identity *Identity) uuid.UUID {
	return identity.ID
}

// Deserialize resolves a stored key back to a full identity.
func (s *Service) Deserialize(ctx context.Context, id uuid.UUID) (*Identity, error) {
	return s.resolver.GetUserByID(ctx, id)
}

// IsAuthenticated is the guard predicate route handlers consult. It reads
// only the session; no store round-trip.
func (s *Service) IsAuthenticated(ctx context.Context) bool {
	sess, ok := session.FromContext(ctx)
	return ok && sess.IsAuthenticated()
}

// CurrentUser resolves the session's identity key to a full identity. A
// stale key (user deleted since login) yields ErrNotAuthenticated, not a
// fault.
func (s *Service) CurrentUser(ctx context.Context) (*Identity, error) {
	sess, ok := session.FromContext(ctx)
	if !ok || !sess.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}

	identity, err := s.Deserialize(ctx, *sess.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, err
	}

	return identity, nil
}
