// Package reqctx builds the per-request, template-visible context.
//
// The legacy deployment shared these values on a process-wide mutable object,
// so concurrent requests could observe each other's flash messages and user.
// Here the context is created per request, carried on the request's
// context.Context, and discarded with the response.
package reqctx

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/Eerick6/infanps/pkg/auth"
	"github.com/Eerick6/infanps/pkg/flash"
	"github.com/Eerick6/infanps/pkg/logger"
	"github.com/Eerick6/infanps/pkg/session"
	"github.com/Eerick6/infanps/pkg/upload"
)

// Context is the data every rendered view can rely on. It is request-scoped
// and never shared across requests.
type Context struct {
	// CurrentUser is the resolved identity, nil when unauthenticated.
	CurrentUser *auth.Identity

	// Flash is the drained snapshot of the session's flash queues — distinct
	// from the live queues, which are already empty by the time any handler
	// runs.
	Flash map[string][]string

	// Upload is set only by the upload endpoint after staging a file.
	Upload *upload.File
}

type reqctxKey struct{}

// WithContext attaches the request context data.
func WithContext(ctx context.Context, rc *Context) context.Context {
	return context.WithValue(ctx, reqctxKey{}, rc)
}

// FromContext retrieves the request context data.
func FromContext(ctx context.Context) (*Context, bool) {
	rc, ok := ctx.Value(reqctxKey{}).(*Context)
	return rc, ok
}

// MustFromContext retrieves the request context data or panics. Handlers
// mounted behind Builder may rely on its presence.
func MustFromContext(ctx context.Context) *Context {
	rc, ok := FromContext(ctx)
	if !ok {
		panic("reqctx: not found in context")
	}
	return rc
}

// Builder returns the middleware that populates Context. It must run after
// the session middleware and before any route handler: it resolves the
// current user from the session's identity key and drains the flash queues
// in one atomic read.
func Builder(authSvc *auth.Service, log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rc := &Context{Flash: map[string][]string{}}

			if sess, ok := session.FromContext(r.Context()); ok {
				rc.Flash = flash.DrainAll(sess)

				if sess.IsAuthenticated() {
					user, err := authSvc.CurrentUser(r.Context())
					switch {
					case err == nil:
						rc.CurrentUser = user
					case errors.Is(err, auth.ErrNotAuthenticated):
						// Stale identity key: the user vanished since login.
						// Treat as unauthenticated rather than failing.
						sess.ClearUserID()
					default:
						log.ErrorContext(r.Context(), "current user resolution failed",
							logger.Error(err),
							logger.SessionID(sess.ID),
							logger.Component("reqctx"),
						)
					}
				}
			}

			next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), rc)))
		})
	}
}
