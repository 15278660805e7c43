package infanps

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Eerick6/infanps/pkg/auth"
	"github.com/Eerick6/infanps/pkg/logger"
	"github.com/Eerick6/infanps/pkg/reqctx"
	"github.com/Eerick6/infanps/pkg/requestid"
	"github.com/Eerick6/infanps/pkg/secure"
	"github.com/Eerick6/infanps/pkg/session"
	"github.com/Eerick6/infanps/pkg/upload"
)

// RouteGroup is a business route collaborator. Groups register their own
// paths on the assembled router; by the time any of their handlers runs the
// session is loaded, the current user is resolved, and the flash queues are
// drained into the request context.
type RouteGroup interface {
	Register(r chi.Router)
}

// Deps carries everything the pipeline assembly needs.
type Deps struct {
	Logger   *slog.Logger
	Sessions *session.Manager
	Auth     *auth.Service
	Uploads  *upload.Handler
	Secure   secure.Config

	// Healthchecks back the GET /health endpoint.
	Healthchecks map[string]func(context.Context) error

	// Groups are the business route collaborators, registered in order.
	Groups []RouteGroup
}

// New assembles the request-processing chain. Order is deliberate:
//
//	request id → access log → security headers → recoverer → session → request context → routes
//
// Security headers sit outside the recoverer so even the generic 500 page
// carries them. The recoverer wraps the session layer too: a store panic or
// a builder fault never reaches the client unformatted. The upload endpoint
// is the single multipart consumer in the whole chain — request bodies are
// readable exactly once, so no global upload-parsing stage exists.
func New(deps Deps) http.Handler {
	log := deps.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	r := chi.NewRouter()

	r.Use(requestid.Middleware)
	r.Use(RequestLogger(log))
	r.Use(secure.Headers(deps.Secure))
	r.Use(Recoverer(log))
	r.Use(deps.Sessions.Middleware)
	r.Use(reqctx.Builder(deps.Auth, log))

	r.Get("/health", healthHandler(deps.Healthchecks))
	r.Post("/upload", uploadHandler(deps.Uploads, log))

	for _, g := range deps.Groups {
		g.Register(r)
	}

	return r
}

// uploadHandler is the dedicated multipart/form-data endpoint. It stages the
// single configured file field and acknowledges in plain text; error kinds
// map to 4xx responses with no partial file left behind.
func uploadHandler(h *upload.Handler, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := h.Receive(w, r)
		switch {
		case errors.Is(err, upload.ErrTooLarge):
			http.Error(w, "El archivo excede el tamaño permitido", http.StatusRequestEntityTooLarge)
			return
		case errors.Is(err, upload.ErrNoFile), errors.Is(err, upload.ErrMalformedBody):
			http.Error(w, "Cuerpo de la petición inválido", http.StatusBadRequest)
			return
		case err != nil:
			log.ErrorContext(r.Context(), "upload staging failed",
				logger.Error(err),
				logger.Component("upload"),
			)
			http.Error(w, "Error interno del servidor", http.StatusInternalServerError)
			return
		}

		if rc, ok := reqctx.FromContext(r.Context()); ok {
			rc.Upload = f
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("Archivo subido exitosamente"))
	}
}

// healthHandler runs the registered probes and reports the first failure.
func healthHandler(checks map[string]func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for name, check := range checks {
			if err := check(r.Context()); err != nil {
				http.Error(w, name+": unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
