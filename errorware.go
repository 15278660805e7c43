package infanps

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/Eerick6/infanps/pkg/logger"
)

// Recoverer is the terminal error stage. It structurally wraps everything
// registered after it, so a fault in the session layer, the context builder,
// or any route handler always lands here — ordering in a list is not relied
// on. The full detail is logged server-side exactly once; the client only
// ever sees a generic 500 body, and only when no response was started yet.
func Recoverer(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := &responseTracker{ResponseWriter: w}

			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					// net/http's own abort signal; re-panic so the
					// connection is torn down as intended.
					panic(rec)
				}

				log.ErrorContext(r.Context(), "unhandled fault in request pipeline",
					slog.Any("panic", rec),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("stack", string(debug.Stack())),
					logger.Component("pipeline"),
				)

				if !ww.wroteHeader {
					http.Error(ww, "Error interno del servidor", http.StatusInternalServerError)
				}
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// responseTracker records whether a response was started, so the recoverer
// never writes a second response for one request.
type responseTracker struct {
	http.ResponseWriter
	wroteHeader bool
}

func (w *responseTracker) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseTracker) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.wroteHeader = true
	}
	return w.ResponseWriter.Write(b)
}
