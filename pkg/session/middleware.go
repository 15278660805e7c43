package session

import "net/http"

// Middleware loads the request's session before the handler runs and writes
// it back once the handler returns. The write-back only hits the store when
// the record was mutated; untouched records just roll their TTL forward.
//
// Cookies are issued during Load and Authenticate, both of which run before
// any body bytes are written, so the save phase never needs to touch
// response headers.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := m.Load(r.Context(), w, r)
		if err != nil {
			// Only token generation can fail here; nothing downstream can
			// work without a session identifier.
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		ctx := WithSession(r.Context(), sess)
		next.ServeHTTP(w, r.WithContext(ctx))

		// A canceled context (client disconnect) skips the save so the
		// record is never partially persisted.
		m.Save(r.Context(), sess)
	})
}
