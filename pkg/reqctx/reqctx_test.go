package reqctx_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eerick6/infanps/pkg/auth"
	"github.com/Eerick6/infanps/pkg/flash"
	"github.com/Eerick6/infanps/pkg/reqctx"
	"github.com/Eerick6/infanps/pkg/session"
)

type stubResolver struct {
	mu    sync.Mutex
	users map[uuid.UUID]*auth.Identity
}

func (r *stubResolver) GetUserByID(_ context.Context, id uuid.UUID) (*auth.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	return user, nil
}

type noopTransport struct{}

func (noopTransport) GetToken(*http.Request) (string, error) {
	return "", session.ErrSessionNotFound
}
func (noopTransport) SetToken(http.ResponseWriter, string, time.Duration) {}
func (noopTransport) ClearToken(http.ResponseWriter)                      {}

func newService(t *testing.T, resolver *stubResolver) *auth.Service {
	t.Helper()
	store := session.NewMemoryStore(0)
	t.Cleanup(func() { _ = store.Close() })
	return auth.NewService(resolver, session.New(noopTransport{}, session.WithStore(store)))
}

func serveWithSession(t *testing.T, svc *auth.Service, sess *session.Session) *reqctx.Context {
	t.Helper()

	var got *reqctx.Context
	h := reqctx.Builder(svc, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = reqctx.MustFromContext(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if sess != nil {
		r = r.WithContext(session.WithSession(r.Context(), sess))
	}
	h.ServeHTTP(httptest.NewRecorder(), r)

	require.NotNil(t, got)
	return got
}

func TestBuilder_DrainsFlashIntoSnapshot(t *testing.T) {
	t.Parallel()

	svc := newService(t, &stubResolver{users: map[uuid.UUID]*auth.Identity{}})
	sess := session.NewSession("token-1", time.Hour)
	flash.Push(sess, flash.CategoryMessage, "hola")

	rc := serveWithSession(t, svc, sess)

	assert.Equal(t, []string{"hola"}, rc.Flash[flash.CategoryMessage])
	// The live queue is already empty; the snapshot is the only copy.
	assert.Empty(t, sess.Flash)
}

func TestBuilder_ResolvesCurrentUser(t *testing.T) {
	t.Parallel()

	user := &auth.Identity{ID: uuid.New(), Email: "ana@example.com", Name: "Ana"}
	svc := newService(t, &stubResolver{users: map[uuid.UUID]*auth.Identity{user.ID: user}})

	sess := session.NewSession("token-1", time.Hour)
	sess.SetUserID(user.ID)

	rc := serveWithSession(t, svc, sess)

	require.NotNil(t, rc.CurrentUser)
	assert.Equal(t, "Ana", rc.CurrentUser.Name)
}

func TestBuilder_AnonymousSession(t *testing.T) {
	t.Parallel()

	svc := newService(t, &stubResolver{users: map[uuid.UUID]*auth.Identity{}})
	rc := serveWithSession(t, svc, session.NewSession("token-1", time.Hour))

	assert.Nil(t, rc.CurrentUser)
	assert.NotNil(t, rc.Flash)
}

func TestBuilder_StaleIdentityKeyDetaches(t *testing.T) {
	t.Parallel()

	svc := newService(t, &stubResolver{users: map[uuid.UUID]*auth.Identity{}})
	sess := session.NewSession("token-1", time.Hour)
	sess.SetUserID(uuid.New())

	rc := serveWithSession(t, svc, sess)

	assert.Nil(t, rc.CurrentUser)
	assert.False(t, sess.IsAuthenticated(), "stale key must be cleared from the session")
}

func TestBuilder_NoSessionStillBuildsContext(t *testing.T) {
	t.Parallel()

	svc := newService(t, &stubResolver{users: map[uuid.UUID]*auth.Identity{}})
	rc := serveWithSession(t, svc, nil)

	assert.Nil(t, rc.CurrentUser)
	assert.NotNil(t, rc.Flash)
}
