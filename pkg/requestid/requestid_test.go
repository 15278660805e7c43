package requestid_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eerick6/infanps/pkg/requestid"
)

func serveWithID(t *testing.T, clientID string) (string, *httptest.ResponseRecorder) {
	t.Helper()

	var ctxID string
	h := requestid.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxID = requestid.FromContext(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if clientID != "" {
		r.Header.Set(requestid.Header, clientID)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	return ctxID, w
}

func TestMiddleware_GeneratesID(t *testing.T) {
	t.Parallel()

	ctxID, w := serveWithID(t, "")
	require.NotEmpty(t, ctxID)
	_, err := uuid.Parse(ctxID)
	assert.NoError(t, err)
	assert.Equal(t, ctxID, w.Header().Get(requestid.Header))
}

func TestMiddleware_ReusesValidClientID(t *testing.T) {
	t.Parallel()

	ctxID, w := serveWithID(t, "client-supplied-id_01")
	assert.Equal(t, "client-supplied-id_01", ctxID)
	assert.Equal(t, "client-supplied-id_01", w.Header().Get(requestid.Header))
}

func TestMiddleware_ReplacesInvalidClientID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		id   string
	}{
		{"header injection", "abc\ndef"},
		{"spaces", "not a valid id"},
		{"too long", strings.Repeat("a", 129)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ctxID, _ := serveWithID(t, tt.id)
			assert.NotEqual(t, tt.id, ctxID)
			_, err := uuid.Parse(ctxID)
			assert.NoError(t, err)
		})
	}
}

func TestFromContext_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, requestid.FromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
}
