package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eerick6/infanps/pkg/auth"
)

// newProvider serves the token and userinfo endpoints of a minimal OAuth
// provider. Only validCode is exchangeable; userinfo answers with infoStatus
// and the given payload.
func newProvider(t *testing.T, validCode string, infoStatus int, info map[string]string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostFormValue("code") != validCode {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"provider-access-token","token_type":"bearer"}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if infoStatus != http.StatusOK {
			w.WriteHeader(infoStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(info))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newOAuthStrategy(storage auth.OAuthStorage, srv *httptest.Server) *auth.OAuthStrategy {
	return auth.NewOAuthStrategy(storage, auth.OAuthConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		AuthURL:      srv.URL + "/auth",
		TokenURL:     srv.URL + "/token",
		UserInfoURL:  srv.URL + "/userinfo",
		RedirectURL:  "http://app.test/auth/oauth/callback",
		Scopes:       []string{"email"},
	})
}

func TestOAuthStrategy_AuthCodeURL(t *testing.T) {
	t.Parallel()

	srv := newProvider(t, "unused", http.StatusOK, nil)
	strategy := newOAuthStrategy(newMemStorage(), srv)

	u := strategy.AuthCodeURL("nonce-123")
	assert.Contains(t, u, srv.URL+"/auth")
	assert.Contains(t, u, "state=nonce-123")
	assert.Contains(t, u, "client_id=client-id")
}

func TestOAuthStrategy_AuthenticateCreatesUser(t *testing.T) {
	t.Parallel()

	srv := newProvider(t, "good-code", http.StatusOK, map[string]string{
		"email": "Nueva@Example.COM",
		"name":  "Nueva Usuaria",
	})
	storage := newMemStorage()
	strategy := newOAuthStrategy(storage, srv)

	identity, err := strategy.Authenticate(context.Background(), auth.Credentials{Code: "good-code"})
	require.NoError(t, err)

	assert.Equal(t, "nueva@example.com", identity.Email)
	assert.Equal(t, "Nueva Usuaria", identity.Name)
	assert.Equal(t, auth.MethodOAuth, identity.AuthMethod)

	stored, err := storage.GetUserByID(context.Background(), identity.ID)
	require.NoError(t, err)
	assert.Equal(t, identity.Email, stored.Email)
}

func TestOAuthStrategy_AuthenticateResolvesExistingUser(t *testing.T) {
	t.Parallel()

	srv := newProvider(t, "good-code", http.StatusOK, map[string]string{
		"email": "ana@example.com",
		"name":  "Ana",
	})
	storage := newMemStorage()
	existing := &auth.Identity{
		ID:         uuid.New(),
		Email:      "ana@example.com",
		Name:       "Ana",
		AuthMethod: auth.MethodLocal,
		CreatedAt:  time.Now(),
	}
	require.NoError(t, storage.CreateUser(context.Background(), existing))

	strategy := newOAuthStrategy(storage, srv)

	identity, err := strategy.Authenticate(context.Background(), auth.Credentials{Code: "good-code"})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, identity.ID, "a known email must not spawn a second account")
}

func TestOAuthStrategy_AuthenticateRejections(t *testing.T) {
	t.Parallel()

	srv := newProvider(t, "good-code", http.StatusOK, map[string]string{"email": "ana@example.com"})
	strategy := newOAuthStrategy(newMemStorage(), srv)

	t.Run("empty code", func(t *testing.T) {
		t.Parallel()
		_, err := strategy.Authenticate(context.Background(), auth.Credentials{})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("rejected code", func(t *testing.T) {
		t.Parallel()
		_, err := strategy.Authenticate(context.Background(), auth.Credentials{Code: "stolen-code"})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})
}

func TestOAuthStrategy_AuthenticateUserInfoFault(t *testing.T) {
	t.Parallel()

	srv := newProvider(t, "good-code", http.StatusInternalServerError, nil)
	strategy := newOAuthStrategy(newMemStorage(), srv)

	_, err := strategy.Authenticate(context.Background(), auth.Credentials{Code: "good-code"})
	assert.ErrorIs(t, err, auth.ErrStrategyFailure)
	assert.NotErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestOAuthStrategy_AuthenticateMissingEmail(t *testing.T) {
	t.Parallel()

	srv := newProvider(t, "good-code", http.StatusOK, map[string]string{"name": "Sin Correo"})
	strategy := newOAuthStrategy(newMemStorage(), srv)

	_, err := strategy.Authenticate(context.Background(), auth.Credentials{Code: "good-code"})
	assert.ErrorIs(t, err, auth.ErrStrategyFailure)
}
