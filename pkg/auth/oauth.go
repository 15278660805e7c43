package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/Eerick6/infanps/pkg/logger"
)

// OAuthConfig holds provider settings for the OAuth strategy.
type OAuthConfig struct {
	ClientID     string   `env:"OAUTH_CLIENT_ID"`
	ClientSecret string   `env:"OAUTH_CLIENT_SECRET"`
	AuthURL      string   `env:"OAUTH_AUTH_URL"`
	TokenURL     string   `env:"OAUTH_TOKEN_URL"`
	UserInfoURL  string   `env:"OAUTH_USERINFO_URL"`
	RedirectURL  string   `env:"OAUTH_REDIRECT_URL"`
	Scopes       []string `env:"OAUTH_SCOPES" envSeparator:"," envDefault:"email"`
}

// Enabled reports whether the provider is configured at all.
func (c OAuthConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// OAuthStorage defines storage operations for the OAuth strategy.
type OAuthStorage interface {
	GetUserByEmail(ctx context.Context, email string) (*Identity, error)
	CreateUser(ctx context.Context, user *Identity) error
}

// OAuthStrategy exchanges an authorization code for a provider identity.
// It exists to keep the strategy set genuinely pluggable next to the local
// password check.
type OAuthStrategy struct {
	storage     OAuthStorage
	oauth2Cfg   *oauth2.Config
	userInfoURL string
	httpClient  *http.Client
	log         *slog.Logger
}

// OAuthOption configures the OAuth strategy.
type OAuthOption func(*OAuthStrategy)

// WithOAuthLogger sets a custom logger for the strategy.
func WithOAuthLogger(log *slog.Logger) OAuthOption {
	return func(s *OAuthStrategy) {
		s.log = log
	}
}

// WithOAuthHTTPClient overrides the HTTP client used for userinfo calls.
func WithOAuthHTTPClient(client *http.Client) OAuthOption {
	return func(s *OAuthStrategy) {
		s.httpClient = client
	}
}

// NewOAuthStrategy creates the OAuth strategy from provider configuration.
func NewOAuthStrategy(storage OAuthStorage, cfg OAuthConfig, opts ...OAuthOption) *OAuthStrategy {
	s := &OAuthStrategy{
		storage: storage,
		oauth2Cfg: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
		},
		userInfoURL: cfg.UserInfoURL,
		httpClient:  http.DefaultClient,
		log:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *OAuthStrategy) Name() string { return string(MethodOAuth) }

// AuthCodeURL builds the provider redirect URL for the given state.
func (s *OAuthStrategy) AuthCodeURL(state string) string {
	return s.oauth2Cfg.AuthCodeURL(state)
}

// userInfo is the subset of the provider's userinfo response we consume.
type userInfo struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Authenticate exchanges the authorization code and resolves (or creates)
// the matching local user record.
func (s *OAuthStrategy) Authenticate(ctx context.Context, creds Credentials) (*Identity, error) {
	if creds.Code == "" {
		return nil, ErrInvalidCredentials
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	token, err := s.oauth2Cfg.Exchange(ctx, creds.Code)
	if err != nil {
		// A rejected code is a credential problem, not an internal fault.
		return nil, ErrInvalidCredentials
	}

	info, err := s.fetchUserInfo(ctx, token)
	if err != nil {
		s.log.ErrorContext(ctx, "userinfo fetch failed",
			logger.Error(err),
			logger.Component("auth.oauth"),
		)
		return nil, errors.Join(ErrStrategyFailure, err)
	}
	if info.Email == "" {
		return nil, errors.Join(ErrStrategyFailure, errors.New("provider returned no email"))
	}

	email := normalizeEmail(info.Email)
	user, err := s.storage.GetUserByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, errors.Join(ErrStrategyFailure, err)
	}

	user = &Identity{
		ID:         uuid.New(),
		Email:      email,
		Name:       info.Name,
		AuthMethod: MethodOAuth,
		CreatedAt:  time.Now(),
	}
	if err := s.storage.CreateUser(ctx, user); err != nil {
		return nil, errors.Join(ErrStrategyFailure, err)
	}

	return user, nil
}

func (s *OAuthStrategy) fetchUserInfo(ctx context.Context, token *oauth2.Token) (*userInfo, error) {
	client := s.oauth2Cfg.Client(ctx, token)

	resp, err := client.Get(s.userInfoURL)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("userinfo endpoint returned " + resp.Status)
	}

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}
	return &info, nil
}

var _ Strategy = (*OAuthStrategy)(nil)
