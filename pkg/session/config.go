package session

import "time"

// Config holds session configuration.
type Config struct {
	// CookieName matches the identifier cookie name used by the legacy
	// deployment so existing clients keep their sessions.
	CookieName string `env:"SESSION_COOKIE_NAME" envDefault:"session_cookie_name"`

	// TTL is the rolling session lifetime; every save pushes expiry forward.
	TTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	// CleanupInterval for expired sessions (0 to disable).
	CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"5m"`

	// SecureCookies enables the Secure flag on session cookies. Always on in
	// production deployments.
	SecureCookies bool `env:"SESSION_SECURE_COOKIES" envDefault:"false"`
}

// DefaultConfig returns default session configuration.
func DefaultConfig() Config {
	return Config{
		CookieName:      "session_cookie_name",
		TTL:             24 * time.Hour,
		CleanupInterval: 5 * time.Minute,
		SecureCookies:   false,
	}
}
