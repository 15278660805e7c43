// Package secure appends baseline hardening headers to every response.
package secure

import (
	"net/http"
	"strconv"
)

// Config controls the header set.
type Config struct {
	// ContentSecurityPolicy is sent as-is; empty disables the header.
	ContentSecurityPolicy string `env:"SECURE_CSP" envDefault:"default-src 'self'"`

	// HSTS enables Strict-Transport-Security. Only meaningful behind TLS,
	// so production deployments turn it on.
	HSTS bool `env:"SECURE_HSTS" envDefault:"false"`

	// HSTSMaxAge is the Strict-Transport-Security max-age in seconds.
	HSTSMaxAge int `env:"SECURE_HSTS_MAX_AGE" envDefault:"15552000"` // 180 days
}

// DefaultConfig returns the default header configuration.
func DefaultConfig() Config {
	return Config{
		ContentSecurityPolicy: "default-src 'self'",
		HSTSMaxAge:            15552000,
	}
}

// Headers returns middleware that sets the hardening headers on every
// response, with no per-route opt-out. It must run before any handler
// writes, since headers are frozen at the first body byte.
func Headers(cfg Config) func(http.Handler) http.Handler {
	hstsValue := "max-age=" + strconv.Itoa(cfg.HSTSMaxAge) + "; includeSubDomains"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("X-XSS-Protection", "0")
			if cfg.ContentSecurityPolicy != "" {
				h.Set("Content-Security-Policy", cfg.ContentSecurityPolicy)
			}
			if cfg.HSTS {
				h.Set("Strict-Transport-Security", hstsValue)
			}

			next.ServeHTTP(w, r)
		})
	}
}
