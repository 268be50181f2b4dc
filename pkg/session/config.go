package session

import "time"

// Config holds session manager settings.
type Config struct {
	CookieName      string        `env:"SESSION_COOKIE_NAME" envDefault:"cv_session"`
	TTL             time.Duration `env:"SESSION_TTL" envDefault:"1h"`            // Anonymous session lifetime.
	AuthTTL         time.Duration `env:"SESSION_AUTH_TTL" envDefault:"24h"`      // Authenticated session lifetime.
	SecureCookies   bool          `env:"SESSION_SECURE_COOKIES" envDefault:"false"`
	CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"5m"` // Memory store sweep interval.
}

// DefaultConfig returns the defaults used when no environment is loaded.
func DefaultConfig() Config {
	return Config{
		CookieName:      "cv_session",
		TTL:             time.Hour,
		AuthTTL:         24 * time.Hour,
		CleanupInterval: 5 * time.Minute,
	}
}
