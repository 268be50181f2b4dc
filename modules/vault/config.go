package vault

import "time"

// Config holds vault guard and document settings.
type Config struct {
	// VerificationSecret signs the per-session verification token.
	VerificationSecret string `env:"VAULT_VERIFICATION_SECRET,required"`

	VerificationCookie string        `env:"VAULT_VERIFICATION_COOKIE" envDefault:"cv_vault_verified"`
	VerificationTTL    time.Duration `env:"VAULT_VERIFICATION_TTL" envDefault:"15m"`
	SecureCookies      bool          `env:"VAULT_SECURE_COOKIES" envDefault:"false"`
	MaxUploadBytes     int64         `env:"VAULT_MAX_UPLOAD_BYTES" envDefault:"26214400"` // 25 MiB
}
