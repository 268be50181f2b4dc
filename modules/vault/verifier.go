package vault

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/contractvault/pkg/cookie"
	"github.com/dmitrymomot/contractvault/pkg/token"
)

// verificationClaims binds the proof to one session so it dies with the
// session instead of outliving a logout.
type verificationClaims struct {
	SessionID uuid.UUID `json:"sid"`
	ExpiresAt int64     `json:"exp"`
}

// Verifier mints and checks the short-lived proof that a session passed a
// two-factor code check. The proof is an HMAC-signed token in its own
// cookie; nothing is persisted server-side.
type Verifier struct {
	cookies *cookie.Manager
	config  Config
	now     func() time.Time
}

// VerifierOption configures the Verifier.
type VerifierOption func(*Verifier)

// WithVerifierClock overrides the time source for tests.
func WithVerifierClock(now func() time.Time) VerifierOption {
	return func(v *Verifier) { v.now = now }
}

func NewVerifier(cookies *cookie.Manager, cfg Config, opts ...VerifierOption) *Verifier {
	v := &Verifier{cookies: cookies, config: cfg, now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Issue writes the verification cookie for the session. The token is
// already HMAC-signed, so it goes into a plain cookie.
func (v *Verifier) Issue(w http.ResponseWriter, sessionID uuid.UUID) {
	expiresAt := v.now().Add(v.config.VerificationTTL)

	signed, err := token.Generate(verificationClaims{
		SessionID: sessionID,
		ExpiresAt: expiresAt.Unix(),
	}, v.config.VerificationSecret)
	if err != nil {
		// JSON-encoding a claims struct cannot fail at runtime; losing the
		// cookie just means the user verifies again.
		return
	}

	opts := []cookie.Option{
		cookie.WithMaxAge(int(v.config.VerificationTTL.Seconds())),
		cookie.WithPath("/"),
		cookie.WithHTTPOnly(true),
		cookie.WithSameSite(http.SameSiteLaxMode),
	}
	if v.config.SecureCookies {
		opts = append(opts, cookie.WithSecure(true))
	}

	v.cookies.Set(w, v.config.VerificationCookie, signed, opts...)
}

// Verified reports whether the request carries a live proof for this
// session. Tokens minted for another session are rejected.
func (v *Verifier) Verified(r *http.Request, sessionID uuid.UUID) bool {
	raw, err := v.cookies.Get(r, v.config.VerificationCookie)
	if err != nil {
		return false
	}

	claims, err := token.Parse[verificationClaims](raw, v.config.VerificationSecret)
	if err != nil {
		return false
	}

	if claims.SessionID != sessionID {
		return false
	}
	return v.now().Unix() < claims.ExpiresAt
}

// Clear removes the verification cookie, e.g. on logout.
func (v *Verifier) Clear(w http.ResponseWriter) {
	v.cookies.Delete(w, v.config.VerificationCookie)
}
