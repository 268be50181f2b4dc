package session

import (
	"net/http"
	"time"

	"github.com/dmitrymomot/contractvault/pkg/cookie"
)

// Transport defines how session tokens travel between client and server.
type Transport interface {
	// GetToken extracts the session token from the request.
	GetToken(r *http.Request) (string, error)

	// SetToken sends the session token in the response.
	SetToken(w http.ResponseWriter, token string, ttl time.Duration) error

	// ClearToken removes the session token from the response.
	ClearToken(w http.ResponseWriter) error
}

// CookieTransport carries the session token in a signed cookie. The token
// itself is random; the signature only stops clients from fabricating
// cookie values that hit the store.
type CookieTransport struct {
	cookieMgr  *cookie.Manager
	cookieName string
	secure     bool
}

// NewCookieTransport creates a cookie-based transport.
func NewCookieTransport(cookieMgr *cookie.Manager, cookieName string, secure bool) *CookieTransport {
	return &CookieTransport{
		cookieMgr:  cookieMgr,
		cookieName: cookieName,
		secure:     secure,
	}
}

func (t *CookieTransport) GetToken(r *http.Request) (string, error) {
	token, err := t.cookieMgr.GetSigned(r, t.cookieName)
	if err != nil {
		return "", ErrSessionNotFound
	}
	return token, nil
}

func (t *CookieTransport) SetToken(w http.ResponseWriter, token string, ttl time.Duration) error {
	opts := []cookie.Option{
		cookie.WithMaxAge(int(ttl.Seconds())),
		cookie.WithPath("/"),
		cookie.WithHTTPOnly(true),
		cookie.WithSameSite(http.SameSiteLaxMode),
	}
	if t.secure {
		opts = append(opts, cookie.WithSecure(true))
	}

	t.cookieMgr.SetSigned(w, t.cookieName, token, opts...)
	return nil
}

func (t *CookieTransport) ClearToken(w http.ResponseWriter) error {
	t.cookieMgr.Delete(w, t.cookieName)
	return nil
}
