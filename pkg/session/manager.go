package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/google/uuid"
)

// Manager coordinates the store and the transport.
type Manager struct {
	store     Store
	transport Transport
	config    Config
}

// Option configures the Manager.
type Option func(*Manager)

// WithStore sets the session store. Defaults to an in-memory store.
func WithStore(store Store) Option {
	return func(m *Manager) { m.store = store }
}

// WithTransport sets the token transport. Required; there is no safe default
// without a cookie manager.
func WithTransport(transport Transport) Option {
	return func(m *Manager) { m.transport = transport }
}

// WithConfig sets the session configuration.
func WithConfig(cfg Config) Option {
	return func(m *Manager) { m.config = cfg }
}

// New creates a session manager. Panics without a transport: serving
// sessions with no way to hand out tokens is a wiring bug.
func New(opts ...Option) *Manager {
	m := &Manager{config: DefaultConfig()}

	for _, opt := range opts {
		opt(m)
	}

	if m.store == nil {
		m.store = NewMemoryStore(m.config.CleanupInterval)
	}
	if m.transport == nil {
		panic("session: transport is required")
	}

	return m
}

// Get retrieves the request's session, failing if absent or expired.
func (m *Manager) Get(ctx context.Context, r *http.Request) (*Session, error) {
	token, err := m.transport.GetToken(r)
	if err != nil {
		return nil, err
	}

	session, err := m.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	if session.IsExpired() {
		return nil, ErrSessionExpired
	}

	return session, nil
}

// Authenticate starts an authenticated session for userID. Any existing
// session is destroyed first so the token rotates on login, which blocks
// session fixation.
func (m *Manager) Authenticate(ctx context.Context, w http.ResponseWriter, r *http.Request, userID uuid.UUID) (*Session, error) {
	if old, err := m.Get(ctx, r); err == nil {
		_ = m.store.Delete(ctx, old.Token)
	}

	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	session := NewSession(token, &userID, m.config.AuthTTL)
	if err := m.store.Create(ctx, session); err != nil {
		return nil, err
	}

	if err := m.transport.SetToken(w, token, m.config.AuthTTL); err != nil {
		_ = m.store.Delete(ctx, token)
		return nil, err
	}

	return session, nil
}

// Destroy deletes the session and clears the client token.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if token, err := m.transport.GetToken(r); err == nil && token != "" {
		_ = m.store.Delete(ctx, token)
	}
	return m.transport.ClearToken(w)
}

// DestroyAllForUser deletes every session belonging to a user, e.g. after a
// credential change.
func (m *Manager) DestroyAllForUser(ctx context.Context, userID uuid.UUID) error {
	return m.store.DeleteByUserID(ctx, userID.String())
}

// Middleware resolves the session once per request and stores it in the
// context. Requests without a valid session pass through unchanged.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := m.Get(r.Context(), r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		// Best effort; a lost activity timestamp is not worth failing the
		// request over.
		session.Touch()
		_ = m.store.Update(r.Context(), session)

		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
	})
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrTokenGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
