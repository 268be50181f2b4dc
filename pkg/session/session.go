package session

import (
	"time"

	"github.com/google/uuid"
)

// Session is a browser session. UserID is nil until the session is
// authenticated by the login flow.
type Session struct {
	ID             uuid.UUID  `json:"id"`
	Token          string     `json:"token"`
	UserID         *uuid.UUID `json:"user_id,omitempty"`
	ExpiresAt      time.Time  `json:"expires_at"`
	LastActivityAt time.Time  `json:"last_activity_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

// NewSession creates a session valid for ttl.
func NewSession(token string, userID *uuid.UUID, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:             uuid.New(),
		Token:          token,
		UserID:         userID,
		ExpiresAt:      now.Add(ttl),
		LastActivityAt: now,
		CreatedAt:      now,
	}
}

// IsAuthenticated reports whether the session belongs to a logged-in user.
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.UserID != nil
}

// IsExpired reports whether the session has passed its expiry.
func (s *Session) IsExpired() bool {
	return s != nil && time.Now().After(s.ExpiresAt)
}

// Touch updates the last activity time.
func (s *Session) Touch() {
	if s != nil {
		s.LastActivityAt = time.Now()
	}
}
