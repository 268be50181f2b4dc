package session

import "context"

// Store persists sessions keyed by token.
type Store interface {
	// Create stores a new session.
	Create(ctx context.Context, session *Session) error

	// Get retrieves a session by token.
	Get(ctx context.Context, token string) (*Session, error)

	// Update replaces an existing session.
	Update(ctx context.Context, session *Session) error

	// Delete removes a session by token.
	Delete(ctx context.Context, token string) error

	// DeleteByUserID removes every session belonging to a user.
	DeleteByUserID(ctx context.Context, userID string) error
}
