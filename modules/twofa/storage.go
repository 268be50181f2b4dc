package twofa

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/contractvault/svc/auth"
)

// PendingSecret is a provisioned-but-unverified secret. Secret holds the
// AES-encrypted value; expiry is enforced by the service comparing
// ExpiresAt against its clock, not by the store.
type PendingSecret struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Secret    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Storage persists two-factor state. All secrets cross this boundary
// encrypted.
type Storage interface {
	// GetUser loads the user with their two-factor fields.
	GetUser(ctx context.Context, userID uuid.UUID) (*auth.User, error)

	// EnableTwoFactor activates the secret and removes the pending record
	// in one transaction. This is the only write path that flips
	// totp_enabled, which keeps the enabled-implies-secret invariant.
	EnableTwoFactor(ctx context.Context, userID uuid.UUID, encryptedSecret string) error

	// UpsertPendingSecret replaces any existing pending secret for the user.
	UpsertPendingSecret(ctx context.Context, userID uuid.UUID, encryptedSecret string, expiresAt time.Time) error

	// PendingSecret returns the user's current pending secret, expired or
	// not, or ErrNoPendingSetup when none exists.
	PendingSecret(ctx context.Context, userID uuid.UUID) (*PendingSecret, error)
}
