package auth

import (
	"time"

	"github.com/google/uuid"
)

// User is an account holder. TOTPSecret holds the AES-encrypted active
// secret and is non-nil whenever TwoFactorEnabled is true.
type User struct {
	ID               uuid.UUID
	Email            string
	TwoFactorEnabled bool
	TOTPSecret       *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
