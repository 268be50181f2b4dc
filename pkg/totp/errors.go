package totp

import "errors"

var (
	ErrFailedToGenerateSecret        = errors.New("failed to generate TOTP secret")
	ErrInvalidSecret                 = errors.New("invalid secret")
	ErrMissingSecret                 = errors.New("missing secret")
	ErrMissingAccountName            = errors.New("missing account name")
	ErrMissingIssuer                 = errors.New("missing issuer")
	ErrMalformedCode                 = errors.New("malformed code")
	ErrFailedToEncryptSecret         = errors.New("failed to encrypt TOTP secret")
	ErrFailedToDecryptSecret         = errors.New("failed to decrypt TOTP secret")
	ErrInvalidCipherTooShort         = errors.New("cipher text too short")
	ErrFailedToGenerateEncryptionKey = errors.New("failed to generate encryption key")
	ErrFailedToLoadEncryptionKey     = errors.New("failed to load encryption key")
	ErrInvalidEncryptionKeyLength    = errors.New("invalid encryption key length")
	ErrEncryptionKeyNotSet           = errors.New("TOTP encryption key not set")
)
