package totp

// Config holds the TOTP subsystem configuration.
type Config struct {
	// EncryptionKey is a base64-encoded 32-byte key used to encrypt shared
	// secrets before they are persisted.
	EncryptionKey string `env:"TOTP_ENCRYPTION_KEY,required"`
}
