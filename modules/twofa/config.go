package twofa

import "time"

// Config holds two-factor provisioning settings.
type Config struct {
	Issuer     string        `env:"TWOFA_ISSUER" envDefault:"ContractVault"`
	PendingTTL time.Duration `env:"TWOFA_PENDING_TTL" envDefault:"10m"` // How long a setup QR stays scannable.
	QRSize     int           `env:"TWOFA_QR_SIZE" envDefault:"256"`
}

// DefaultConfig returns the defaults used when no environment is loaded.
func DefaultConfig() Config {
	return Config{
		Issuer:     "ContractVault",
		PendingTTL: 10 * time.Minute,
		QRSize:     256,
	}
}
