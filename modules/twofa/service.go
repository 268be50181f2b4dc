package twofa

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/contractvault/pkg/email"
	"github.com/dmitrymomot/contractvault/pkg/logger"
	"github.com/dmitrymomot/contractvault/pkg/qrcode"
	"github.com/dmitrymomot/contractvault/pkg/totp"
)

// SetupResult is handed to the client to provision an authenticator app.
// Secret is the plain Base32 value for manual entry; it is never stored
// unencrypted.
type SetupResult struct {
	Secret        string
	QRCodeDataURI string
	OTPAuthURI    string
}

// Service implements the two-factor state machine: no secret, pending
// setup, active.
type Service struct {
	storage Storage
	encKey  []byte
	config  Config
	mailer  email.Sender
	log     *slog.Logger
	now     func() time.Time
}

// ServiceOption configures the Service.
type ServiceOption func(*Service)

// WithMailer enables the security notification sent after two-factor is
// activated. Without it, activation is silent.
func WithMailer(mailer email.Sender) ServiceOption {
	return func(s *Service) { s.mailer = mailer }
}

// WithLogger sets the service logger.
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) { s.log = log }
}

// WithClock overrides the time source. Tests use it to pin code windows
// and pending expiry.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// NewService creates the two-factor service. encKey must be a 32-byte
// AES-256 key; secrets never reach storage unencrypted.
func NewService(storage Storage, encKey []byte, cfg Config, opts ...ServiceOption) (*Service, error) {
	if len(encKey) != totp.KeySize {
		return nil, totp.ErrInvalidEncryptionKeyLength
	}

	s := &Service{
		storage: storage,
		encKey:  encKey,
		config:  cfg,
		log:     slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("twofa"))
	return s, nil
}

// BeginSetup provisions a fresh pending secret for the user and returns
// the material to display: the Base32 secret and a QR code of the
// otpauth:// URI. Calling it again before verification replaces the
// pending secret, so only the newest QR code works.
func (s *Service) BeginSetup(ctx context.Context, userID uuid.UUID) (*SetupResult, error) {
	user, err := s.storage.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.TwoFactorEnabled {
		return nil, ErrAlreadyEnabled
	}

	secret, err := totp.GenerateSecret()
	if err != nil {
		return nil, err
	}

	encrypted, err := totp.EncryptSecret(secret, s.encKey)
	if err != nil {
		return nil, err
	}

	expiresAt := s.now().Add(s.config.PendingTTL)
	if err := s.storage.UpsertPendingSecret(ctx, userID, encrypted, expiresAt); err != nil {
		return nil, err
	}

	uri, err := totp.ProvisioningURI(totp.URIParams{
		Secret:      secret,
		AccountName: user.Email,
		Issuer:      s.config.Issuer,
	})
	if err != nil {
		return nil, err
	}

	qr, err := qrcode.DataURI(uri, s.config.QRSize)
	if err != nil {
		return nil, err
	}

	return &SetupResult{
		Secret:        secret,
		QRCodeDataURI: qr,
		OTPAuthURI:    uri,
	}, nil
}

// Verify checks a 6-digit code against the user's secret. With isSetup
// the code is checked against the pending secret and, on success, the
// secret is promoted to active. Without it the code is checked against
// the active secret; the caller then marks the session verified.
func (s *Service) Verify(ctx context.Context, userID uuid.UUID, code string, isSetup bool) error {
	user, err := s.storage.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	if isSetup {
		return s.verifySetup(ctx, user.ID, user.Email, user.TwoFactorEnabled, code)
	}

	if !user.TwoFactorEnabled || user.TOTPSecret == nil {
		return ErrNotEnabled
	}
	return s.checkCode(*user.TOTPSecret, code)
}

func (s *Service) verifySetup(ctx context.Context, userID uuid.UUID, userEmail string, enabled bool, code string) error {
	if enabled {
		return ErrAlreadyEnabled
	}

	pending, err := s.storage.PendingSecret(ctx, userID)
	if err != nil {
		return err
	}
	if s.now().After(pending.ExpiresAt) {
		return ErrNoPendingSetup
	}

	if err := s.checkCode(pending.Secret, code); err != nil {
		return err
	}

	if err := s.storage.EnableTwoFactor(ctx, userID, pending.Secret); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "two-factor authentication enabled", logger.UserID(userID.String()))
	s.notifyEnabled(userEmail)
	return nil
}

// checkCode decrypts the stored secret and validates the code within the
// drift window. Malformed input and a mismatch produce the same error.
func (s *Service) checkCode(encryptedSecret, code string) error {
	secret, err := totp.DecryptSecret(encryptedSecret, s.encKey)
	if err != nil {
		return err
	}

	ok, offset, err := totp.ValidateAt(secret, code, s.now(), totp.DefaultWindow)
	if err != nil {
		if errors.Is(err, totp.ErrMalformedCode) {
			return ErrInvalidCode
		}
		return err
	}
	if !ok {
		return ErrInvalidCode
	}

	if offset != 0 {
		s.log.Debug("totp code matched with clock drift", slog.Int("step_offset", offset))
	}
	return nil
}

// notifyEnabled sends the security email in the background. Delivery
// failures must not fail the verification that already succeeded.
func (s *Service) notifyEnabled(userEmail string) {
	if s.mailer == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		err := s.mailer.Send(ctx, email.Message{
			To:      userEmail,
			Subject: "Two-factor authentication enabled",
			HTMLBody: fmt.Sprintf(
				"<p>Two-factor authentication was enabled on your %s account. "+
					"If this wasn't you, contact support immediately.</p>",
				s.config.Issuer),
			Tag: "twofa-enabled",
		})
		if err != nil {
			s.log.Error("failed to send two-factor notification", logger.Error(err))
		}
	}()
}
