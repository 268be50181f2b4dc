package totp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"encoding/base32"
	"errors"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const (
	// DefaultDigits is the standard 6-digit code length.
	DefaultDigits = 6
	// DefaultPeriod is the 30-second time step (RFC 6238 standard).
	DefaultPeriod = 30
	// DefaultWindow accepts one step of clock drift on each side.
	DefaultWindow = 1
	// DefaultAlgorithm is HMAC-SHA1 (RFC 6238 standard).
	DefaultAlgorithm = "SHA1"

	// secretLength is the raw secret size in bytes. 160 bits per the
	// RFC 4226 recommendation.
	secretLength = 20
)

// SecretKeyRegex matches unpadded Base32: uppercase A-Z and digits 2-7.
var SecretKeyRegex = regexp.MustCompile("^[A-Z2-7]+$")

var b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

// GenerateSecret returns a new Base32-encoded shared secret. The encoding
// uses no padding so the value round-trips exactly through DecodeSecret and
// types cleanly into authenticator apps.
func GenerateSecret() (string, error) {
	secret := make([]byte, secretLength)
	if _, err := rand.Read(secret); err != nil {
		return "", errors.Join(ErrFailedToGenerateSecret, err)
	}
	return b32.EncodeToString(secret), nil
}

// DecodeSecret decodes a Base32 shared secret into key bytes.
func DecodeSecret(secret string) ([]byte, error) {
	secret = strings.TrimSpace(strings.ToUpper(secret))
	if !SecretKeyRegex.MatchString(secret) {
		return nil, ErrInvalidSecret
	}
	key, err := b32.DecodeString(secret)
	if err != nil {
		return nil, errors.Join(ErrInvalidSecret, err)
	}
	return key, nil
}

// CodeAt computes the 6-digit code for the time step containing t.
func CodeAt(secret string, t time.Time) (string, error) {
	key, err := DecodeSecret(secret)
	if err != nil {
		return "", err
	}
	counter := t.Unix() / int64(DefaultPeriod)
	return fmt.Sprintf("%0*d", DefaultDigits, hotp(key, counter, DefaultDigits)), nil
}

// Code computes the code for the current time step.
func Code(secret string) (string, error) {
	return CodeAt(secret, time.Now())
}

// ValidateAt checks code against the time step containing t plus window
// steps on each side. A non-match is a normal outcome, not an error: ok is
// false and err is nil. On a match, offset reports which step matched in
// the range [-window, window], 0 being the current step.
func ValidateAt(secret, code string, t time.Time, window int) (ok bool, offset int, err error) {
	key, err := DecodeSecret(secret)
	if err != nil {
		return false, 0, err
	}

	code = strings.TrimSpace(code)
	if !codeRegex.MatchString(code) {
		return false, 0, ErrMalformedCode
	}

	if window < 0 {
		window = DefaultWindow
	}

	counter := t.Unix() / int64(DefaultPeriod)
	// Check the current step first so the reported offset prefers an exact
	// clock match over a drifted one.
	for _, i := range candidateOffsets(window) {
		candidate := fmt.Sprintf("%0*d", DefaultDigits, hotp(key, counter+int64(i), DefaultDigits))
		if hmac.Equal([]byte(candidate), []byte(code)) {
			return true, i, nil
		}
	}

	return false, 0, nil
}

// Validate checks code against the current time with the default drift window.
func Validate(secret, code string) (bool, int, error) {
	return ValidateAt(secret, code, time.Now(), DefaultWindow)
}

var codeRegex = regexp.MustCompile(fmt.Sprintf(`^\d{%d}$`, DefaultDigits))

// candidateOffsets returns 0, -1, +1, -2, +2, ... up to the window size.
func candidateOffsets(window int) []int {
	offsets := []int{0}
	for i := 1; i <= window; i++ {
		offsets = append(offsets, -i, i)
	}
	return offsets
}

// hotp implements the RFC 4226 HMAC-based one-time password algorithm:
// big-endian 8-byte counter, HMAC-SHA1, dynamic truncation, modulo 10^digits.
func hotp(key []byte, counter int64, digits int) int {
	counterBytes := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		counterBytes[i] = byte(counter & 0xff)
		counter >>= 8
	}

	mac := hmac.New(sha1.New, key)
	mac.Write(counterBytes)
	hash := mac.Sum(nil)

	// Dynamic truncation: low 4 bits of the last byte select the offset,
	// the MSB is cleared to keep the value positive.
	off := hash[len(hash)-1] & 0x0f
	code := (int(hash[off]&0x7f) << 24) |
		(int(hash[off+1]&0xff) << 16) |
		(int(hash[off+2]&0xff) << 8) |
		int(hash[off+3]&0xff)

	return code % int(math.Pow10(digits))
}

// URIParams contains the parameters for provisioning URI generation.
type URIParams struct {
	Secret      string // Base32-encoded shared secret (required)
	AccountName string // User identifier like email (required)
	Issuer      string // Service name displayed in authenticator apps (required)
	Algorithm   string // HMAC algorithm (optional, defaults to SHA1)
	Digits      int    // Code length (optional, defaults to 6)
	Period      int    // Time step in seconds (optional, defaults to 30)
}

func (p URIParams) validate() error {
	if p.Secret == "" {
		return ErrMissingSecret
	}
	if !SecretKeyRegex.MatchString(p.Secret) {
		return ErrInvalidSecret
	}
	if p.AccountName == "" {
		return ErrMissingAccountName
	}
	if p.Issuer == "" {
		return ErrMissingIssuer
	}
	return nil
}

func (p URIParams) withDefaults() URIParams {
	if p.Algorithm == "" {
		p.Algorithm = DefaultAlgorithm
	}
	if p.Digits == 0 {
		p.Digits = DefaultDigits
	}
	if p.Period == 0 {
		p.Period = DefaultPeriod
	}
	return p
}

// ProvisioningURI builds a key URI in the form consumed by authenticator
// apps (otpauth://totp/Issuer:account?secret=...). The format follows
// https://github.com/google/google-authenticator/wiki/Key-Uri-Format
func ProvisioningURI(params URIParams) (string, error) {
	if err := params.validate(); err != nil {
		return "", err
	}

	params = params.withDefaults()

	label := fmt.Sprintf("%s:%s",
		url.PathEscape(params.Issuer),
		url.PathEscape(params.AccountName),
	)

	query := url.Values{}
	query.Set("secret", params.Secret)
	query.Set("issuer", params.Issuer)
	query.Set("algorithm", params.Algorithm)
	query.Set("digits", fmt.Sprintf("%d", params.Digits))
	query.Set("period", fmt.Sprintf("%d", params.Period))

	return fmt.Sprintf("otpauth://totp/%s?%s", label, query.Encode()), nil
}
