package totp_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/contractvault/pkg/totp"
)

func TestGenerateSecret(t *testing.T) {
	t.Parallel()

	secret, err := totp.GenerateSecret()
	require.NoError(t, err)
	assert.NotEmpty(t, secret)
	assert.Regexp(t, totp.SecretKeyRegex, secret)

	// Base32 round-trip must be exact: 20 bytes in, 20 bytes out.
	key, err := totp.DecodeSecret(secret)
	require.NoError(t, err)
	assert.Len(t, key, 20)

	other, err := totp.GenerateSecret()
	require.NoError(t, err)
	assert.NotEqual(t, secret, other)
}

func TestDecodeSecret(t *testing.T) {
	t.Parallel()

	t.Run("rejects non-base32 input", func(t *testing.T) {
		t.Parallel()
		_, err := totp.DecodeSecret("not-base32!@#$")
		assert.ErrorIs(t, err, totp.ErrInvalidSecret)
	})

	t.Run("normalizes case and whitespace", func(t *testing.T) {
		t.Parallel()
		upper, err := totp.DecodeSecret("JBSWY3DPEHPK3PXP")
		require.NoError(t, err)
		lower, err := totp.DecodeSecret("  jbswy3dpehpk3pxp ")
		require.NoError(t, err)
		assert.Equal(t, upper, lower)
	})
}

func TestCodeAt(t *testing.T) {
	t.Parallel()

	// RFC 6238 appendix B test vector, truncated from 8 to 6 digits.
	// Secret is "12345678901234567890" in base32.
	secret := "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"

	code, err := totp.CodeAt(secret, time.Unix(59, 0))
	require.NoError(t, err)
	assert.Equal(t, "287082", code)

	code, err = totp.CodeAt(secret, time.Unix(1111111109, 0))
	require.NoError(t, err)
	assert.Equal(t, "081804", code)

	// Codes within a single 30-second step are stable.
	a, err := totp.CodeAt(secret, time.Unix(1111111100, 0))
	require.NoError(t, err)
	b, err := totp.CodeAt(secret, time.Unix(1111111109, 0))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestValidateAt(t *testing.T) {
	t.Parallel()

	secret, err := totp.GenerateSecret()
	require.NoError(t, err)

	now := time.Unix(1700000015, 0)

	t.Run("current step matches with offset zero", func(t *testing.T) {
		t.Parallel()
		code, err := totp.CodeAt(secret, now)
		require.NoError(t, err)

		ok, offset, err := totp.ValidateAt(secret, code, now, 1)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 0, offset)
	})

	t.Run("previous step matches with offset -1", func(t *testing.T) {
		t.Parallel()
		code, err := totp.CodeAt(secret, now.Add(-30*time.Second))
		require.NoError(t, err)

		ok, offset, err := totp.ValidateAt(secret, code, now, 1)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, -1, offset)
	})

	t.Run("next step matches with offset +1", func(t *testing.T) {
		t.Parallel()
		code, err := totp.CodeAt(secret, now.Add(30*time.Second))
		require.NoError(t, err)

		ok, offset, err := totp.ValidateAt(secret, code, now, 1)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 1, offset)
	})

	t.Run("step outside the window fails", func(t *testing.T) {
		t.Parallel()
		code, err := totp.CodeAt(secret, now.Add(-2*30*time.Second))
		require.NoError(t, err)

		ok, _, err := totp.ValidateAt(secret, code, now, 1)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("mismatch is not an error", func(t *testing.T) {
		t.Parallel()
		wrong := "000000"
		for _, d := range []time.Duration{-30 * time.Second, 0, 30 * time.Second} {
			code, err := totp.CodeAt(secret, now.Add(d))
			require.NoError(t, err)
			if code == wrong {
				t.Skip("generated secret collides with the canary code")
			}
		}

		ok, offset, err := totp.ValidateAt(secret, wrong, now, 1)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Zero(t, offset)
	})

	t.Run("malformed code", func(t *testing.T) {
		t.Parallel()
		for _, code := range []string{"", "12345", "1234567", "12345a"} {
			ok, _, err := totp.ValidateAt(secret, code, now, 1)
			assert.ErrorIs(t, err, totp.ErrMalformedCode)
			assert.False(t, ok)
		}
	})

	t.Run("invalid secret", func(t *testing.T) {
		t.Parallel()
		ok, _, err := totp.ValidateAt("not a secret", "123456", now, 1)
		assert.ErrorIs(t, err, totp.ErrInvalidSecret)
		assert.False(t, ok)
	})
}

func TestProvisioningURI(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		params  totp.URIParams
		want    string
		wantErr error
	}{
		{
			name: "defaults applied",
			params: totp.URIParams{
				Secret:      "JBSWY3DPEHPK3PXP",
				AccountName: "alice@example.com",
				Issuer:      "ContractVault",
			},
			want: "otpauth://totp/ContractVault:alice@example.com?algorithm=SHA1&digits=6&issuer=ContractVault&period=30&secret=JBSWY3DPEHPK3PXP",
		},
		{
			name: "issuer with spaces is escaped",
			params: totp.URIParams{
				Secret:      "JBSWY3DPEHPK3PXP",
				AccountName: "bob+legal@example.com",
				Issuer:      "Contract Vault",
			},
			want: "otpauth://totp/Contract%20Vault:bob+legal@example.com?algorithm=SHA1&digits=6&issuer=Contract+Vault&period=30&secret=JBSWY3DPEHPK3PXP",
		},
		{
			name:    "missing secret",
			params:  totp.URIParams{AccountName: "a@b.c", Issuer: "X"},
			wantErr: totp.ErrMissingSecret,
		},
		{
			name:    "missing account name",
			params:  totp.URIParams{Secret: "JBSWY3DPEHPK3PXP", Issuer: "X"},
			wantErr: totp.ErrMissingAccountName,
		},
		{
			name:    "missing issuer",
			params:  totp.URIParams{Secret: "JBSWY3DPEHPK3PXP", AccountName: "a@b.c"},
			wantErr: totp.ErrMissingIssuer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := totp.ProvisioningURI(tt.params)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateRoundTrip(t *testing.T) {
	t.Parallel()

	// Property: for any secret and time, the code computed for that time
	// validates at that time with offset 0.
	for range 10 {
		secret, err := totp.GenerateSecret()
		require.NoError(t, err)

		at := time.Unix(int64(1600000000+len(secret)*7919), 0)
		code, err := totp.CodeAt(secret, at)
		require.NoError(t, err)

		ok, offset, err := totp.ValidateAt(secret, code, at, 1)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, 0, offset)
	}
}
