package totp_test

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/contractvault/pkg/totp"
)

func TestEncryptDecryptSecret(t *testing.T) {
	t.Parallel()

	key, err := totp.GenerateEncryptionKey()
	require.NoError(t, err)
	require.Len(t, key, totp.KeySize)

	secret, err := totp.GenerateSecret()
	require.NoError(t, err)

	encrypted, err := totp.EncryptSecret(secret, key)
	require.NoError(t, err)
	assert.NotEqual(t, secret, encrypted)

	decrypted, err := totp.DecryptSecret(encrypted, key)
	require.NoError(t, err)
	assert.Equal(t, secret, decrypted)

	// Random nonce means two encryptions of the same value differ.
	again, err := totp.EncryptSecret(secret, key)
	require.NoError(t, err)
	assert.NotEqual(t, encrypted, again)
}

func TestEncryptSecret_InvalidKeyLength(t *testing.T) {
	t.Parallel()

	_, err := totp.EncryptSecret("whatever", []byte("short"))
	assert.ErrorIs(t, err, totp.ErrInvalidEncryptionKeyLength)
}

func TestDecryptSecret_Errors(t *testing.T) {
	t.Parallel()

	key, err := totp.GenerateEncryptionKey()
	require.NoError(t, err)

	t.Run("not base64", func(t *testing.T) {
		t.Parallel()
		_, err := totp.DecryptSecret("%%%", key)
		assert.ErrorIs(t, err, totp.ErrFailedToDecryptSecret)
	})

	t.Run("cipher too short", func(t *testing.T) {
		t.Parallel()
		_, err := totp.DecryptSecret(base64.StdEncoding.EncodeToString([]byte("ab")), key)
		assert.ErrorIs(t, err, totp.ErrInvalidCipherTooShort)
	})

	t.Run("wrong key", func(t *testing.T) {
		t.Parallel()
		other, err := totp.GenerateEncryptionKey()
		require.NoError(t, err)

		encrypted, err := totp.EncryptSecret("JBSWY3DPEHPK3PXP", key)
		require.NoError(t, err)

		_, err = totp.DecryptSecret(encrypted, other)
		assert.ErrorIs(t, err, totp.ErrFailedToDecryptSecret)
	})
}

func TestEncryptionKey(t *testing.T) {
	t.Parallel()

	t.Run("valid key", func(t *testing.T) {
		t.Parallel()
		encoded, err := totp.GenerateEncodedEncryptionKey()
		require.NoError(t, err)

		key, err := totp.EncryptionKey(totp.Config{EncryptionKey: encoded})
		require.NoError(t, err)
		assert.Len(t, key, totp.KeySize)
	})

	t.Run("empty key", func(t *testing.T) {
		t.Parallel()
		_, err := totp.EncryptionKey(totp.Config{})
		assert.ErrorIs(t, err, totp.ErrEncryptionKeyNotSet)
	})

	t.Run("wrong length", func(t *testing.T) {
		t.Parallel()
		short := base64.StdEncoding.EncodeToString([]byte("too short"))
		_, err := totp.EncryptionKey(totp.Config{EncryptionKey: short})
		assert.ErrorIs(t, err, totp.ErrInvalidEncryptionKeyLength)
	})
}
