package qrcode_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/contractvault/pkg/qrcode"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestGeneratePNG(t *testing.T) {
	t.Parallel()

	png, err := qrcode.GeneratePNG("otpauth://totp/ContractVault:alice@example.com?secret=JBSWY3DPEHPK3PXP", 256)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic))
}

func TestGeneratePNG_DefaultSize(t *testing.T) {
	t.Parallel()

	png, err := qrcode.GeneratePNG("hello", 0)
	require.NoError(t, err)
	assert.NotEmpty(t, png)
}

func TestGeneratePNG_EmptyContent(t *testing.T) {
	t.Parallel()

	_, err := qrcode.GeneratePNG("   ", 256)
	assert.ErrorIs(t, err, qrcode.ErrEmptyContent)
}

func TestDataURI(t *testing.T) {
	t.Parallel()

	uri, err := qrcode.DataURI("hello", 128)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))
}
