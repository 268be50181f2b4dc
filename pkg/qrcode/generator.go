package qrcode

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

var (
	// ErrEmptyContent is returned when the content is empty or whitespace.
	ErrEmptyContent = errors.New("content cannot be empty")
	// ErrFailedToGenerate is returned when QR code encoding fails.
	ErrFailedToGenerate = errors.New("failed to generate QR code")
)

// defaultSize is the image edge in pixels when no size is given.
const defaultSize = 256

// GeneratePNG renders content as a QR code PNG. Medium error correction is
// enough for on-screen scanning by authenticator apps.
func GeneratePNG(content string, size int) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if size <= 0 {
		size = defaultSize
	}
	png, err := skipqrcode.Encode(content, skipqrcode.Medium, size)
	if err != nil {
		return nil, errors.Join(ErrFailedToGenerate, err)
	}
	return png, nil
}

// DataURI renders content as a QR code and returns it as a data:image/png
// URI, ready to drop into an <img src> attribute or a JSON response.
func DataURI(content string, size int) (string, error) {
	png, err := GeneratePNG(content, size)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("data:image/png;base64,%s", base64.StdEncoding.EncodeToString(png)), nil
}
