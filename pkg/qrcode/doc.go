// Package qrcode renders strings as QR code images. It exists so callers
// never touch the underlying encoder directly: the output is either raw PNG
// bytes or a base64 data URI suitable for embedding in HTML and JSON.
package qrcode
