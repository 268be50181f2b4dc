package vault

import "errors"

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidUpload    = errors.New("invalid upload")
)
