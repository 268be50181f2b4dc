package blobstore

import "errors"

var (
	ErrNotFound   = errors.New("object not found")
	ErrInvalidKey = errors.New("invalid object key")
	ErrStorage    = errors.New("storage operation failed")
)
