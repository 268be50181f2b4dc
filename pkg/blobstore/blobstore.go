package blobstore

import (
	"context"
	"io"
	"strings"
)

// Storage stores raw document bytes under opaque keys. Metadata lives in
// the database; the blob layer only moves bytes.
type Storage interface {
	// Put writes the object, replacing any existing one under the key.
	Put(ctx context.Context, key string, r io.Reader, contentType string) error

	// Get opens the object for reading. The caller closes the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the object. Deleting a missing key returns ErrNotFound.
	Delete(ctx context.Context, key string) error

	// Exists reports whether the key holds an object.
	Exists(ctx context.Context, key string) (bool, error)
}

// validateKey rejects empty keys and path traversal. Keys are
// slash-separated segments like "users/<id>/documents/<id>".
func validateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	return nil
}
