// Package blobstore abstracts document byte storage behind a small
// key-value interface with S3 and local-filesystem backends. Keys are
// slash-separated paths; traversal sequences are rejected up front.
package blobstore
