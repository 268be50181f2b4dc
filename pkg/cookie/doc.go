// Package cookie provides an HTTP cookie manager with HMAC-SHA256 signing
// and key rotation. Signed cookies carry state the server must trust but
// not hide, like session tokens that are already random. Verification uses
// constant-time comparison.
package cookie
