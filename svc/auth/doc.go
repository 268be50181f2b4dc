// Package auth owns the user record and the request authentication
// boundary. Sessions are resolved into a User exactly once, in the
// RequireUser middleware; everything downstream reads the user from the
// context and never touches session internals.
package auth
