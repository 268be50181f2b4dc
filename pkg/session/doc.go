// Package session implements cookie-token browser sessions. A random
// 256-bit token travels in a signed cookie and keys the server-side
// record, which lives in memory for development or Redis for production.
// Login rotates the token, so a session fixed before authentication never
// survives it.
//
// The session deliberately carries no application data beyond the user ID.
// Anything else, like the vault verification flag, is issued as its own
// scoped credential so it can expire independently of the login.
package session
