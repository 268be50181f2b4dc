// Package twofa implements TOTP two-factor authentication for vault
// access: secret provisioning with QR codes, a pending-to-active setup
// state machine, and per-session code verification.
//
// A verified code is accepted again within its validity window; callers
// needing single-use semantics must layer replay tracking on top.
package twofa
