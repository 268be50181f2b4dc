package twofa

import "errors"

var (
	// ErrAlreadyEnabled rejects setup attempts on accounts that already
	// have two-factor active. Re-provisioning would silently invalidate
	// the authenticator the user relies on.
	ErrAlreadyEnabled = errors.New("two-factor authentication is already enabled")

	// ErrNotEnabled rejects non-setup verification when the account has no
	// active secret.
	ErrNotEnabled = errors.New("two-factor authentication is not enabled")

	// ErrNoPendingSetup covers both a missing and an expired pending
	// secret; the client remedy is the same, start setup again.
	ErrNoPendingSetup = errors.New("no two-factor setup in progress")

	// ErrInvalidCode covers malformed input and a genuine mismatch alike,
	// so responses leak nothing about which one happened.
	ErrInvalidCode = errors.New("invalid verification code")

	// ErrStorageFailure wraps infrastructure errors. Handlers translate it
	// to a generic 500; the cause goes to logs only.
	ErrStorageFailure = errors.New("storage failure")
)
