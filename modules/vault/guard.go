package vault

// Decision is the outcome of a vault access check.
type Decision int

const (
	// Authorized grants access.
	Authorized Decision = iota
	// RequiresVerification means the account has two-factor enabled but
	// this session has not presented a valid code yet.
	RequiresVerification
)

// Authorize decides vault access. Accounts without two-factor pass
// through; enabling it is what opts the user into the extra gate.
func Authorize(twoFactorEnabled, sessionVerified bool) Decision {
	if twoFactorEnabled && !sessionVerified {
		return RequiresVerification
	}
	return Authorized
}
