// Package totp implements time-based one-time passwords (RFC 6238) on top
// of the RFC 4226 HOTP algorithm, plus the helpers an enrollment flow needs:
// secret generation, provisioning URI construction for authenticator apps,
// and AES-256-GCM encryption of secrets at rest.
//
// Code validation tolerates clock drift between client and server by
// checking a small window of adjacent 30-second time steps. ValidateAt
// reports which step matched so callers can log drift. A code that matches
// no step is a normal negative result, not an error.
//
// The package deliberately has no replay protection: a code stays valid for
// the whole drift window even after a successful check. Callers that need
// single-use semantics must track the last accepted time step per user.
//
// # Usage
//
//	secret, _ := totp.GenerateSecret()
//
//	uri, _ := totp.ProvisioningURI(totp.URIParams{
//		Secret:      secret,
//		AccountName: "alice@example.com",
//		Issuer:      "ContractVault",
//	})
//	// render uri as a QR code, then check the user's first code:
//	ok, offset, _ := totp.Validate(secret, "123456")
//	_ = offset // 0 when the clocks agree
//
// Secrets must never be stored in plain text; use EncryptSecret with the
// key loaded via EncryptionKey(cfg) before writing to the database.
package totp
