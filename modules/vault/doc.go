// Package vault serves the document vault and guards it behind two-factor
// verification. The guard re-checks every request: an account with
// two-factor enabled needs a live, session-bound verification proof, which
// the twofa module issues after a successful code check.
package vault
