// Package token creates and verifies HMAC-signed payload tokens. A token
// is two base64url segments, payload and SHA-256 signature, joined by a
// dot. Unlike a full JWT there is no header and no algorithm negotiation:
// the verifier dictates the key and the algorithm, which removes a class of
// downgrade bugs. Expiry is the caller's concern; embed a timestamp in the
// payload and check it after Parse.
package token
