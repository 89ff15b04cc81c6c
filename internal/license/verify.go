package license

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
)

// VerifyResult distinguishes a key mismatch from an internal verification
// fault, so callers can tell "wrong key" apart from "corrupt record".
type VerifyResult int

const (
	// NotVerified means the computed digest does not match the stored hash.
	NotVerified VerifyResult = iota
	// Verified means the presented key matches the stored hash.
	Verified
	// VerifyFailed means verification could not be performed at all.
	VerifyFailed
)

// VerifyKey checks a raw license key against its stored hash and salt.
// The stored hash is the std-Base64 encoding of SHA-256(rawKey + salt).
// Comparison is constant time. A record with an empty hash or salt cannot
// be verified and yields VerifyFailed; the caller decides how to surface
// that, but it must never be reported as a plain mismatch.
func VerifyKey(rawKey, storedHash, salt string) VerifyResult {
	if storedHash == "" || salt == "" {
		return VerifyFailed
	}

	digest := sha256.Sum256([]byte(rawKey + salt))
	computed := base64.StdEncoding.EncodeToString(digest[:])

	if subtle.ConstantTimeCompare([]byte(computed), []byte(storedHash)) == 1 {
		return Verified
	}
	return NotVerified
}
