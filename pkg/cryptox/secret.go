package cryptox

import "strings"

// HashSecret produces the one-way, salted form of a bearer secret for
// storage. The secret is reduced to its SHA-256 fingerprint first so inputs
// of any length hash in full; the fingerprint then goes through the same
// peppered Argon2id as passwords.
func HashSecret(secret string) (string, error) {
	return HashPassword(FingerprintToken(secret))
}

// VerifySecret reports whether secret matches a HashSecret result. Only
// Argon2id hashes are accepted.
func VerifySecret(secret, encodedHash string) error {
	if !strings.HasPrefix(encodedHash, argon2Prefix) {
		return ErrUnsupportedHash
	}
	return verifyArgon2id(FingerprintToken(secret), encodedHash)
}
