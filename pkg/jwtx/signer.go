package jwtx

import (
	"crypto/sha256"
	"encoding/base64"
)

// Signer is anything that can sign our credentials.
type Signer interface {
	Alg() string
	KID() string
	Sign(*Claims) (string, error)

	// VerifyKey is the key handed to the JWT parser for tokens carrying
	// this signer's kid.
	VerifyKey() any

	// PublicJWK returns the publishable key, or false for symmetric
	// signers whose key must never leave the process.
	PublicJWK() (JWK, bool)

	Validate() error
}

// NewSignerEdDSA creates an EdDSA signer from PKCS8 PEM bytes.
func NewSignerEdDSA(kid string, pemKey []byte) (Signer, error) {
	return newEdDSASigner(kid, pemKey)
}

// NewSignerES256 creates an ES256 signer from PKCS8 PEM bytes.
func NewSignerES256(kid string, pemKey []byte) (Signer, error) {
	return newES256Signer(kid, pemKey)
}

// NewSignerHS256 creates an HS256 signer from a shared secret of at least
// MinHMACSecretSize bytes.
func NewSignerHS256(kid string, secret []byte) (Signer, error) {
	return newHS256Signer(kid, secret)
}

// deriveKID builds a stable key id from key material so the same key keeps
// the same kid across restarts.
func deriveKID(material []byte) string {
	sum := sha256.Sum256(material)
	return "waggle-" + base64.RawURLEncoding.EncodeToString(sum[:9])
}
