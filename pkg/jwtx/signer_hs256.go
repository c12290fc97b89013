package jwtx

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// MinHMACSecretSize is the shortest HS256 secret we accept (256 bits).
const MinHMACSecretSize = 32

// HS256Signer signs credentials with a shared HMAC-SHA256 secret. The same
// secret verifies, so it is never published.
type HS256Signer struct {
	kid    string
	secret []byte
}

func newHS256Signer(kid string, secret []byte) (*HS256Signer, error) {
	if len(secret) < MinHMACSecretSize {
		return nil, fmt.Errorf("jwtx: HS256 secret must be at least %d bytes, got %d", MinHMACSecretSize, len(secret))
	}
	if kid == "" {
		kid = deriveKID(append([]byte("hs256:"), secret...))
	}
	key := make([]byte, len(secret))
	copy(key, secret)
	return &HS256Signer{kid: kid, secret: key}, nil
}

func (s *HS256Signer) Alg() string    { return AlgorithmHS256 }
func (s *HS256Signer) KID() string    { return s.kid }
func (s *HS256Signer) VerifyKey() any { return s.secret }

func (s *HS256Signer) Sign(claims *Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	t.Header["kid"] = s.kid
	return t.SignedString(s.secret)
}

func (s *HS256Signer) PublicJWK() (JWK, bool) { return JWK{}, false }

func (s *HS256Signer) Validate() error {
	if len(s.secret) < MinHMACSecretSize {
		return fmt.Errorf("jwtx: HS256 secret shorter than %d bytes", MinHMACSecretSize)
	}
	return nil
}
