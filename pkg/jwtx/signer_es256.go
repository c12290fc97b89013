package jwtx

import (
	"crypto/ecdsa"
	"crypto/x509"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ES256Signer signs credentials with ECDSA P-256 and SHA-256.
type ES256Signer struct {
	kid string
	key *ecdsa.PrivateKey
}

// newES256Signer loads an ECDSA private key from PKCS8 PEM bytes. An empty
// kid is derived from the public point.
func newES256Signer(kid string, pemKey []byte) (*ES256Signer, error) {
	priv, err := parsePKCS8(pemKey, "ES256")
	if err != nil {
		return nil, err
	}

	key, ok := priv.(*ecdsa.PrivateKey)
	if !ok {
		return nil, errors.New("jwtx: not ECDSA private key")
	}

	if kid == "" {
		der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
		if err != nil {
			return nil, fmt.Errorf("jwtx: marshal ECDSA public key: %w", err)
		}
		kid = deriveKID(der)
	}
	return &ES256Signer{kid: kid, key: key}, nil
}

func (s *ES256Signer) Alg() string    { return AlgorithmES256 }
func (s *ES256Signer) KID() string    { return s.kid }
func (s *ES256Signer) VerifyKey() any { return &s.key.PublicKey }

func (s *ES256Signer) Sign(claims *Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	t.Header["kid"] = s.kid
	return t.SignedString(s.key)
}

func (s *ES256Signer) PublicJWK() (JWK, bool) {
	return NewES256JWK(s.kid, "sig", AlgorithmES256, &s.key.PublicKey), true
}

// Validate checks we hold a P-256 key.
func (s *ES256Signer) Validate() error {
	if s.key == nil {
		return errors.New("jwtx: nil ECDSA key")
	}
	if name := s.key.Curve.Params().Name; name != "P-256" {
		return fmt.Errorf("jwtx: expected P-256 curve, got %s", name)
	}
	return nil
}
