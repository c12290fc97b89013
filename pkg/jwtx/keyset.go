package jwtx

import (
	"errors"
	"fmt"
	"sync"
)

var ErrNoKey = errors.New("jwtx: key not found")

type keyEntry struct {
	alg string
	key any
}

// KeySet holds every key that may verify a credential, indexed by kid.
// Symmetric keys are kept for verification but never appear in the
// published JWKS.
type KeySet struct {
	mu   sync.RWMutex
	jwks JWKS
	keys map[string]keyEntry
}

// NewKeySet returns an empty KeySet.
func NewKeySet() *KeySet {
	return &KeySet{
		jwks: JWKS{Keys: []JWK{}},
		keys: make(map[string]keyEntry),
	}
}

// AddSigner registers the verification side of s.
func (k *KeySet) AddSigner(s Signer) error {
	if s == nil {
		return errors.New("jwtx: nil signer")
	}
	if err := s.Validate(); err != nil {
		return err
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	if _, exists := k.keys[s.KID()]; exists {
		return fmt.Errorf("jwtx: duplicate kid %q", s.KID())
	}
	k.keys[s.KID()] = keyEntry{alg: s.Alg(), key: s.VerifyKey()}
	if jwk, ok := s.PublicJWK(); ok {
		k.jwks.Keys = append(k.jwks.Keys, jwk)
	}
	return nil
}

// Lookup returns the verification key and algorithm registered for kid.
func (k *KeySet) Lookup(kid string) (any, string, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	e, ok := k.keys[kid]
	if !ok {
		return nil, "", ErrNoKey
	}
	return e.key, e.alg, nil
}

// PublicJWKS returns a snapshot of the publishable keys.
func (k *KeySet) PublicJWKS() JWKS {
	k.mu.RLock()
	defer k.mu.RUnlock()
	keys := make([]JWK, len(k.jwks.Keys))
	copy(keys, k.jwks.Keys)
	return JWKS{Keys: keys}
}

// IsReady returns true if at least one key is loaded.
func (k *KeySet) IsReady() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.keys) > 0
}

// Len returns the number of verification keys.
func (k *KeySet) Len() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.keys)
}
