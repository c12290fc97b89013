package jwtx

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/wagglex2/waggle/pkg/cryptox"
)

// Supported signing algorithms.
const (
	AlgorithmHS256 = "HS256"
	AlgorithmES256 = "ES256"
	AlgorithmEdDSA = "EdDSA"
)

// KeyManager owns the signing keys of one instance and the KeySet that
// verifies what they sign.
//
// Several keys may be active at once; one is picked at random per signature.
// Retired keys stay in the KeySet so credentials they signed still verify
// until they expire.
type KeyManager struct {
	KeySet    *KeySet
	algorithm string

	mu      sync.RWMutex
	signers []Signer
}

// KeyManagerOptions configures NewKeyManager.
type KeyManagerOptions struct {
	// Algorithm is one of HS256, ES256, EdDSA.
	Algorithm string

	// Secret is the HS256 shared secret. Required for HS256, ignored
	// otherwise.
	Secret []byte

	// PrivateKeyPEM is a PKCS8 private key for ES256 or EdDSA. When empty,
	// NumKeys ephemeral keys are generated instead.
	PrivateKeyPEM []byte

	// NumKeys is the number of ephemeral keys to generate. Defaults to 1,
	// capped at 10.
	NumKeys int
}

// NewKeyManager builds a KeyManager from static key material or, for the
// asymmetric algorithms, from freshly generated ephemeral keys. Ephemeral
// keys die with the process and so do the credentials they signed.
func NewKeyManager(opts KeyManagerOptions) (*KeyManager, error) {
	km := &KeyManager{KeySet: NewKeySet(), algorithm: opts.Algorithm}

	switch opts.Algorithm {
	case AlgorithmHS256:
		if len(opts.Secret) == 0 {
			return nil, errors.New("jwtx: HS256 requires a secret")
		}
		s, err := NewSignerHS256("", opts.Secret)
		if err != nil {
			return nil, err
		}
		return km, km.AddSigner(s)

	case AlgorithmES256, AlgorithmEdDSA:
		if len(opts.PrivateKeyPEM) > 0 {
			s, err := loadSigner(opts.Algorithm, "", opts.PrivateKeyPEM)
			if err != nil {
				return nil, err
			}
			return km, km.AddSigner(s)
		}

		n := min(max(opts.NumKeys, 1), 10)
		for i := range n {
			s, err := generateSigner(opts.Algorithm)
			if err != nil {
				return nil, fmt.Errorf("jwtx: failed to generate signer %d: %w", i+1, err)
			}
			if err := km.AddSigner(s); err != nil {
				return nil, fmt.Errorf("jwtx: failed to add signer %d: %w", i+1, err)
			}
		}
		return km, nil

	default:
		return nil, fmt.Errorf("jwtx: unsupported algorithm %q (supported: HS256, ES256, EdDSA)", opts.Algorithm)
	}
}

func loadSigner(algorithm, kid string, pemKey []byte) (Signer, error) {
	if algorithm == AlgorithmES256 {
		return NewSignerES256(kid, pemKey)
	}
	return NewSignerEdDSA(kid, pemKey)
}

// generateSigner creates a signer around a new random key with a random kid.
func generateSigner(algorithm string) (Signer, error) {
	var (
		pemKey []byte
		err    error
	)
	if algorithm == AlgorithmES256 {
		pemKey, err = cryptox.GenerateES256Key()
	} else {
		pemKey, err = cryptox.GenerateEd25519Key()
	}
	if err != nil {
		return nil, err
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return nil, fmt.Errorf("failed to generate random key ID: %w", err)
	}
	return loadSigner(algorithm, "waggle-"+token, pemKey)
}

// Algorithm returns the signing algorithm in use.
func (km *KeyManager) Algorithm() string {
	return km.algorithm
}

// IsReady returns true if at least one key can verify.
func (km *KeyManager) IsReady() bool {
	return km.KeySet.IsReady() && km.NumSigners() > 0
}

// GetSigner returns one of the active signers, or nil when none is loaded.
func (km *KeyManager) GetSigner() Signer {
	km.mu.RLock()
	defer km.mu.RUnlock()

	switch len(km.signers) {
	case 0:
		return nil
	case 1:
		return km.signers[0]
	default:
		return km.signers[rand.IntN(len(km.signers))]
	}
}

// NumSigners returns the number of active signing keys.
func (km *KeyManager) NumSigners() int {
	km.mu.RLock()
	defer km.mu.RUnlock()
	return len(km.signers)
}

// AddSigner makes s available for both signing and verification.
func (km *KeyManager) AddSigner(s Signer) error {
	if s == nil {
		return errors.New("jwtx: signer cannot be nil")
	}
	if s.Alg() != km.algorithm {
		return fmt.Errorf("jwtx: signer algorithm %s does not match %s", s.Alg(), km.algorithm)
	}

	km.mu.Lock()
	defer km.mu.Unlock()

	if err := km.KeySet.AddSigner(s); err != nil {
		return fmt.Errorf("jwtx: failed to add signer to keyset: %w", err)
	}
	km.signers = append(km.signers, s)
	return nil
}

// RetireSignerByKid stops signing with kid. The key remains in the KeySet.
func (km *KeyManager) RetireSignerByKid(kid string) error {
	km.mu.Lock()
	defer km.mu.Unlock()

	if len(km.signers) <= 1 {
		return errors.New("jwtx: cannot retire the last signing key")
	}

	kept := make([]Signer, 0, len(km.signers)-1)
	for _, s := range km.signers {
		if s.KID() != kid {
			kept = append(kept, s)
		}
	}
	if len(kept) == len(km.signers) {
		return fmt.Errorf("jwtx: signer with kid %q not found", kid)
	}
	km.signers = kept
	return nil
}
