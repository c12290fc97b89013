package jwtx

import "errors"

// Verifier checks a raw credential and returns its claims.
type Verifier interface {
	Verify(raw string) (*Claims, error)
}

// KindVerifier additionally enforces the credential kind.
type KindVerifier interface {
	Verifier
	VerifyKind(raw string, want Kind) (*Claims, error)
}

// Verification failures. Callers branch on these with errors.Is; each one
// calls for a different reaction (drop silently, ask for a refresh, log as
// tampering).
var (
	ErrMalformed    = errors.New("jwtx: malformed token")
	ErrBadSignature = errors.New("jwtx: signature verification failed")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrNotYetValid  = errors.New("jwtx: token not yet valid")
	ErrWrongKind    = errors.New("jwtx: wrong token kind")
	ErrUnknownKID   = errors.New("jwtx: unknown key id")
)
