package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoSigner means the KeyManager has no active signing key. It is a
// configuration fault, not a per-call condition.
var ErrNoSigner = errors.New("jwtx: no active signing key")

// Credential is a freshly issued, signed token together with the values
// callers need without re-parsing it.
type Credential struct {
	Token     string
	ID        string
	Kind      Kind
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Codec signs and verifies credentials. It holds no per-principal state and
// is safe for concurrent use.
type Codec struct {
	keys   *KeyManager
	issuer string
	leeway time.Duration
	now    func() time.Time
}

// CodecOption customises a Codec.
type CodecOption func(*Codec)

// WithClock replaces the wall clock used for issuing and for expiry checks.
func WithClock(now func() time.Time) CodecOption {
	return func(c *Codec) { c.now = now }
}

// WithLeeway tolerates clock skew between issuer and verifier.
func WithLeeway(d time.Duration) CodecOption {
	return func(c *Codec) { c.leeway = d }
}

// NewCodec returns a Codec that signs with keys and stamps issuer on every
// credential.
func NewCodec(keys *KeyManager, issuer string, opts ...CodecOption) (*Codec, error) {
	if keys == nil {
		return nil, errors.New("jwtx: key manager is required")
	}
	if issuer == "" {
		return nil, errors.New("jwtx: issuer is required")
	}
	c := &Codec{keys: keys, issuer: issuer, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issue builds and signs a credential for subject. Profile data is only
// embedded in access credentials. A ttl of zero or less yields a credential
// that is already expired.
func (c *Codec) Issue(subject string, kind Kind, p Profile, ttl time.Duration) (Credential, error) {
	if subject == "" {
		return Credential{}, errors.New("jwtx: subject is required")
	}
	if !kind.Valid() {
		return Credential{}, fmt.Errorf("jwtx: cannot issue kind %q", kind)
	}

	signer := c.keys.GetSigner()
	if signer == nil {
		return Credential{}, ErrNoSigner
	}

	claims := newClaims(subject, kind, p, c.issuer, c.now().UTC(), max(ttl, 0))
	token, err := signer.Sign(claims)
	if err != nil {
		return Credential{}, fmt.Errorf("jwtx: sign %s token: %w", kind, err)
	}

	return Credential{
		Token:     token,
		ID:        claims.ID,
		Kind:      kind,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Verify parses raw, checks its signature against the KeySet and checks
// its validity window. Failures wrap exactly one of ErrMalformed,
// ErrBadSignature, ErrExpired or ErrNotYetValid.
//
// The signature is checked before any time-based claim, so an expired
// token with a forged signature reports ErrBadSignature.
func (c *Codec) Verify(raw string) (*Claims, error) {
	if raw == "" {
		return nil, ErrMalformed
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{c.keys.Algorithm()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(c.leeway),
		jwt.WithTimeFunc(c.now),
	)

	claims := &Claims{}
	if _, err := parser.ParseWithClaims(raw, claims, c.lookupKey); err != nil {
		return nil, classify(err)
	}

	if claims.Subject == "" || !claims.Kind.Valid() {
		return nil, ErrMalformed
	}
	return claims, nil
}

// VerifyKind is Verify plus a check that the credential is of kind want.
// A credential in the wrong slot fails with ErrWrongKind even when its
// signature is good.
func (c *Codec) VerifyKind(raw string, want Kind) (*Claims, error) {
	claims, err := c.Verify(raw)
	if err != nil {
		return nil, err
	}
	if claims.Kind != want {
		return nil, fmt.Errorf("%w: got %s, want %s", ErrWrongKind, claims.Kind, want)
	}
	return claims, nil
}

// KindOf reports the kind claimed by raw without verifying it.
func (c *Codec) KindOf(raw string) Kind {
	return KindOf(raw)
}

func (c *Codec) lookupKey(t *jwt.Token) (any, error) {
	kid, _ := t.Header["kid"].(string)
	if kid == "" {
		return nil, fmt.Errorf("%w: missing kid", ErrUnknownKID)
	}

	key, alg, err := c.keys.KeySet.Lookup(kid)
	if err != nil {
		return nil, fmt.Errorf("%w %q", ErrUnknownKID, kid)
	}
	if alg != t.Method.Alg() {
		return nil, fmt.Errorf("jwtx: kid %q is an %s key, token uses %s", kid, alg, t.Method.Alg())
	}
	return key, nil
}

// classify folds jwt library errors into our four verification failures.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable),
		errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return fmt.Errorf("%w: %w", ErrBadSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", ErrExpired, err)
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return fmt.Errorf("%w: %w", ErrNotYetValid, err)
	default:
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}
}

// KindOf reads the "token_type" claim without checking the signature. It
// is only a routing hint; anything unparseable is KindUnknown.
func KindOf(raw string) Kind {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return KindUnknown
	}
	if !claims.Kind.Valid() {
		return KindUnknown
	}
	return claims.Kind
}
