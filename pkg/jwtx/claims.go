package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Default lifetimes for the two credential kinds. Services override these
// through configuration.
const (
	// DefaultAccessTokenTTL is short so a leaked access token has a small
	// window of use.
	DefaultAccessTokenTTL = 30 * time.Minute

	// DefaultRefreshTokenTTL bounds how long a session survives without a
	// fresh login.
	DefaultRefreshTokenTTL = 14 * 24 * time.Hour
)

// Kind tells an access credential apart from a refresh credential. It is
// carried in the "token_type" claim.
type Kind string

const (
	KindUnknown Kind = ""
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Valid reports whether k is one of the issuable kinds.
func (k Kind) Valid() bool {
	return k == KindAccess || k == KindRefresh
}

func (k Kind) String() string {
	if k == KindUnknown {
		return "unknown"
	}
	return string(k)
}

// Profile is the denormalised principal data embedded in access credentials
// so request authentication never needs a directory lookup.
type Profile struct {
	Username string
	Nickname string
	Role     string
}

// Claims is the payload of every credential we issue.
type Claims struct {
	jwt.RegisteredClaims

	// Kind is "access" or "refresh".
	Kind Kind `json:"token_type"`

	// Profile fields, present on access credentials only.
	Username string `json:"username,omitempty"`
	Nickname string `json:"nickname,omitempty"`
	Role     string `json:"role,omitempty"`
}

// Profile returns the embedded principal data.
func (c *Claims) Profile() Profile {
	return Profile{Username: c.Username, Nickname: c.Nickname, Role: c.Role}
}

// newClaims builds claims for a credential of the given kind. Refresh
// credentials never carry the profile.
func newClaims(subject string, kind Kind, p Profile, issuer string, now time.Time, ttl time.Duration) *Claims {
	c := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Kind: kind,
	}
	if kind == KindAccess {
		c.Username = p.Username
		c.Nickname = p.Nickname
		c.Role = p.Role
	}
	return c
}

// NewJTI returns a random identifier for the "jti" claim.
func NewJTI() string {
	return uuid.NewString()
}
