package authsdk

import (
	"encoding/json"
	"time"

	"github.com/wagglex2/waggle/pkg/jwtx"
)

// APIResponse is the envelope of a successful response.
type APIResponse[T any] struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

// OK wraps data in a success envelope.
func OK[T any](message string, data T) APIResponse[T] {
	return APIResponse[T]{Code: CodeSuccess, Message: message, Data: data}
}

// rawEnvelope defers decoding of data until the code is known.
type rawEnvelope struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// LoginRequest is the body of POST /api/v1/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse is returned by login and refresh. The refresh credential
// is never in the body; it is set as an HttpOnly cookie.
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresIn   int       `json:"expires_in"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// UserResponse is the identity of the caller as carried by its access
// credential.
type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	Role     string `json:"role"`
}

// UsernameCheckResponse reports whether a username is free.
type UsernameCheckResponse struct {
	Username  string `json:"username"`
	Available bool   `json:"available"`
}

// BootstrapRequest creates the first administrator.
type BootstrapRequest struct {
	Username string `json:"username"`
	Nickname string `json:"nickname"`
	Password string `json:"password"`
}

// BootstrapResponse identifies the administrator that was created.
type BootstrapResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// HealthResponse is returned by /livez and /readyz. Checks is only set by
// /readyz and maps each dependency to "ok" or an error string.
type HealthResponse struct {
	Status  string            `json:"status"`
	Uptime  string            `json:"uptime,omitempty"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// JWKSResponse is the public key set used to verify access credentials.
// It is empty when the service signs with a shared secret.
type JWKSResponse = jwtx.JWKS
