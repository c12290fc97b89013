package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/wagglex2/waggle/pkg/jwtx"
	"github.com/wagglex2/waggle/pkg/slogx"
)

// Default cookie names for the two credentials.
const (
	AccessCookieName  = "access_token"
	RefreshCookieName = "refresh_token"
)

// Gate results passed to the observer.
const (
	GateAuthenticated = "authenticated"
	GateAnonymous     = "anonymous"
	GateExpired       = "expired"
	GateMalformed     = "malformed"
	GateBadSignature  = "bad_signature"
	GateWrongKind     = "wrong_kind"
	GatePassthrough   = "passthrough"
)

type authnConfig struct {
	cookieName string
	observe    func(result string)
}

// AuthnOption customises Authenticate.
type AuthnOption func(*authnConfig)

// WithAccessCookie changes the cookie consulted when no Authorization
// header is present.
func WithAccessCookie(name string) AuthnOption {
	return func(c *authnConfig) { c.cookieName = name }
}

// WithGateObserver registers a callback that receives one result per
// request, e.g. for metrics.
func WithGateObserver(fn func(result string)) AuthnOption {
	return func(c *authnConfig) { c.observe = fn }
}

// Authenticate populates the request identity from an access credential
// found in the Authorization header or, failing that, the access cookie.
//
// It never rejects a request. A missing, expired, malformed, forged or
// wrong-kind credential leaves the request anonymous and the decision to
// RequireAuthenticated or RequireRole further down the chain.
func Authenticate(v jwtx.KindVerifier, opts ...AuthnOption) Middleware {
	cfg := authnConfig{cookieName: AccessCookieName}
	for _, opt := range opts {
		opt(&cfg)
	}
	observe := cfg.observe
	if observe == nil {
		observe = func(string) {}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if _, ok := IdentityFromContext(ctx); ok {
				observe(GatePassthrough)
				next.ServeHTTP(w, r)
				return
			}

			raw := extractCredential(r, cfg.cookieName)
			if raw == "" {
				observe(GateAnonymous)
				next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, Anonymous)))
				return
			}

			claims, err := v.VerifyKind(raw, jwtx.KindAccess)
			if err != nil {
				result := gateResult(err)
				log := slogx.FromContext(ctx)
				if result == GateBadSignature || result == GateWrongKind {
					log.Warn("rejected access credential", slog.String("reason", result), slog.Any("error", err))
				} else {
					log.Debug("rejected access credential", slog.String("reason", result))
				}
				observe(result)
				next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, Anonymous)))
				return
			}

			id := Identity{
				SubjectID: claims.Subject,
				Username:  claims.Username,
				Nickname:  claims.Nickname,
				Role:      claims.Role,
			}
			ctx = WithIdentity(ctx, id)
			ctx = slogx.With(ctx, slog.String("user_id", id.SubjectID))
			observe(GateAuthenticated)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractCredential returns the bearer token from the Authorization header,
// then the named cookie, or "".
func extractCredential(r *http.Request, cookieName string) string {
	if authz := r.Header.Get("Authorization"); authz != "" {
		scheme, token, ok := strings.Cut(authz, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			if token = strings.TrimSpace(token); token != "" {
				return token
			}
		}
	}
	if cookieName == "" {
		return ""
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return strings.TrimSpace(c.Value)
	}
	return ""
}

func gateResult(err error) string {
	switch {
	case errors.Is(err, jwtx.ErrExpired):
		return GateExpired
	case errors.Is(err, jwtx.ErrBadSignature):
		return GateBadSignature
	case errors.Is(err, jwtx.ErrWrongKind):
		return GateWrongKind
	default:
		return GateMalformed
	}
}
