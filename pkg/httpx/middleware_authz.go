package httpx

import "net/http"

// Error codes written by the authorization middlewares.
const (
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
)

// RequireAuthenticated rejects anonymous requests with 401. It is the one
// place an unauthenticated request is turned into an error, whatever the
// reason the gate left it anonymous.
func RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := IdentityFromContext(r.Context()); !ok {
			WriteUnauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole admits authenticated identities holding one of roles.
// Anonymous requests get 401, others 403.
func RequireRole(roles ...string) Middleware {
	want := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		want[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				WriteUnauthorized(w)
				return
			}
			if _, allowed := want[id.Role]; !allowed {
				WriteEnvelope(w, http.StatusForbidden, CodeForbidden, "access denied", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WriteUnauthorized writes the uniform 401 response.
func WriteUnauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer`)
	WriteEnvelope(w, http.StatusUnauthorized, CodeUnauthorized, "authentication required", nil)
}
