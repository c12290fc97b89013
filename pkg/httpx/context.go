package httpx

import "context"

type ctxKey string

const ctxKeyIdentity ctxKey = "identity"

// Identity is the request-scoped view of an authenticated principal, taken
// from the claims of a verified access credential. It is never persisted.
type Identity struct {
	SubjectID string `json:"id"`
	Username  string `json:"username"`
	Nickname  string `json:"nickname"`
	Role      string `json:"role"`
}

// Anonymous is the placeholder identity of an unauthenticated request.
var Anonymous = Identity{}

// IsAnonymous reports whether id is the placeholder.
func (id Identity) IsAnonymous() bool { return id.SubjectID == "" }

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity, id)
}

// IdentityFromContext returns the identity stored in ctx, or Anonymous.
// The boolean is true only for an authenticated identity.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, _ := ctx.Value(ctxKeyIdentity).(Identity)
	return id, !id.IsAnonymous()
}

// SubjectFromContext returns the authenticated subject id, or "".
func SubjectFromContext(ctx context.Context) string {
	id, _ := IdentityFromContext(ctx)
	return id.SubjectID
}
