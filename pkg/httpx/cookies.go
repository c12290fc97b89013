package httpx

import (
	"net/http"
	"time"
)

// CookieOptions controls the attributes of session cookies. Secure should
// only be turned off for local development over plain HTTP.
type CookieOptions struct {
	Secure bool
	Domain string
}

// SetRefreshCookie stores the refresh credential. Max-Age is the
// credential's remaining lifetime at now.
func SetRefreshCookie(w http.ResponseWriter, opts CookieOptions, token string, expiresAt, now time.Time) {
	http.SetCookie(w, sessionCookie(RefreshCookieName, token, opts, expiresAt.Sub(now)))
}

// SetAccessCookie stores the access credential for browser clients that
// cannot attach an Authorization header.
func SetAccessCookie(w http.ResponseWriter, opts CookieOptions, token string, expiresAt, now time.Time) {
	http.SetCookie(w, sessionCookie(AccessCookieName, token, opts, expiresAt.Sub(now)))
}

// ClearSessionCookies expires both credential cookies.
func ClearSessionCookies(w http.ResponseWriter, opts CookieOptions) {
	for _, name := range []string{AccessCookieName, RefreshCookieName} {
		c := sessionCookie(name, "", opts, 0)
		c.MaxAge = -1
		http.SetCookie(w, c)
	}
}

func sessionCookie(name, value string, opts CookieOptions, lifetime time.Duration) *http.Cookie {
	maxAge := int(lifetime / time.Second)
	if maxAge <= 0 {
		// Max-Age=0 in net/http means "no attribute"; -1 deletes.
		maxAge = -1
	}
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   opts.Domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
