package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/wagglex2/waggle/internal/auth/domain"
	"github.com/wagglex2/waggle/internal/auth/service"
	"github.com/wagglex2/waggle/pkg/authsdk"
	"github.com/wagglex2/waggle/pkg/httpx"
	"github.com/wagglex2/waggle/pkg/slogx"
)

// maxLoginBody bounds the login request body.
const maxLoginBody = 4 << 10

// AuthHandler serves the session endpoints under /api/v1/auth.
type AuthHandler struct {
	Sessions *service.SessionService
	Cookies  httpx.CookieOptions
	Now      func() time.Time
}

// HandleLogin godoc
//
//	@Summary		Log in
//	@Description	Checks username and password and starts a session, superseding any previous session of the same user.
//	@Description	The access credential is returned in the body and as the access_token cookie; the refresh credential only as the HttpOnly refresh_token cookie.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.APIResponse[authsdk.TokenResponse]
//	@Failure		400		{object}	authsdk.APIError	"INVALID_REQUEST"
//	@Failure		401		{object}	authsdk.APIError	"INVALID_CREDENTIALS"
//	@Failure		429		{object}	authsdk.APIError	"TOO_MANY_REQUESTS"
//	@Header			200		{string}	Set-Cookie	"access_token, refresh_token"
//	@Router			/api/v1/auth/login [post]
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxLoginBody)).Decode(&req); err != nil {
		authsdk.ErrInvalidRequest.WithMessage("request body must be a JSON object with username and password").WriteError(w)
		return
	}

	pair, err := h.Sessions.Login(r.Context(), strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		writeSessionError(w, r, err)
		return
	}

	h.writePair(w, pair, "login succeeded")
}

// HandleRefresh godoc
//
//	@Summary		Rotate the session
//	@Description	Exchanges the refresh_token cookie for a new credential pair. The presented refresh credential stops working.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	authsdk.APIResponse[authsdk.TokenResponse]
//	@Failure		401	{object}	authsdk.APIError	"REFRESH_TOKEN_INVALID, TOKEN_EXPIRED, REFRESH_TOKEN_TYPE_INVALID, REFRESH_TOKEN_NOT_FOUND, REFRESH_TOKEN_MISMATCH, USER_NOT_FOUND"
//	@Failure		429	{object}	authsdk.APIError	"TOO_MANY_REQUESTS"
//	@Router			/api/v1/auth/refresh [post]
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(httpx.RefreshCookieName)
	if err != nil || c.Value == "" {
		authsdk.ErrRefreshTokenNotFound.WriteError(w)
		return
	}

	pair, err := h.Sessions.Refresh(r.Context(), c.Value)
	if err != nil {
		writeSessionError(w, r, err)
		return
	}

	h.writePair(w, pair, "tokens reissued")
}

// HandleLogout godoc
//
//	@Summary		Log out
//	@Description	Ends the caller's session and expires both credential cookies. Logging out twice is not an error.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.APIResponse[any]
//	@Failure		401	{object}	authsdk.APIError	"UNAUTHORIZED"
//	@Router			/api/v1/auth/logout [post]
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	subject := httpx.SubjectFromContext(r.Context())
	if err := h.Sessions.Logout(r.Context(), subject); err != nil {
		writeSessionError(w, r, err)
		return
	}

	httpx.ClearSessionCookies(w, h.Cookies)
	httpx.WriteJSON(w, http.StatusOK, authsdk.OK[any]("logged out", nil))
}

// HandleUsernameCheck godoc
//
//	@Summary		Check username availability
//	@Tags			Auth
//	@Produce		json
//	@Param			username	query		string	true	"Username to check"
//	@Success		200			{object}	authsdk.APIResponse[authsdk.UsernameCheckResponse]
//	@Failure		400			{object}	authsdk.APIError	"VALIDATION_FAILED"
//	@Router			/api/v1/auth/username-check [get]
func (h *AuthHandler) HandleUsernameCheck(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if err := service.ValidateUsername(username); err != nil {
		authsdk.ErrValidationFailed.WithMessage("username must be 4-20 letters, digits or underscores").WriteError(w)
		return
	}

	available, err := h.Sessions.UsernameAvailable(r.Context(), username)
	if err != nil {
		writeSessionError(w, r, err)
		return
	}

	msg := "username is available"
	if !available {
		msg = "username is already in use"
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.OK(msg, authsdk.UsernameCheckResponse{
		Username:  username,
		Available: available,
	}))
}

// writePair sets both credential cookies and returns the access credential
// in the body.
func (h *AuthHandler) writePair(w http.ResponseWriter, pair domain.TokenPair, msg string) {
	now := h.now()
	httpx.SetAccessCookie(w, h.Cookies, pair.AccessToken, pair.AccessExpiresAt, now)
	httpx.SetRefreshCookie(w, h.Cookies, pair.RefreshToken, pair.RefreshExpiresAt, now)

	httpx.WriteJSON(w, http.StatusOK, authsdk.OK(msg, authsdk.TokenResponse{
		AccessToken: pair.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(pair.AccessExpiresAt.Sub(now) / time.Second),
		ExpiresAt:   pair.AccessExpiresAt,
	}))
}

func (h *AuthHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// writeSessionError maps a SessionService error to its API error. Anything
// unrecognised is logged and reported as an internal error.
func writeSessionError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *authsdk.APIError
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		apiErr = authsdk.ErrInvalidCredentials
	case errors.Is(err, service.ErrRefreshExpired):
		apiErr = authsdk.ErrTokenExpired
	case errors.Is(err, service.ErrWrongKind):
		apiErr = authsdk.ErrRefreshTokenTypeInvalid
	case errors.Is(err, service.ErrRefreshInvalid):
		apiErr = authsdk.ErrRefreshTokenInvalid
	case errors.Is(err, service.ErrSessionNotFound):
		apiErr = authsdk.ErrRefreshTokenNotFound
	case errors.Is(err, service.ErrRefreshMismatch):
		apiErr = authsdk.ErrRefreshTokenMismatch
	case errors.Is(err, service.ErrPrincipalNotFound):
		apiErr = authsdk.ErrUserNotFound
	default:
		slogx.FromContext(r.Context()).Error("session operation failed", "error", err)
		apiErr = authsdk.ErrInternal
	}
	apiErr.WriteError(w)
}
