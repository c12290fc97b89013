package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/wagglex2/waggle/internal/auth/domain"
	"github.com/wagglex2/waggle/internal/auth/service"
	"github.com/wagglex2/waggle/pkg/authsdk"
	"github.com/wagglex2/waggle/pkg/httpx"
	"github.com/wagglex2/waggle/pkg/slogx"
)

type BootstrapHandler struct {
	BootstrapService *service.BootstrapService
}

// ServeHTTP handles the bootstrap endpoint for initial system setup.
//
//	@Summary		Bootstrap the authentication system
//	@Description	Creates the first ROLE_ADMIN user. Only available when a bootstrap token is configured, and only while the directory is empty.
//	@Tags			Bootstrap
//	@Accept			json
//	@Produce		json
//	@Param			X-Bootstrap-Token	header		string						true	"Bootstrap token"
//	@Param			request				body		authsdk.BootstrapRequest	true	"First administrator"
//	@Success		201					{object}	authsdk.APIResponse[authsdk.BootstrapResponse]
//	@Failure		400					{object}	authsdk.APIError	"INVALID_REQUEST, VALIDATION_FAILED"
//	@Failure		401					{object}	authsdk.APIError	"BOOTSTRAP_UNAUTHORIZED"
//	@Failure		404					{object}	authsdk.APIError	"BOOTSTRAP_DISABLED"
//	@Failure		409					{object}	authsdk.APIError	"BOOTSTRAP_ALREADY_COMPLETED"
//	@Router			/api/v1/bootstrap [post]
func (h *BootstrapHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	l := slogx.FromContext(r.Context())

	if h.BootstrapService == nil || !h.BootstrapService.Enabled() {
		authsdk.ErrBootstrapDisabled.WriteError(w)
		return
	}

	token := r.Header.Get("X-Bootstrap-Token")
	if token == "" {
		authsdk.ErrBootstrapUnauthorized.WithMessage("bootstrap token is required in X-Bootstrap-Token header").WriteError(w)
		return
	}

	var req authsdk.BootstrapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		authsdk.ErrInvalidRequest.WithMessage("request body must be valid JSON").WriteError(w)
		return
	}

	admin, err := h.BootstrapService.Bootstrap(r.Context(), token, domain.BootstrapData{
		Username: strings.TrimSpace(req.Username),
		Nickname: strings.TrimSpace(req.Nickname),
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBootstrapUnauthorized):
			authsdk.ErrBootstrapUnauthorized.WriteError(w)
		case errors.Is(err, service.ErrBootstrapAlready):
			authsdk.ErrBootstrapCompleted.WriteError(w)
		case errors.Is(err, service.ErrBootstrapDisabled):
			authsdk.ErrBootstrapDisabled.WriteError(w)
		case errors.Is(err, service.ErrInvalidUsername),
			errors.Is(err, service.ErrInvalidNickname),
			errors.Is(err, service.ErrWeakPassword):
			authsdk.ErrValidationFailed.WithMessage(validationMessage(err)).WriteError(w)
		default:
			l.Error("bootstrap failed", "error", err)
			authsdk.ErrInternal.WriteError(w)
		}
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, authsdk.OK("bootstrapped", authsdk.BootstrapResponse{
		UserID:   admin.ID,
		Username: admin.Username,
		Role:     admin.Role,
	}))
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrInvalidUsername):
		return "username must be 4-20 letters, digits or underscores"
	case errors.Is(err, service.ErrInvalidNickname):
		return "nickname must be 2-10 Hangul, letters or digits"
	default:
		return "password must be at least 8 characters with a letter, a digit and one of !@#$%^&*()_+~"
	}
}
