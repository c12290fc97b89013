package http

import (
	"net/http"

	"github.com/wagglex2/waggle/pkg/authsdk"
	"github.com/wagglex2/waggle/pkg/httpx"
)

// HandleMe godoc
//
//	@Summary		Current user
//	@Description	Returns the identity carried by the caller's access credential. No directory lookup is made, so profile changes show up after the next refresh.
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.APIResponse[authsdk.UserResponse]
//	@Failure		401	{object}	authsdk.APIError	"UNAUTHORIZED"
//	@Router			/api/v1/users/me [get]
func HandleMe(w http.ResponseWriter, r *http.Request) {
	id, _ := httpx.IdentityFromContext(r.Context())
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.OK("ok", authsdk.UserResponse{
		ID:       id.SubjectID,
		Username: id.Username,
		Nickname: id.Nickname,
		Role:     id.Role,
	}))
}
