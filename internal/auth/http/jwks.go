package http

import (
	"net/http"

	"github.com/wagglex2/waggle/pkg/authsdk"
	"github.com/wagglex2/waggle/pkg/httpx"
	"github.com/wagglex2/waggle/pkg/jwtx"
)

// JWKSHandler exposes the public keys that verify access credentials.
//
//	@Summary		Get JWKS
//	@Description	Returns the JSON Web Key Set used to verify JWTs. Empty when credentials are signed with a shared secret.
//	@Tags			well-known
//	@Produce		json
//	@Success		200	{object}	authsdk.JWKSResponse	"The JSON Web Key Set"
//	@Router			/.well-known/jwks.json [get]
func JWKSHandler(keys *jwtx.KeySet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, authsdk.JWKSResponse(keys.PublicJWKS()))
	}
}
