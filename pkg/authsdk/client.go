package authsdk

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// Route paths served by the authentication service.
const (
	PathLogin         = "/api/v1/auth/login"
	PathRefresh       = "/api/v1/auth/refresh"
	PathLogout        = "/api/v1/auth/logout"
	PathUsernameCheck = "/api/v1/auth/username-check"
	PathMe            = "/api/v1/users/me"
	PathBootstrap     = "/api/v1/bootstrap"
	PathJWKS          = "/.well-known/jwks.json"
	PathLivez         = "/livez"
	PathReadyz        = "/readyz"
)

// refreshBuffer is how long before expiry a Session refreshes.
const refreshBuffer = 30 * time.Second

// SDKClient is a client for the waggle authentication service. Its
// HTTPClient must have a cookie jar for sessions to refresh.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a client with a fresh cookie jar.
func NewSDKClient(baseURL string) *SDKClient {
	jar, _ := cookiejar.New(nil)
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
			Jar:     jar,
		},
	}
}

// Login authenticates with username and password and returns a Session.
func (c *SDKClient) Login(ctx context.Context, username, password string) (*Session, error) {
	var tok TokenResponse
	err := c.doJSON(ctx, http.MethodPost, PathLogin, LoginRequest{Username: username, Password: password}, nil, http.StatusOK, &tok)
	if err != nil {
		return nil, err
	}
	return newSession(c, tok), nil
}

// UsernameAvailable reports whether username is free.
func (c *SDKClient) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	var out UsernameCheckResponse
	path := PathUsernameCheck + "?username=" + url.QueryEscape(username)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, http.StatusOK, &out); err != nil {
		return false, err
	}
	return out.Available, nil
}

// Bootstrap creates the first administrator. token is the operator-held
// bootstrap secret.
func (c *SDKClient) Bootstrap(ctx context.Context, token string, req BootstrapRequest) (*BootstrapResponse, error) {
	var out BootstrapResponse
	headers := map[string]string{"X-Bootstrap-Token": token}
	if err := c.doJSON(ctx, http.MethodPost, PathBootstrap, req, headers, http.StatusCreated, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
