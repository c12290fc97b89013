package auth_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/wagglex2/waggle/internal/auth/app"
	"github.com/wagglex2/waggle/pkg/authsdk"
	"github.com/wagglex2/waggle/pkg/jwtx"
)

/*
 * Common constants and helper functions for end-to-end tests.
 * Every test gets its own Redis container and its own service instance,
 * built exactly as cmd/waggle builds it, served over a real listener.
 */

const (
	bootstrapToken = "test-bootstrap-token-12345"
	adminUsername  = "root_admin"
	adminNickname  = "Admin"
	adminPassword  = "Admin123!"
	testSecret     = "e2e-secret-e2e-secret-e2e-secret"
)

// authService is a running service and the Redis instance behind it.
type authService struct {
	BaseURL string
	Redis   *goredis.Client
}

type serviceOption func(*app.Config)

// withAlgorithm switches the signing algorithm; asymmetric algorithms use
// ephemeral keys.
func withAlgorithm(alg string) serviceOption {
	return func(c *app.Config) { c.Algorithm = alg }
}

// startRedis runs a throwaway Redis container and returns its address.
func startRedis(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping end-to-end test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForLog("Ready to accept connections").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	return fmt.Sprintf("%s:%s", host, port.Port())
}

// setupAuthService starts Redis and a service instance wired to it.
func setupAuthService(t *testing.T, opts ...serviceOption) *authService {
	t.Helper()

	addr := startRedis(t)
	t.Setenv("REDIS_ADDR", addr)

	dir := t.TempDir()
	cfg := app.Config{
		Issuer:               "waggle-e2e",
		BootstrapToken:       bootstrapToken,
		Algorithm:            jwtx.AlgorithmHS256,
		Secret:               testSecret,
		NumKeys:              1,
		AccessTTL:            jwtx.DefaultAccessTokenTTL,
		RefreshTTL:           jwtx.DefaultRefreshTokenTTL,
		CredentialStore:      app.CredentialStoreRedis,
		DatabaseFile:         filepath.Join(dir, "waggle.db"),
		PepperFile:           filepath.Join(dir, "pepper"),
		CookieSecure:         false, // httptest serves plain HTTP
		Env:                  "test",
		LogLevel:             "warn",
		LogFormat:            "json",
		ShutdownGracePeriod:  time.Second,
		HousekeepingInterval: time.Hour,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	application, err := app.New(context.Background(), cfg)
	require.NoError(t, err)

	srv := httptest.NewServer(application.Handler())
	t.Cleanup(func() {
		srv.Close()
		if err := application.Shutdown(); err != nil {
			t.Logf("shutdown: %v", err)
		}
	})

	rdb := goredis.NewClient(&goredis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })

	return &authService{BaseURL: srv.URL, Redis: rdb}
}

// bootstrapService creates the administrator and returns its id.
func bootstrapService(t *testing.T, client *authsdk.SDKClient) string {
	t.Helper()

	resp, err := client.Bootstrap(t.Context(), bootstrapToken, authsdk.BootstrapRequest{
		Username: adminUsername,
		Nickname: adminNickname,
		Password: adminPassword,
	})
	require.NoError(t, err, "Bootstrap should succeed")
	require.NotEmpty(t, resp.UserID, "Admin user ID should not be empty")
	require.Equal(t, "ROLE_ADMIN", resp.Role)

	return resp.UserID
}

// performLogin logs in and returns a session.
func performLogin(t *testing.T, client *authsdk.SDKClient, username, password string) *authsdk.Session {
	t.Helper()

	session, err := client.Login(t.Context(), username, password)
	require.NoError(t, err, "Login should succeed")
	require.NotNil(t, session, "Session should not be nil")
	require.NotEmpty(t, session.AccessToken())

	return session
}

// refreshCookie returns the refresh credential held in the client's jar.
func refreshCookie(t *testing.T, client *authsdk.SDKClient) string {
	t.Helper()

	u, err := url.Parse(client.BaseURL + authsdk.PathRefresh)
	require.NoError(t, err)
	for _, c := range client.HTTPClient.Jar.Cookies(u) {
		if c.Name == "refresh_token" {
			return c.Value
		}
	}
	t.Fatalf("no refresh_token cookie in jar")
	return ""
}

// assertAPIError checks that err carries the expected envelope code.
func assertAPIError(t *testing.T, err error, want *authsdk.APIError, context string) {
	t.Helper()
	require.Error(t, err, context)
	require.ErrorIs(t, err, want, context)

	var apiErr *authsdk.APIError
	require.True(t, errors.As(err, &apiErr), "%s - expected *authsdk.APIError, got %T", context, err)
	require.Equal(t, want.Status, apiErr.Status, context)
}

// assertHealthy verifies a health check response is OK.
func assertHealthy(t *testing.T, health *authsdk.HealthResponse, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, health)
	require.Equal(t, "ok", health.Status)
}

// rawRequest sends a request outside the SDK so tests can present
// arbitrary credentials.
func rawRequest(t *testing.T, method, target string, mutate func(*http.Request)) *http.Response {
	t.Helper()

	req, err := http.NewRequestWithContext(t.Context(), method, target, nil)
	require.NoError(t, err)
	if mutate != nil {
		mutate(req)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// withoutBootstrap leaves BOOTSTRAP_TOKEN unset.
func withoutBootstrap() serviceOption {
	return func(c *app.Config) { c.BootstrapToken = "" }
}

// withSecret replaces the HS256 secret.
func withSecret(secret string) serviceOption {
	return func(c *app.Config) { c.Secret = secret }
}
