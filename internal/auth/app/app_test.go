package app

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wagglex2/waggle/internal/auth/domain"
	"github.com/wagglex2/waggle/pkg/authsdk"
	"github.com/wagglex2/waggle/pkg/jwtx"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := LoadConfig()
		require.Equal(t, "waggle-auth", cfg.Issuer)
		require.Equal(t, jwtx.AlgorithmHS256, cfg.Algorithm)
		require.Equal(t, CredentialStoreRedis, cfg.CredentialStore)
		require.Equal(t, 30*time.Minute, cfg.AccessTTL)
		require.Equal(t, 14*24*time.Hour, cfg.RefreshTTL)
		require.True(t, cfg.CookieSecure)
		require.Equal(t, 8080, cfg.Port)
		require.Equal(t, 10*time.Second, cfg.ShutdownGracePeriod)
		require.Equal(t, time.Hour, cfg.HousekeepingInterval)
		require.Empty(t, cfg.BootstrapToken)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("AUTH_ISSUER", "waggle-test")
		t.Setenv("AUTH_ALGORITHM", "EdDSA")
		t.Setenv("AUTH_CREDENTIAL_STORE", "SQLite")
		t.Setenv("AUTH_ACCESS_TTL", "5m")
		t.Setenv("AUTH_REFRESH_TTL", "90")
		t.Setenv("AUTH_COOKIE_SECURE", "false")
		t.Setenv("AUTH_NUM_KEYS", "3")
		t.Setenv("PORT", "9090")
		t.Setenv("BOOTSTRAP_TOKEN", "boot")

		cfg := LoadConfig()
		require.Equal(t, "waggle-test", cfg.Issuer)
		require.Equal(t, jwtx.AlgorithmEdDSA, cfg.Algorithm)
		require.Equal(t, CredentialStoreSQLite, cfg.CredentialStore)
		require.Equal(t, 5*time.Minute, cfg.AccessTTL)
		require.Equal(t, 90*time.Minute, cfg.RefreshTTL)
		require.False(t, cfg.CookieSecure)
		require.Equal(t, 3, cfg.NumKeys)
		require.Equal(t, 9090, cfg.Port)
		require.Equal(t, "boot", cfg.BootstrapToken)
	})

	t.Run("unparseable values fall back", func(t *testing.T) {
		t.Setenv("PORT", "eighty")
		t.Setenv("AUTH_ACCESS_TTL", "soon")
		t.Setenv("AUTH_COOKIE_SECURE", "maybe")

		cfg := LoadConfig()
		require.Equal(t, 8080, cfg.Port)
		require.Equal(t, 30*time.Minute, cfg.AccessTTL)
		require.True(t, cfg.CookieSecure)
	})
}

func validConfig() Config {
	return Config{
		Issuer:          "waggle-test",
		Algorithm:       jwtx.AlgorithmHS256,
		Secret:          testSecret,
		CredentialStore: CredentialStoreMemory,
		AccessTTL:       time.Minute,
		RefreshTTL:      time.Hour,
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "short secret", mutate: func(c *Config) { c.Secret = "short" }, wantErr: "AUTH_SECRET"},
		{name: "asymmetric needs no secret", mutate: func(c *Config) { c.Algorithm = jwtx.AlgorithmEdDSA; c.Secret = "" }},
		{name: "unknown algorithm", mutate: func(c *Config) { c.Algorithm = "RS256" }, wantErr: "AUTH_ALGORITHM"},
		{name: "unknown store", mutate: func(c *Config) { c.CredentialStore = "etcd" }, wantErr: "AUTH_CREDENTIAL_STORE"},
		{name: "zero lifetime", mutate: func(c *Config) { c.AccessTTL = 0 }, wantErr: "positive"},
		{name: "refresh shorter than access", mutate: func(c *Config) { c.RefreshTTL = time.Second }, wantErr: "AUTH_REFRESH_TTL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := validConfig()
	cfg.Secret = ""
	_, err := New(context.Background(), cfg)
	require.Error(t, err)
	require.True(t, strings.HasPrefix(err.Error(), "invalid configuration"))
}

func TestApplicationEndToEnd(t *testing.T) {
	for _, backend := range []string{CredentialStoreMemory, CredentialStoreSQLite} {
		t.Run(backend, func(t *testing.T) {
			dir := t.TempDir()
			cfg := validConfig()
			cfg.CredentialStore = backend
			cfg.DatabaseFile = filepath.Join(dir, "waggle.db")
			cfg.PepperFile = filepath.Join(dir, "pepper")
			cfg.BootstrapToken = "boot-token"
			cfg.LogLevel = "error"
			cfg.ShutdownGracePeriod = time.Second

			app, err := New(context.Background(), cfg)
			require.NoError(t, err)
			require.NotNil(t, app.housekeepingService, "%s needs sweeping", backend)

			srv := httptest.NewServer(app.Handler())
			t.Cleanup(srv.Close)

			ctx := context.Background()
			client := authsdk.NewSDKClient(srv.URL)

			created, err := client.Bootstrap(ctx, "boot-token", authsdk.BootstrapRequest{
				Username: "root_admin",
				Nickname: "Root",
				Password: "Adm1n_pass!",
			})
			require.NoError(t, err)
			require.Equal(t, domain.RoleAdmin, created.Role)

			session, err := client.Login(ctx, "root_admin", "Adm1n_pass!")
			require.NoError(t, err)

			me, err := session.Me(ctx)
			require.NoError(t, err)
			require.Equal(t, created.UserID, me.ID)
			require.Equal(t, domain.RoleAdmin, me.Role)

			_, err = session.Refresh(ctx)
			require.NoError(t, err)

			require.NoError(t, session.Logout(ctx))

			_, err = session.Refresh(ctx)
			require.ErrorIs(t, err, authsdk.ErrRefreshTokenNotFound)

			require.NoError(t, app.Shutdown())
		})
	}
}
