package redis_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/wagglex2/waggle/internal/auth/store"
	"github.com/wagglex2/waggle/internal/auth/store/drivers/redis"
)

// startRedis runs a throwaway redis container and returns a client for it.
func startRedis(t *testing.T) *goredis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForLog("Ready to accept connections").
				WithStartupTimeout(30 * time.Second),
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

	client := goredis.NewClient(&goredis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func TestNew(t *testing.T) {
	_, err := redis.New(redis.Config{})
	require.Error(t, err)
}

func TestCredentials(t *testing.T) {
	client := startRedis(t)
	creds, err := redis.New(redis.Config{Client: client})
	require.NoError(t, err)
	ctx := t.Context()

	t.Run("put then get", func(t *testing.T) {
		require.NoError(t, creds.Put(ctx, "u1", "hash-1", time.Minute))
		got, err := creds.Get(ctx, "u1")
		require.NoError(t, err)
		require.Equal(t, "hash-1", got)

		ttl, err := client.TTL(ctx, "RT:u1").Result()
		require.NoError(t, err)
		require.Greater(t, ttl, time.Duration(0))
		require.LessOrEqual(t, ttl, time.Minute)
	})

	t.Run("put overwrites", func(t *testing.T) {
		require.NoError(t, creds.Put(ctx, "u2", "old", time.Minute))
		require.NoError(t, creds.Put(ctx, "u2", "new", time.Minute))
		got, err := creds.Get(ctx, "u2")
		require.NoError(t, err)
		require.Equal(t, "new", got)
	})

	t.Run("missing key", func(t *testing.T) {
		_, err := creds.Get(ctx, "nobody")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, creds.Put(ctx, "u3", "h", time.Minute))
		require.NoError(t, creds.Delete(ctx, "u3"))
		require.NoError(t, creds.Delete(ctx, "u3"))
		_, err := creds.Get(ctx, "u3")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("non-positive ttl removes entry", func(t *testing.T) {
		require.NoError(t, creds.Put(ctx, "u4", "h", time.Minute))
		require.NoError(t, creds.Put(ctx, "u4", "h", 0))
		_, err := creds.Get(ctx, "u4")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("entry lapses", func(t *testing.T) {
		require.NoError(t, creds.Put(ctx, "u5", "h", 1100*time.Millisecond))
		require.Eventually(t, func() bool {
			_, err := creds.Get(ctx, "u5")
			return err == store.ErrNotFound
		}, 5*time.Second, 100*time.Millisecond)
	})

	t.Run("custom prefix", func(t *testing.T) {
		other, err := redis.New(redis.Config{Client: client, KeyPrefix: "other:"})
		require.NoError(t, err)
		require.NoError(t, other.Put(ctx, "u6", "h", time.Minute))
		_, err = creds.Get(ctx, "u6")
		require.ErrorIs(t, err, store.ErrNotFound)
		n, err := client.Exists(ctx, "other:u6").Result()
		require.NoError(t, err)
		require.EqualValues(t, 1, n)
	})

	require.NoError(t, creds.Ping(ctx))
}
