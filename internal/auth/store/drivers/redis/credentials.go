// Package redis keeps rotation secrets in Redis, one key per subject with a
// native TTL, so no sweeping is required.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/redis/go-redis/v9"

	"github.com/wagglex2/waggle/internal/auth/store"
)

const defaultKeyPrefix = "RT:"

// EnvConfig is the connection configuration loaded from the environment.
type EnvConfig struct {
	// Addr like "localhost:6379". ENV: REDIS_ADDR
	Addr string `env:"REDIS_ADDR,default=localhost:6379"`
	// Password for AUTH, empty for none. ENV: REDIS_PASSWORD
	Password string `env:"REDIS_PASSWORD"`
	// DB index. ENV: REDIS_DB
	DB int `env:"REDIS_DB,default=0"`
	// KeyPrefix for rotation keys. ENV: REDIS_KEY_PREFIX
	KeyPrefix string `env:"REDIS_KEY_PREFIX,default=RT:"`
}

// Config contains the options for a Credentials store.
type Config struct {
	// Client is the Redis client instance
	Client *redis.Client

	// KeyPrefix is prepended to the subject id.
	// Default: "RT:"
	KeyPrefix string
}

// Credentials implements store.Credentials on Redis strings.
type Credentials struct {
	client    *redis.Client
	keyPrefix string
}

var _ store.Credentials = (*Credentials)(nil)

// New creates a Redis-backed credential store around an existing client.
func New(cfg Config) (*Credentials, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = defaultKeyPrefix
	}
	return &Credentials{client: cfg.Client, keyPrefix: cfg.KeyPrefix}, nil
}

// NewFromEnv dials Redis using REDIS_* variables and checks the connection.
func NewFromEnv(ctx context.Context) (*Credentials, error) {
	var cfg EnvConfig
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("redis config: %w", err)
	}
	if cfg.Addr == "" {
		cfg.Addr = "localhost:6379"
	}

	cl := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := cl.Ping(ctx).Err(); err != nil {
		_ = cl.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return New(Config{Client: cl, KeyPrefix: cfg.KeyPrefix})
}

func (c *Credentials) key(subjectID string) string { return c.keyPrefix + subjectID }

// Put stores the hash with SET EX, replacing any previous value and TTL.
// A non-positive ttl removes the entry instead, matching a record that has
// already lapsed.
func (c *Credentials) Put(ctx context.Context, subjectID, hashedSecret string, ttl time.Duration) error {
	if ttl <= 0 {
		return c.Delete(ctx, subjectID)
	}
	if err := c.client.Set(ctx, c.key(subjectID), hashedSecret, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", c.key(subjectID), err)
	}
	return nil
}

func (c *Credentials) Get(ctx context.Context, subjectID string) (string, error) {
	v, err := c.client.Get(ctx, c.key(subjectID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", store.ErrNotFound
		}
		return "", fmt.Errorf("redis get %s: %w", c.key(subjectID), err)
	}
	return v, nil
}

func (c *Credentials) Delete(ctx context.Context, subjectID string) error {
	if err := c.client.Del(ctx, c.key(subjectID)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", c.key(subjectID), err)
	}
	return nil
}

// Ping reports whether the server is reachable.
func (c *Credentials) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (c *Credentials) Close() error { return c.client.Close() }
