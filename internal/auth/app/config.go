package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/wagglex2/waggle/pkg/jwtx"
)

// Credential store backends selectable with AUTH_CREDENTIAL_STORE.
const (
	CredentialStoreRedis  = "redis"
	CredentialStoreSQLite = "sqlite"
	CredentialStoreMemory = "memory"
)

const minSecretLen = 32

type Config struct {
	Issuer         string // Issuer claim for tokens (default: waggle-auth)
	BootstrapToken string // Optional: token required to perform bootstrap; empty disables it

	Algorithm      string        // JWT signing algorithm (HS256, ES256, EdDSA) (default: HS256)
	Secret         string        // HS256 shared secret, at least 32 bytes
	SigningKeyFile string        // Optional: PKCS8 PEM key for ES256/EdDSA; ephemeral keys when empty
	NumKeys        int           // Ephemeral keys to generate (default: 1, max: 10)
	AccessTTL      time.Duration // Access credential lifetime (default: 30m)
	RefreshTTL     time.Duration // Refresh credential lifetime (default: 14d)

	CredentialStore string // redis, sqlite or memory (default: redis)
	DatabaseFile    string // Path to SQLite database file (default: ./waggle.db)
	PepperFile      string // Path to file containing pepper for password hashing (default: ./pepper)
	CookieSecure    bool   // Secure attribute on credential cookies (default: true)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	return Config{
		Issuer:               getEnvOrDefault("AUTH_ISSUER", "waggle-auth"),
		BootstrapToken:       os.Getenv("BOOTSTRAP_TOKEN"),
		Algorithm:            getEnvOrDefault("AUTH_ALGORITHM", jwtx.AlgorithmHS256),
		Secret:               os.Getenv("AUTH_SECRET"),
		SigningKeyFile:       os.Getenv("AUTH_SIGNING_KEY_FILE"),
		NumKeys:              getEnvIntOrDefault("AUTH_NUM_KEYS", 1),
		AccessTTL:            getEnvDurationOrDefault("AUTH_ACCESS_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTTL:           getEnvDurationOrDefault("AUTH_REFRESH_TTL", jwtx.DefaultRefreshTokenTTL),
		CredentialStore:      strings.ToLower(getEnvOrDefault("AUTH_CREDENTIAL_STORE", CredentialStoreRedis)),
		DatabaseFile:         getEnvOrDefault("AUTH_DATABASE_FILE", "waggle.db"),
		PepperFile:           getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),
		CookieSecure:         getEnvBoolOrDefault("AUTH_COOKIE_SECURE", true),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

// Validate rejects configurations the service cannot start with.
func (c Config) Validate() error {
	var errs []error

	switch c.Algorithm {
	case jwtx.AlgorithmHS256:
		if len(c.Secret) < minSecretLen {
			errs = append(errs, fmt.Errorf("AUTH_SECRET must be at least %d bytes for HS256", minSecretLen))
		}
	case jwtx.AlgorithmES256, jwtx.AlgorithmEdDSA:
	default:
		errs = append(errs, fmt.Errorf("unsupported AUTH_ALGORITHM %q", c.Algorithm))
	}

	switch c.CredentialStore {
	case CredentialStoreRedis, CredentialStoreSQLite, CredentialStoreMemory:
	default:
		errs = append(errs, fmt.Errorf("unsupported AUTH_CREDENTIAL_STORE %q", c.CredentialStore))
	}

	if c.AccessTTL <= 0 || c.RefreshTTL <= 0 {
		errs = append(errs, errors.New("token lifetimes must be positive"))
	}
	if c.RefreshTTL < c.AccessTTL {
		errs = append(errs, errors.New("AUTH_REFRESH_TTL must not be shorter than AUTH_ACCESS_TTL"))
	}

	return errors.Join(errs...)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
