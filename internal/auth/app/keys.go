package app

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/wagglex2/waggle/pkg/jwtx"
)

// InitAuthKeys builds the KeyManager for the configured algorithm.
//
// HS256 signs with AUTH_SECRET, so credentials survive restarts and are
// shared by every replica holding the same secret. ES256 and EdDSA load
// AUTH_SIGNING_KEY_FILE when set; otherwise AUTH_NUM_KEYS keys are generated
// and every credential dies with the process.
func InitAuthKeys(cfg Config, logger *slog.Logger) (*jwtx.KeyManager, error) {
	opts := jwtx.KeyManagerOptions{
		Algorithm: cfg.Algorithm,
		NumKeys:   cfg.NumKeys,
	}

	switch {
	case cfg.Algorithm == jwtx.AlgorithmHS256:
		opts.Secret = []byte(cfg.Secret)
	case cfg.SigningKeyFile != "":
		pem, err := os.ReadFile(cfg.SigningKeyFile)
		if err != nil {
			return nil, fmt.Errorf("read signing key: %w", err)
		}
		opts.PrivateKeyPEM = pem
	}

	km, err := jwtx.NewKeyManager(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize key manager: %w", err)
	}

	logger.Info("signing keys ready",
		"algorithm", cfg.Algorithm,
		"num_keys", km.KeySet.Len(),
		"issuer", cfg.Issuer,
	)
	if cfg.Algorithm != jwtx.AlgorithmHS256 && cfg.SigningKeyFile == "" {
		logger.Warn("ephemeral signing keys: all existing tokens are now invalid")
	}

	return km, nil
}
