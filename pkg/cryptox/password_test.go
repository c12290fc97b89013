package cryptox

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "cryptox-test")
	if err != nil {
		panic(err)
	}
	SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{"simple password", "password123"},
		{"complex password", "P@ssw0rd!#$%^&*()"},
		{"long password", strings.Repeat("a", 200)},
		{"empty password", ""},
		{"unicode password", "비밀번호🔒"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password)
			require.NoError(t, err)

			parts := strings.Split(hash, "$")
			require.Len(t, parts, 6)
			require.Equal(t, "argon2id", parts[1])
			require.Equal(t, "v=19", parts[2])
			require.Equal(t, "m=19456,t=2,p=1", parts[3])

			require.NoError(t, VerifyPassword(tt.password, hash))
			require.ErrorIs(t, VerifyPassword(tt.password+"x", hash), ErrMismatch)
		})
	}

	t.Run("unique salts", func(t *testing.T) {
		a, err := HashPassword("same")
		require.NoError(t, err)
		b, err := HashPassword("same")
		require.NoError(t, err)
		require.NotEqual(t, a, b)
	})
}

func TestVerifyPasswordBcrypt(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("correct"), bcrypt.MinCost)
	require.NoError(t, err)

	require.NoError(t, VerifyPassword("correct", string(legacy)))
	require.ErrorIs(t, VerifyPassword("wrong", string(legacy)), ErrMismatch)
	require.True(t, NeedsRehash(string(legacy)))

	fresh, err := HashPassword("correct")
	require.NoError(t, err)
	require.False(t, NeedsRehash(fresh))
}

func TestVerifyPasswordInvalidHash(t *testing.T) {
	tests := []struct {
		name string
		hash string
	}{
		{"empty", ""},
		{"plaintext", "correct"},
		{"unknown scheme", "$scrypt$whatever"},
		{"too few parts", "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA"},
		{"wrong version", "$argon2id$v=18$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
		{"bad parameters", "$argon2id$v=19$mem=1$c2FsdA$aGFzaA"},
		{"bad salt", "$argon2id$v=19$m=19456,t=2,p=1$!!!$aGFzaA"},
		{"truncated bcrypt", "$2a$10$short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifyPassword("correct", tt.hash)
			require.ErrorIs(t, err, ErrUnsupportedHash)
		})
	}
}

func TestGeneratePassword(t *testing.T) {
	seen := make(map[string]struct{})
	for range 50 {
		p, err := GeneratePassword()
		require.NoError(t, err)
		require.Len(t, p, 16)
		require.True(t, strings.ContainsAny(p, "0123456789"), p)
		require.True(t, strings.ContainsAny(p, "!@#$%^&*"), p)
		for _, c := range p {
			ok := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || strings.ContainsRune("!@#$%^&*", c)
			require.True(t, ok)
		}
		_, dup := seen[p]
		require.False(t, dup)
		seen[p] = struct{}{}
	}
}

func TestPepperPersisted(t *testing.T) {
	p := GetPepper()
	require.NotEmpty(t, p)

	b, err := os.ReadFile(pepperFile)
	require.NoError(t, err)
	require.Equal(t, p, string(b))
}
