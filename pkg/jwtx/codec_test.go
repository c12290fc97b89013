package jwtx_test

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/wagglex2/waggle/pkg/jwtx"
)

const exampleIssuer = "waggle-auth"

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type clock struct{ t time.Time }

func (c *clock) Now() time.Time          { return c.t }
func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newHS256Codec(t *testing.T, opts ...jwtx.CodecOption) *jwtx.Codec {
	t.Helper()
	km, err := jwtx.NewKeyManager(jwtx.KeyManagerOptions{
		Algorithm: jwtx.AlgorithmHS256,
		Secret:    testSecret,
	})
	require.NoError(t, err)
	codec, err := jwtx.NewCodec(km, exampleIssuer, opts...)
	require.NoError(t, err)
	return codec
}

var adaProfile = jwtx.Profile{Username: "ada", Nickname: "Ada", Role: "ROLE_USER"}

func TestCodecRoundTrip(t *testing.T) {
	algorithms := []string{jwtx.AlgorithmHS256, jwtx.AlgorithmEdDSA, jwtx.AlgorithmES256}

	for _, alg := range algorithms {
		t.Run(alg, func(t *testing.T) {
			km, err := jwtx.NewKeyManager(jwtx.KeyManagerOptions{
				Algorithm: alg,
				Secret:    testSecret,
				NumKeys:   2,
			})
			require.NoError(t, err)
			codec, err := jwtx.NewCodec(km, exampleIssuer)
			require.NoError(t, err)

			cred, err := codec.Issue("user-1", jwtx.KindAccess, adaProfile, 5*time.Minute)
			require.NoError(t, err)
			require.NotEmpty(t, cred.Token)
			require.NotEmpty(t, cred.ID)
			require.Equal(t, jwtx.KindAccess, cred.Kind)

			claims, err := codec.Verify(cred.Token)
			require.NoError(t, err)
			require.Equal(t, "user-1", claims.Subject)
			require.Equal(t, exampleIssuer, claims.Issuer)
			require.Equal(t, jwtx.KindAccess, claims.Kind)
			require.Equal(t, adaProfile, claims.Profile())
			require.Equal(t, cred.ID, claims.ID)
			require.True(t, cred.ExpiresAt.Equal(claims.ExpiresAt.Time))
		})
	}
}

func TestCodecRefreshCarriesNoProfile(t *testing.T) {
	codec := newHS256Codec(t)

	cred, err := codec.Issue("user-1", jwtx.KindRefresh, adaProfile, time.Hour)
	require.NoError(t, err)

	claims, err := codec.Verify(cred.Token)
	require.NoError(t, err)
	require.Equal(t, jwtx.KindRefresh, claims.Kind)
	require.Equal(t, jwtx.Profile{}, claims.Profile())
}

func TestCodecUniqueIDs(t *testing.T) {
	codec := newHS256Codec(t)

	a, err := codec.Issue("user-1", jwtx.KindRefresh, jwtx.Profile{}, time.Hour)
	require.NoError(t, err)
	b, err := codec.Issue("user-1", jwtx.KindRefresh, jwtx.Profile{}, time.Hour)
	require.NoError(t, err)

	require.NotEqual(t, a.ID, b.ID)
	require.NotEqual(t, a.Token, b.Token)
}

func TestCodecExpiry(t *testing.T) {
	t.Run("zero ttl is expired immediately", func(t *testing.T) {
		codec := newHS256Codec(t)

		cred, err := codec.Issue("user-1", jwtx.KindAccess, adaProfile, 0)
		require.NoError(t, err)

		_, err = codec.Verify(cred.Token)
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})

	t.Run("mocked clock past expiry", func(t *testing.T) {
		clk := &clock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
		codec := newHS256Codec(t, jwtx.WithClock(clk.Now))

		cred, err := codec.Issue("user-1", jwtx.KindAccess, adaProfile, time.Minute)
		require.NoError(t, err)

		clk.Advance(59 * time.Second)
		_, err = codec.Verify(cred.Token)
		require.NoError(t, err)

		clk.Advance(2 * time.Second)
		_, err = codec.Verify(cred.Token)
		require.ErrorIs(t, err, jwtx.ErrExpired)
		require.NotErrorIs(t, err, jwtx.ErrBadSignature)
		require.NotErrorIs(t, err, jwtx.ErrMalformed)
	})

	t.Run("leeway tolerates skew", func(t *testing.T) {
		clk := &clock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
		codec := newHS256Codec(t, jwtx.WithClock(clk.Now), jwtx.WithLeeway(30*time.Second))

		cred, err := codec.Issue("user-1", jwtx.KindAccess, adaProfile, time.Minute)
		require.NoError(t, err)

		clk.Advance(80 * time.Second)
		_, err = codec.Verify(cred.Token)
		require.NoError(t, err)
	})

	t.Run("not yet valid", func(t *testing.T) {
		clk := &clock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
		codec := newHS256Codec(t, jwtx.WithClock(clk.Now))

		cred, err := codec.Issue("user-1", jwtx.KindAccess, adaProfile, time.Hour)
		require.NoError(t, err)

		clk.Advance(-time.Minute)
		_, err = codec.Verify(cred.Token)
		require.ErrorIs(t, err, jwtx.ErrNotYetValid)
	})
}

func TestCodecVerifyKind(t *testing.T) {
	codec := newHS256Codec(t)

	access, err := codec.Issue("user-1", jwtx.KindAccess, adaProfile, time.Hour)
	require.NoError(t, err)
	refresh, err := codec.Issue("user-1", jwtx.KindRefresh, jwtx.Profile{}, time.Hour)
	require.NoError(t, err)

	t.Run("refresh in access slot", func(t *testing.T) {
		_, err := codec.VerifyKind(refresh.Token, jwtx.KindAccess)
		require.ErrorIs(t, err, jwtx.ErrWrongKind)
	})

	t.Run("access in refresh slot", func(t *testing.T) {
		_, err := codec.VerifyKind(access.Token, jwtx.KindRefresh)
		require.ErrorIs(t, err, jwtx.ErrWrongKind)
	})

	t.Run("matching kinds", func(t *testing.T) {
		_, err := codec.VerifyKind(access.Token, jwtx.KindAccess)
		require.NoError(t, err)
		_, err = codec.VerifyKind(refresh.Token, jwtx.KindRefresh)
		require.NoError(t, err)
	})
}

func TestCodecRejectsTampering(t *testing.T) {
	codec := newHS256Codec(t)

	cred, err := codec.Issue("user-1", jwtx.KindAccess, adaProfile, time.Hour)
	require.NoError(t, err)
	parts := strings.Split(cred.Token, ".")
	require.Len(t, parts, 3)

	t.Run("modified payload", func(t *testing.T) {
		payload, err := base64.RawURLEncoding.DecodeString(parts[1])
		require.NoError(t, err)
		forged := strings.Replace(string(payload), "ROLE_USER", "ROLE_ADMIN", 1)
		token := parts[0] + "." + base64.RawURLEncoding.EncodeToString([]byte(forged)) + "." + parts[2]

		_, err = codec.Verify(token)
		require.ErrorIs(t, err, jwtx.ErrBadSignature)
	})

	t.Run("signed by another key", func(t *testing.T) {
		other, err := jwtx.NewKeyManager(jwtx.KeyManagerOptions{
			Algorithm: jwtx.AlgorithmHS256,
			Secret:    []byte("another-secret-another-secret-00"),
		})
		require.NoError(t, err)
		otherCodec, err := jwtx.NewCodec(other, exampleIssuer)
		require.NoError(t, err)

		foreign, err := otherCodec.Issue("user-1", jwtx.KindAccess, adaProfile, time.Hour)
		require.NoError(t, err)

		_, err = codec.Verify(foreign.Token)
		require.ErrorIs(t, err, jwtx.ErrBadSignature)
	})

	t.Run("foreign issuer", func(t *testing.T) {
		km, err := jwtx.NewKeyManager(jwtx.KeyManagerOptions{
			Algorithm: jwtx.AlgorithmHS256,
			Secret:    testSecret,
		})
		require.NoError(t, err)
		otherCodec, err := jwtx.NewCodec(km, "someone-else")
		require.NoError(t, err)

		foreign, err := otherCodec.Issue("user-1", jwtx.KindAccess, adaProfile, time.Hour)
		require.NoError(t, err)

		_, err = codec.Verify(foreign.Token)
		require.ErrorIs(t, err, jwtx.ErrBadSignature)
	})

	t.Run("alg none", func(t *testing.T) {
		claims := jwt.MapClaims{
			"sub":        "user-1",
			"iss":        exampleIssuer,
			"token_type": "access",
			"exp":        time.Now().Add(time.Hour).Unix(),
		}
		tok := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
		raw, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = codec.Verify(raw)
		require.ErrorIs(t, err, jwtx.ErrBadSignature)
	})
}

func TestCodecMalformed(t *testing.T) {
	codec := newHS256Codec(t)

	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"two segments", "abc.def"},
		{"bad base64", "!!!.@@@.###"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Verify(tt.raw)
			require.ErrorIs(t, err, jwtx.ErrMalformed)
		})
	}
}

func TestKindOf(t *testing.T) {
	codec := newHS256Codec(t)

	access, err := codec.Issue("user-1", jwtx.KindAccess, adaProfile, time.Hour)
	require.NoError(t, err)
	refresh, err := codec.Issue("user-1", jwtx.KindRefresh, jwtx.Profile{}, time.Hour)
	require.NoError(t, err)
	expired, err := codec.Issue("user-1", jwtx.KindRefresh, jwtx.Profile{}, 0)
	require.NoError(t, err)

	require.Equal(t, jwtx.KindAccess, codec.KindOf(access.Token))
	require.Equal(t, jwtx.KindRefresh, codec.KindOf(refresh.Token))
	require.Equal(t, jwtx.KindRefresh, codec.KindOf(expired.Token))
	require.Equal(t, jwtx.KindUnknown, codec.KindOf("garbage"))
	require.Equal(t, jwtx.KindUnknown, codec.KindOf(""))
}

func TestCodecIssueValidation(t *testing.T) {
	codec := newHS256Codec(t)

	_, err := codec.Issue("", jwtx.KindAccess, adaProfile, time.Hour)
	require.Error(t, err)

	_, err = codec.Issue("user-1", jwtx.Kind("bogus"), adaProfile, time.Hour)
	require.Error(t, err)
}
