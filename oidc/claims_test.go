package oidc_test

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/jrsteele09/go-oidc-broker/oidc"
	"github.com/stretchr/testify/require"
)

func makeCompactToken(t *testing.T, claims map[string]any) string {
	t.Helper()
	header, err := json.Marshal(map[string]string{"alg": "RS256", "typ": "JWT"})
	require.NoError(t, err)
	payload, err := json.Marshal(claims)
	require.NoError(t, err)
	encode := base64.RawURLEncoding.EncodeToString
	return encode(header) + "." + encode(payload) + "." + encode([]byte("signature"))
}

func TestDecodeAccessTokenClaims(t *testing.T) {
	t.Run("compact token", func(t *testing.T) {
		rawToken := makeCompactToken(t, map[string]any{"sub": "user-1", "exp": 1700000900})
		claims := oidc.DecodeAccessTokenClaims(rawToken)
		require.NotNil(t, claims)
		require.Equal(t, "user-1", claims.Subject)
		require.Equal(t, int64(1700000900), claims.ExpiresAt)
	})

	t.Run("opaque token yields no claims", func(t *testing.T) {
		require.Nil(t, oidc.DecodeAccessTokenClaims("not-a-compact-token"))
	})

	t.Run("empty token yields no claims", func(t *testing.T) {
		require.Nil(t, oidc.DecodeAccessTokenClaims(""))
	})
}

func TestDecodeIDTokenClaims(t *testing.T) {
	t.Run("compact token", func(t *testing.T) {
		rawToken := makeCompactToken(t, map[string]any{
			"iss":   "https://issuer.example.com",
			"exp":   1700000900,
			"iat":   1700000000,
			"nonce": "nonce-value",
		})
		claims := oidc.DecodeIDTokenClaims(rawToken)
		require.NotNil(t, claims)
		require.Equal(t, "https://issuer.example.com", claims.Issuer)
		require.Equal(t, int64(1700000900), claims.ExpiresAt)
		require.Equal(t, int64(1700000000), claims.IssuedAt)
		require.Equal(t, "nonce-value", claims.Nonce)
	})

	t.Run("missing claims decode to zero values", func(t *testing.T) {
		rawToken := makeCompactToken(t, map[string]any{"iss": "https://issuer.example.com"})
		claims := oidc.DecodeIDTokenClaims(rawToken)
		require.NotNil(t, claims)
		require.Zero(t, claims.ExpiresAt)
		require.Zero(t, claims.IssuedAt)
		require.Empty(t, claims.Nonce)
	})

	t.Run("malformed token yields no claims", func(t *testing.T) {
		require.Nil(t, oidc.DecodeIDTokenClaims("a.b"))
	})
}
