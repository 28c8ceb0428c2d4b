package oidc_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-oidc-broker/oauth2"
	"github.com/jrsteele09/go-oidc-broker/oidc"
	"github.com/stretchr/testify/require"
)

const testIssuer = "https://issuer.example.com"

func newTestValidator() *oidc.Validator {
	now := time.Unix(1700000000, 0)
	return oidc.NewValidator(oidc.WithNowTime(func() time.Time { return now }))
}

func validClaims() *oauth2.IDTokenClaims {
	return &oauth2.IDTokenClaims{
		Issuer:    testIssuer,
		ExpiresAt: 1700000600,
		IssuedAt:  1700000000 - 3600,
		Nonce:     "nonce-value",
	}
}

func TestValidator_ValidateTokens(t *testing.T) {
	v := newTestValidator()

	t.Run("valid token set", func(t *testing.T) {
		tokens := &oauth2.TokenSet{IDTokenClaims: validClaims()}
		result := v.ValidateTokens(tokens, "nonce-value", true, testIssuer)
		require.True(t, result.Valid)
		require.Empty(t, result.Reason)
	})

	t.Run("no decoded claims is valid", func(t *testing.T) {
		tokens := &oauth2.TokenSet{AccessToken: "opaque"}
		result := v.ValidateTokens(tokens, "", false, testIssuer)
		require.True(t, result.Valid)
	})

	t.Run("issuer mismatch", func(t *testing.T) {
		claims := validClaims()
		claims.Issuer = "https://evil.example.com"
		result := v.ValidateTokens(&oauth2.TokenSet{IDTokenClaims: claims}, "nonce-value", true, testIssuer)
		require.False(t, result.Valid)
		require.Equal(t, oidc.ReasonIssuerMismatch, result.Reason)
	})

	t.Run("token expired", func(t *testing.T) {
		claims := validClaims()
		claims.ExpiresAt = 1700000000 - 1
		result := v.ValidateTokens(&oauth2.TokenSet{IDTokenClaims: claims}, "nonce-value", true, testIssuer)
		require.False(t, result.Valid)
		require.Equal(t, oidc.ReasonTokenExpired, result.Reason)
	})

	t.Run("issued at too old", func(t *testing.T) {
		claims := validClaims()
		claims.IssuedAt = 1700000000 - int64((8 * 24 * time.Hour).Seconds())
		result := v.ValidateTokens(&oauth2.TokenSet{IDTokenClaims: claims}, "nonce-value", true, testIssuer)
		require.False(t, result.Valid)
		require.Equal(t, oidc.ReasonTokenTooOld, result.Reason)
	})

	t.Run("nonce mismatch", func(t *testing.T) {
		claims := validClaims()
		claims.Nonce = "another-nonce"
		result := v.ValidateTokens(&oauth2.TokenSet{IDTokenClaims: claims}, "nonce-value", true, testIssuer)
		require.False(t, result.Valid)
		require.Equal(t, oidc.ReasonNonceMismatch, result.Reason)
	})

	t.Run("nonce claim without stored nonce is valid", func(t *testing.T) {
		tokens := &oauth2.TokenSet{IDTokenClaims: validClaims()}
		result := v.ValidateTokens(tokens, "", false, testIssuer)
		require.True(t, result.Valid)
	})

	t.Run("absent optional claims pass their checks", func(t *testing.T) {
		claims := &oauth2.IDTokenClaims{Issuer: testIssuer}
		result := v.ValidateTokens(&oauth2.TokenSet{IDTokenClaims: claims}, "nonce-value", true, testIssuer)
		require.True(t, result.Valid)
	})
}
