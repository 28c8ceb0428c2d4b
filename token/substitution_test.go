package token_test

import (
	"testing"

	"github.com/jrsteele09/go-oidc-broker/oauth2"
	"github.com/jrsteele09/go-oidc-broker/token"
	"github.com/stretchr/testify/require"
)

func storedTokenSet() *oauth2.TokenSet {
	return &oauth2.TokenSet{
		IssuedAt:     1700000000,
		ExpiresIn:    3600,
		ExpiresAt:    1700003600,
		AccessToken:  "real-access",
		RefreshToken: "real-refresh",
		IDTokenClaims: &oauth2.IDTokenClaims{
			Issuer: "https://auth.example.com",
			Nonce:  "real-nonce",
		},
	}
}

func TestReplaceSecrets(t *testing.T) {
	secrets := token.Secrets{AccessToken: "real-access", RefreshToken: "real-refresh"}

	t.Run("refresh grant body", func(t *testing.T) {
		body := "grant_type=refresh_token&refresh_token=REFRESH_TOKEN_SECURED_BY_OIDC_SERVICE_WORKER_default"
		out, replaced := token.ReplaceSecrets(body, "default", secrets)
		require.True(t, replaced)
		require.Equal(t, "grant_type=refresh_token&refresh_token=real-refresh", out)
	})

	t.Run("revocation body with access token placeholder", func(t *testing.T) {
		body := "token=ACCESS_TOKEN_SECURED_BY_OIDC_SERVICE_WORKER_default&token_type_hint=access_token"
		out, replaced := token.ReplaceSecrets(body, "default", secrets)
		require.True(t, replaced)
		require.Equal(t, "token=real-access&token_type_hint=access_token", out)
	})

	t.Run("placeholder of another configuration is untouched", func(t *testing.T) {
		body := "refresh_token=" + token.RefreshTokenPlaceholder("other")
		out, replaced := token.ReplaceSecrets(body, "default", secrets)
		require.False(t, replaced)
		require.Equal(t, body, out)
	})

	t.Run("empty secret leaves the placeholder unresolved", func(t *testing.T) {
		body := "refresh_token=" + token.RefreshTokenPlaceholder("default")
		out, replaced := token.ReplaceSecrets(body, "default", token.Secrets{AccessToken: "real-access"})
		require.False(t, replaced)
		require.Equal(t, body, out)
	})

	t.Run("no placeholder", func(t *testing.T) {
		out, replaced := token.ReplaceSecrets("grant_type=authorization_code&code=abc", "default", secrets)
		require.False(t, replaced)
		require.Equal(t, "grant_type=authorization_code&code=abc", out)
	})
}

func TestContainsSecretPlaceholder(t *testing.T) {
	require.True(t, token.ContainsSecretPlaceholder("x="+token.AccessTokenPlaceholder("default"), "default"))
	require.True(t, token.ContainsSecretPlaceholder("x="+token.RefreshTokenPlaceholder("default"), "default"))
	require.False(t, token.ContainsSecretPlaceholder("x="+token.AccessTokenPlaceholder("other"), "default"))
	require.False(t, token.ContainsSecretPlaceholder("x=plain", "default"))
}

func TestReplaceCodeVerifier(t *testing.T) {
	t.Run("code exchange body", func(t *testing.T) {
		body := "grant_type=authorization_code&code=abc&code_verifier=" + token.CodeVerifierPlaceholder("default")
		out, replaced := token.ReplaceCodeVerifier(body, "default", "real-verifier")
		require.True(t, replaced)
		require.Equal(t, "grant_type=authorization_code&code=abc&code_verifier=real-verifier", out)
	})

	t.Run("missing stored verifier", func(t *testing.T) {
		body := "code_verifier=" + token.CodeVerifierPlaceholder("default")
		out, replaced := token.ReplaceCodeVerifier(body, "default", "")
		require.False(t, replaced)
		require.Equal(t, body, out)
	})

	t.Run("no placeholder", func(t *testing.T) {
		out, replaced := token.ReplaceCodeVerifier("code_verifier=plain", "default", "real-verifier")
		require.False(t, replaced)
		require.Equal(t, "code_verifier=plain", out)
	})
}

func TestRedact(t *testing.T) {
	t.Run("full token set", func(t *testing.T) {
		tokens := storedTokenSet()
		redacted := token.Redact("default", tokens)
		require.Equal(t, token.AccessTokenPlaceholder("default"), redacted.AccessToken)
		require.Equal(t, token.RefreshTokenPlaceholder("default"), redacted.RefreshToken)
		require.Equal(t, token.NoncePlaceholder("default"), redacted.IDTokenClaims.Nonce)
		// The original set keeps its real values.
		require.Equal(t, "real-access", tokens.AccessToken)
		require.Equal(t, "real-refresh", tokens.RefreshToken)
		require.Equal(t, "real-nonce", tokens.IDTokenClaims.Nonce)
	})

	t.Run("nil token set", func(t *testing.T) {
		require.Nil(t, token.Redact("default", nil))
	})
}
