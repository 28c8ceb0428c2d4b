package trust_test

import (
	"testing"

	"github.com/jrsteele09/go-oidc-broker/oauth2"
	"github.com/jrsteele09/go-oidc-broker/trust"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestPattern_Matches(t *testing.T) {
	t.Run("wildcard matches anything", func(t *testing.T) {
		p := trust.Wildcard()
		require.True(t, p.Matches("https://anywhere.example.com/path"))
		require.True(t, p.Matches(""))
	})

	t.Run("prefix anchors at the start", func(t *testing.T) {
		p := trust.Prefix("https://api.example.com")
		require.True(t, p.Matches("https://api.example.com/users"))
		require.False(t, p.Matches("https://evil.com/https://api.example.com"))
	})

	t.Run("glob matches the full url", func(t *testing.T) {
		p, err := trust.Glob("https://*.example.com/*")
		require.NoError(t, err)
		require.True(t, p.Matches("https://api.example.com/users"))
		require.False(t, p.Matches("https://example.org/users"))
	})

	t.Run("invalid glob expression", func(t *testing.T) {
		_, err := trust.Glob("https://[invalid")
		require.Error(t, err)
	})
}

func TestMatcher_ListFor(t *testing.T) {
	m := trust.NewMatcher(map[string]trust.List{
		"default": {trust.Prefix("https://api.example.com")},
	})

	t.Run("known configuration", func(t *testing.T) {
		list := m.ListFor("default")
		require.False(t, list.IsWildcard())
		require.True(t, list.Matches("https://api.example.com/users"))
	})

	t.Run("unknown configuration is open", func(t *testing.T) {
		list := m.ListFor("unlisted")
		require.True(t, list.IsWildcard())
	})
}

func TestMatcher_CheckEndpoints(t *testing.T) {
	m := trust.NewMatcher(map[string]trust.List{
		"default": {trust.Prefix("https://auth.example.com")},
		"open":    {trust.Wildcard()},
	})

	endpoints := oauth2.Endpoints{
		Issuer:             "https://auth.example.com",
		TokenEndpoint:      "https://auth.example.com/token",
		RevocationEndpoint: "https://auth.example.com/revoke",
		UserInfoEndpoint:   "https://auth.example.com/userinfo",
	}

	t.Run("all endpoints trusted", func(t *testing.T) {
		require.NoError(t, m.CheckEndpoints("default", endpoints))
	})

	t.Run("untrusted token endpoint", func(t *testing.T) {
		bad := endpoints
		bad.TokenEndpoint = "https://attacker.example.org/token"
		err := m.CheckEndpoints("default", bad)
		require.Error(t, err)
		require.True(t, errors.Is(err, trust.UntrustedEndpointErr))
	})

	t.Run("untrusted issuer", func(t *testing.T) {
		bad := endpoints
		bad.Issuer = "https://attacker.example.org"
		err := m.CheckEndpoints("default", bad)
		require.Error(t, err)
	})

	t.Run("empty endpoints are skipped", func(t *testing.T) {
		partial := oauth2.Endpoints{TokenEndpoint: "https://auth.example.com/token"}
		require.NoError(t, m.CheckEndpoints("default", partial))
	})

	t.Run("wildcard list skips the check", func(t *testing.T) {
		bad := endpoints
		bad.TokenEndpoint = "https://attacker.example.org/token"
		require.NoError(t, m.CheckEndpoints("open", bad))
	})

	t.Run("unknown configuration skips the check", func(t *testing.T) {
		require.NoError(t, m.CheckEndpoints("unlisted", endpoints))
	})
}

func TestMatchesRequest(t *testing.T) {
	list := trust.List{trust.Prefix("https://api.example.com")}

	t.Run("list match", func(t *testing.T) {
		require.True(t, trust.MatchesRequest(list, "https://api.example.com/users", ""))
	})

	t.Run("userinfo endpoint counts as trusted", func(t *testing.T) {
		require.True(t, trust.MatchesRequest(list, "https://auth.example.com/userinfo", "https://auth.example.com/userinfo"))
	})

	t.Run("no match", func(t *testing.T) {
		require.False(t, trust.MatchesRequest(list, "https://elsewhere.example.org/users", "https://auth.example.com/userinfo"))
	})

	t.Run("wildcard matches everything", func(t *testing.T) {
		require.True(t, trust.MatchesRequest(trust.List{trust.Wildcard()}, "https://anywhere.example.org", ""))
	})
}
