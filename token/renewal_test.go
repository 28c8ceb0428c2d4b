package token_test

import (
	"math"
	"testing"

	"github.com/jrsteele09/go-oidc-broker/oauth2"
	"github.com/jrsteele09/go-oidc-broker/token"
	"github.com/stretchr/testify/require"
)

func TestComputeExpiresAt(t *testing.T) {
	tokens := func() *oauth2.TokenSet {
		return &oauth2.TokenSet{
			IssuedAt:          1700000000,
			ExpiresIn:         3600,
			AccessTokenClaims: &oauth2.AccessTokenClaims{ExpiresAt: 1700003000},
			IDTokenClaims:     &oauth2.IDTokenClaims{ExpiresAt: 1700002000},
		}
	}

	t.Run("default mode takes the earlier expiry", func(t *testing.T) {
		require.Equal(t, int64(1700002000), token.ComputeExpiresAt(tokens(), oauth2.RenewModeDefault))
	})

	t.Run("access token mode ignores the id token", func(t *testing.T) {
		require.Equal(t, int64(1700003000), token.ComputeExpiresAt(tokens(), oauth2.RenewModeAccessTokenInvalid))
	})

	t.Run("id token mode ignores the access token", func(t *testing.T) {
		require.Equal(t, int64(1700002000), token.ComputeExpiresAt(tokens(), oauth2.RenewModeIDTokenInvalid))
	})

	t.Run("access expiry falls back to issued_at plus expires_in", func(t *testing.T) {
		set := tokens()
		set.AccessTokenClaims = nil
		require.Equal(t, int64(1700000000+3600), token.ComputeExpiresAt(set, oauth2.RenewModeAccessTokenInvalid))
	})

	t.Run("id token without exp claim never bounds the default mode", func(t *testing.T) {
		set := tokens()
		set.IDTokenClaims = nil
		require.Equal(t, int64(1700003000), token.ComputeExpiresAt(set, oauth2.RenewModeDefault))
	})

	t.Run("id token mode without exp claim is unbounded", func(t *testing.T) {
		set := tokens()
		set.IDTokenClaims = &oauth2.IDTokenClaims{}
		require.Equal(t, int64(math.MaxInt64), token.ComputeExpiresAt(set, oauth2.RenewModeIDTokenInvalid))
	})
}
