package token

import (
	"math"

	"github.com/jrsteele09/go-oidc-broker/oauth2"
)

// neverExpires stands in for an ID token without an expiry claim, which is
// treated as never expiring.
const neverExpires = int64(math.MaxInt64)

// ComputeExpiresAt derives the overall expiry (unix seconds) of a token set
// per the configured renewal policy.
//
// Access token expiry is its decoded exp claim when present, otherwise
// issued_at + expires_in. ID token expiry is its decoded exp claim when
// present, otherwise unbounded. The default mode takes the earlier of the
// two; the other modes use exactly one of them.
func ComputeExpiresAt(tokens *oauth2.TokenSet, mode oauth2.RenewMode) int64 {
	accessExpiresAt := tokens.IssuedAt + tokens.ExpiresIn
	if tokens.AccessTokenClaims != nil && tokens.AccessTokenClaims.ExpiresAt > 0 {
		accessExpiresAt = tokens.AccessTokenClaims.ExpiresAt
	}

	idExpiresAt := neverExpires
	if tokens.IDTokenClaims != nil && tokens.IDTokenClaims.ExpiresAt > 0 {
		idExpiresAt = tokens.IDTokenClaims.ExpiresAt
	}

	switch mode {
	case oauth2.RenewModeAccessTokenInvalid:
		return accessExpiresAt
	case oauth2.RenewModeIDTokenInvalid:
		return idExpiresAt
	default:
		if idExpiresAt < accessExpiresAt {
			return idExpiresAt
		}
		return accessExpiresAt
	}
}
