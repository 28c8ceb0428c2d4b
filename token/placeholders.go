package token

import "github.com/jrsteele09/go-oidc-broker/oauth2"

// Placeholder roles. A placeholder is the only form of a secret a hosted
// application ever observes; the real value stays inside the session store
// and the outgoing request it is substituted into.
const (
	AccessTokenRole  = "ACCESS_TOKEN_SECURED_BY_OIDC_SERVICE_WORKER"
	RefreshTokenRole = "REFRESH_TOKEN_SECURED_BY_OIDC_SERVICE_WORKER"
	NonceRole        = "NONCE_SECURED_BY_OIDC_SERVICE_WORKER"
	CodeVerifierRole = "CODE_VERIFIER_SECURED_BY_OIDC_SERVICE_WORKER"
)

// AccessTokenPlaceholder returns the access token placeholder for a
// configuration, of the fixed shape ROLE_<configurationName>.
func AccessTokenPlaceholder(configurationName string) string {
	return AccessTokenRole + "_" + configurationName
}

// RefreshTokenPlaceholder returns the refresh token placeholder for a
// configuration.
func RefreshTokenPlaceholder(configurationName string) string {
	return RefreshTokenRole + "_" + configurationName
}

// NoncePlaceholder returns the nonce placeholder for a configuration.
func NoncePlaceholder(configurationName string) string {
	return NonceRole + "_" + configurationName
}

// CodeVerifierPlaceholder returns the PKCE code verifier placeholder for a
// configuration.
func CodeVerifierPlaceholder(configurationName string) string {
	return CodeVerifierRole + "_" + configurationName
}

// Redact returns a copy of the token set with the access token, refresh token
// and exposed nonce claim replaced by their placeholder forms. This is the
// only projection of a stored token set that leaves the broker.
func Redact(configurationName string, tokens *oauth2.TokenSet) *oauth2.TokenSet {
	if tokens == nil {
		return nil
	}
	redacted := tokens.Clone()
	redacted.AccessToken = AccessTokenPlaceholder(configurationName)
	if redacted.RefreshToken != "" {
		redacted.RefreshToken = RefreshTokenPlaceholder(configurationName)
	}
	if redacted.IDTokenClaims != nil && redacted.IDTokenClaims.Nonce != "" {
		redacted.IDTokenClaims.Nonce = NoncePlaceholder(configurationName)
	}
	return redacted
}
