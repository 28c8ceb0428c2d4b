package oauth2

// TokenResponse represents the body of an OAuth2 token endpoint response.
// This is the standard token endpoint response format as defined in RFC 6749,
// extended with the broker-computed companion fields that are serialized back
// to the hosted application after the real secrets have been hidden.
type TokenResponse struct {
	// AccessToken is the token used to access protected resources.
	// Example: "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."
	// Usage: Include in Authorization header: "Bearer <access_token>"
	// In broker replies this field carries the placeholder, never the secret.
	AccessToken string `json:"access_token,omitempty"`

	// IDToken is the OpenID Connect ID token containing user identity claims.
	// Only present when the "openid" scope was requested.
	IDToken string `json:"id_token,omitempty"`

	// TokenType indicates how to use the access token (typically "Bearer").
	TokenType string `json:"token_type,omitempty"`

	// ExpiresIn is the provider-declared access token lifetime in seconds.
	ExpiresIn int64 `json:"expires_in,omitempty"`

	// RefreshToken is an opaque token used to obtain new access tokens.
	// In broker replies this field carries the placeholder, never the secret.
	RefreshToken string `json:"refresh_token,omitempty"`

	// Scope is the space-separated list of granted scopes.
	Scope string `json:"scope,omitempty"`

	// IssuedAt is the unix second the token set was issued. Defaulted to the
	// broker's current time when the provider omits it.
	IssuedAt int64 `json:"issued_at,omitempty"`

	// ExpiresAt is the broker-derived overall expiry (unix seconds), computed
	// from the active renewal policy. Never set by the provider.
	ExpiresAt int64 `json:"expires_at,omitempty"`

	// AccessTokenPayload holds the decoded access token claims, when the
	// access token is in compact signed format. Claims are decoded without
	// signature verification.
	AccessTokenPayload *AccessTokenClaims `json:"access_token_payload,omitempty"`

	// IDTokenPayload holds the decoded ID token claims. In broker replies the
	// nonce claim carries the placeholder when a nonce is held in custody.
	IDTokenPayload *IDTokenClaims `json:"id_token_payload,omitempty"`
}
