package oauth2

// RenewMode selects which token expiry governs the derived overall expiry of
// a token set.
type RenewMode string

const (
	// RenewModeDefault takes the earlier of the access token and ID token
	// expiries.
	RenewModeDefault RenewMode = "default"
	// RenewModeAccessTokenInvalid derives expiry from the access token only.
	RenewModeAccessTokenInvalid RenewMode = "access_token_invalid"
	// RenewModeIDTokenInvalid derives expiry from the ID token only.
	RenewModeIDTokenInvalid RenewMode = "id_token_invalid"
)

// Endpoints is the authorization server endpoint set supplied per
// configuration. Field names follow the OIDC discovery document.
type Endpoints struct {
	Issuer                string `json:"issuer"`
	AuthorizationEndpoint string `json:"authorization_endpoint,omitempty"`
	TokenEndpoint         string `json:"token_endpoint"`
	RevocationEndpoint    string `json:"revocation_endpoint,omitempty"`
	UserInfoEndpoint      string `json:"userinfo_endpoint,omitempty"`
}

// AccessTokenClaims is the subset of access token claims the broker decodes.
// Absent when the access token is not in compact signed format.
type AccessTokenClaims struct {
	Subject   string `json:"sub,omitempty"`
	ExpiresAt int64  `json:"exp,omitempty"`
}

// IDTokenClaims is the subset of ID token claims the broker decodes and
// validates against.
type IDTokenClaims struct {
	Issuer    string `json:"iss,omitempty"`
	ExpiresAt int64  `json:"exp,omitempty"`
	IssuedAt  int64  `json:"iat,omitempty"`
	Nonce     string `json:"nonce,omitempty"`
}

// TokenSet is a token response admitted into custody, together with the
// decoded claims and the derived overall expiry.
type TokenSet struct {
	IssuedAt          int64              `json:"issued_at"`
	ExpiresIn         int64              `json:"expires_in,omitempty"`
	ExpiresAt         int64              `json:"expires_at,omitempty"`
	AccessToken       string             `json:"access_token,omitempty"`
	AccessTokenClaims *AccessTokenClaims `json:"access_token_payload,omitempty"`
	IDToken           string             `json:"id_token,omitempty"`
	IDTokenClaims     *IDTokenClaims     `json:"id_token_payload,omitempty"`
	RefreshToken      string             `json:"refresh_token,omitempty"`
}

// Clone returns a deep copy of the token set.
func (ts *TokenSet) Clone() *TokenSet {
	if ts == nil {
		return nil
	}
	clone := *ts
	if ts.AccessTokenClaims != nil {
		claims := *ts.AccessTokenClaims
		clone.AccessTokenClaims = &claims
	}
	if ts.IDTokenClaims != nil {
		claims := *ts.IDTokenClaims
		clone.IDTokenClaims = &claims
	}
	return &clone
}
