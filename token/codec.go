package token

import (
	"encoding/json"
	"time"

	"github.com/jrsteele09/go-oidc-broker/oauth2"
	"github.com/jrsteele09/go-oidc-broker/oidc"
	"github.com/pkg/errors"
)

// InvalidTokensErr is returned when a freshly received token set fails OIDC
// validation. The failure reason is attached as wrapping context.
var InvalidTokensErr = errors.New("invalid tokens")

// HideInput carries the per-configuration context the codec needs to process
// a token endpoint response body.
type HideInput struct {
	Body           []byte            // raw token endpoint response body
	StoredTokens   *oauth2.TokenSet  // currently stored set, or nil
	StoredNonce    string            // stored nonce value
	HasStoredNonce bool              // presence marker for the stored nonce
	Issuer         string            // configured issuer, for validation
	RenewMode      oauth2.RenewMode  // active renewal policy
}

// Codec admits token endpoint responses into custody and produces the
// secret-free projection returned to callers.
type Codec struct {
	validator *oidc.Validator
	nowTime   func() time.Time
}

// CodecOption defines a function type to modify the Codec instance.
type CodecOption func(*Codec)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) CodecOption {
	return func(c *Codec) {
		c.nowTime = nowFunc
	}
}

// WithValidator sets the OIDC validator used on freshly received token sets.
func WithValidator(v *oidc.Validator) CodecOption {
	return func(c *Codec) {
		c.validator = v
	}
}

// NewCodec creates a new Codec.
func NewCodec(options ...CodecOption) *Codec {
	c := &Codec{
		validator: oidc.NewValidator(),
		nowTime:   time.Now,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// HideTokens parses a token endpoint response body, decodes its claims,
// derives the overall expiry, validates the set, and returns both the token
// set to store and the serialized secret-free body to hand back to the
// caller. A validation failure aborts the transform and the store must be
// left untouched.
func (c *Codec) HideTokens(configurationName string, in HideInput) (*oauth2.TokenSet, []byte, error) {
	var response oauth2.TokenResponse
	if err := json.Unmarshal(in.Body, &response); err != nil {
		return nil, nil, errors.Wrap(err, "[Codec.HideTokens] parse token response")
	}

	tokens := &oauth2.TokenSet{
		IssuedAt:     response.IssuedAt,
		ExpiresIn:    response.ExpiresIn,
		AccessToken:  response.AccessToken,
		IDToken:      response.IDToken,
		RefreshToken: response.RefreshToken,
	}
	if tokens.IssuedAt == 0 {
		tokens.IssuedAt = c.nowTime().Unix()
	}

	tokens.AccessTokenClaims = oidc.DecodeAccessTokenClaims(tokens.AccessToken)
	if tokens.IDToken != "" {
		tokens.IDTokenClaims = oidc.DecodeIDTokenClaims(tokens.IDToken)
	}

	tokens.ExpiresAt = ComputeExpiresAt(tokens, in.RenewMode)

	if result := c.validator.ValidateTokens(tokens, in.StoredNonce, in.HasStoredNonce, in.Issuer); !result.Valid {
		return nil, nil, errors.Wrapf(InvalidTokensErr, "[Codec.HideTokens] %s", result.Reason)
	}

	// Preserve a non-rotated refresh token from the previously stored set.
	if tokens.RefreshToken == "" && in.StoredTokens != nil && in.StoredTokens.RefreshToken != "" {
		tokens.RefreshToken = in.StoredTokens.RefreshToken
	}

	exposed := response
	exposed.IssuedAt = tokens.IssuedAt
	exposed.ExpiresAt = tokens.ExpiresAt
	exposed.AccessToken = AccessTokenPlaceholder(configurationName)
	if tokens.RefreshToken != "" {
		exposed.RefreshToken = RefreshTokenPlaceholder(configurationName)
	}
	exposed.AccessTokenPayload = tokens.AccessTokenClaims
	if tokens.IDTokenClaims != nil {
		payload := *tokens.IDTokenClaims
		if payload.Nonce != "" && in.HasStoredNonce {
			payload.Nonce = NoncePlaceholder(configurationName)
		}
		exposed.IDTokenPayload = &payload
	}

	exposedBody, err := json.Marshal(&exposed)
	if err != nil {
		return nil, nil, errors.Wrap(err, "[Codec.HideTokens] serialize exposed response")
	}

	return tokens, exposedBody, nil
}
