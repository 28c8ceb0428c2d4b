package oidc

import (
	"time"

	"github.com/jrsteele09/go-oidc-broker/oauth2"
)

// Validation reason strings surfaced to callers when a freshly received token
// set is rejected.
const (
	ReasonIssuerMismatch = "issuer does not match"
	ReasonTokenExpired   = "token expired"
	ReasonTokenTooOld    = "token is used from too long time"
	ReasonNonceMismatch  = "nonce does not match"
)

// maxIDTokenAge is the maximum accepted age of an ID token's issued-at claim.
const maxIDTokenAge = 7 * 24 * time.Hour

// Result is the outcome of validating a token set.
type Result struct {
	Valid  bool
	Reason string
}

// Validator performs the claim checks applied to freshly received token
// sets: issuer, expiry, issued-at staleness and nonce.
// Signature verification, audience verification and TLS-based issuer trust
// are delegated elsewhere and deliberately not re-validated here.
type Validator struct {
	nowTime func() time.Time // nowTime function (injectable for testing)
}

// ValidatorOption defines a function type to modify the Validator instance.
type ValidatorOption func(*Validator)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ValidatorOption {
	return func(v *Validator) {
		v.nowTime = nowFunc
	}
}

// NewValidator creates a new Validator instance
func NewValidator(options ...ValidatorOption) *Validator {
	v := &Validator{nowTime: time.Now}
	for _, opt := range options {
		opt(v)
	}
	return v
}

// ValidateTokens checks a token set against the configured issuer and the
// stored nonce. A token set without decoded ID token claims is valid - there
// are no claims to check. Each check produces its own reason string so the
// caller can surface a human-readable failure.
func (v *Validator) ValidateTokens(tokens *oauth2.TokenSet, storedNonce string, hasStoredNonce bool, issuer string) Result {
	claims := tokens.IDTokenClaims
	if claims == nil {
		return Result{Valid: true}
	}

	now := v.nowTime()

	if claims.Issuer != issuer {
		return Result{Reason: ReasonIssuerMismatch}
	}

	if claims.ExpiresAt > 0 && now.Unix() >= claims.ExpiresAt {
		return Result{Reason: ReasonTokenExpired}
	}

	if claims.IssuedAt > 0 && now.Sub(time.Unix(claims.IssuedAt, 0)) > maxIDTokenAge {
		return Result{Reason: ReasonTokenTooOld}
	}

	if claims.Nonce != "" && hasStoredNonce && claims.Nonce != storedNonce {
		return Result{Reason: ReasonNonceMismatch}
	}

	return Result{Valid: true}
}
