package token

import "strings"

// Secrets are the real values substituted for placeholders in outbound
// request bodies.
type Secrets struct {
	AccessToken  string
	RefreshToken string
}

// ReplaceSecrets rewrites any access or refresh token placeholder belonging
// to the configuration with the real secret. The body is treated as opaque
// text; only exact placeholder literals are replaced. Returns the rewritten
// body and whether anything was substituted. A placeholder whose secret is
// empty is left in place unresolved.
func ReplaceSecrets(body, configurationName string, secrets Secrets) (string, bool) {
	replaced := false

	if refreshPlaceholder := RefreshTokenPlaceholder(configurationName); strings.Contains(body, refreshPlaceholder) && secrets.RefreshToken != "" {
		body = strings.ReplaceAll(body, refreshPlaceholder, secrets.RefreshToken)
		replaced = true
	}

	if accessPlaceholder := AccessTokenPlaceholder(configurationName); strings.Contains(body, accessPlaceholder) && secrets.AccessToken != "" {
		body = strings.ReplaceAll(body, accessPlaceholder, secrets.AccessToken)
		replaced = true
	}

	return body, replaced
}

// ContainsSecretPlaceholder reports whether the body textually contains an
// access or refresh token placeholder of the configuration.
func ContainsSecretPlaceholder(body, configurationName string) bool {
	return strings.Contains(body, RefreshTokenPlaceholder(configurationName)) ||
		strings.Contains(body, AccessTokenPlaceholder(configurationName))
}

// ReplaceCodeVerifier rewrites the configuration's code verifier placeholder
// with the real verifier. Returns the rewritten body and whether a
// substitution happened.
func ReplaceCodeVerifier(body, configurationName, codeVerifier string) (string, bool) {
	placeholder := CodeVerifierPlaceholder(configurationName)
	if !strings.Contains(body, placeholder) || codeVerifier == "" {
		return body, false
	}
	return strings.ReplaceAll(body, placeholder, codeVerifier), true
}
