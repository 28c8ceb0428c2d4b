package oidc

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-oidc-broker/oauth2"
)

// DecodeAccessTokenClaims extracts the subject and expiry claims from a
// compact signed access token without verifying its signature. Returns nil
// when the token is empty or not in compact signed format - claim extraction
// is best effort and never aborts the surrounding flow.
func DecodeAccessTokenClaims(rawToken string) *oauth2.AccessTokenClaims {
	claims := decodeMapClaims(rawToken)
	if claims == nil {
		return nil
	}

	sub, _ := claims["sub"].(string)
	exp, _ := claims["exp"].(float64)

	return &oauth2.AccessTokenClaims{
		Subject:   sub,
		ExpiresAt: int64(exp),
	}
}

// DecodeIDTokenClaims extracts the issuer, expiry, issued-at and nonce claims
// from a compact signed ID token without verifying its signature. Returns nil
// when the token is empty or not in compact signed format.
func DecodeIDTokenClaims(rawToken string) *oauth2.IDTokenClaims {
	claims := decodeMapClaims(rawToken)
	if claims == nil {
		return nil
	}

	iss, _ := claims["iss"].(string)
	exp, _ := claims["exp"].(float64)
	iat, _ := claims["iat"].(float64)
	nonce, _ := claims["nonce"].(string)

	return &oauth2.IDTokenClaims{
		Issuer:    iss,
		ExpiresAt: int64(exp),
		IssuedAt:  int64(iat),
		Nonce:     nonce,
	}
}

func decodeMapClaims(rawToken string) jwt.MapClaims {
	if strings.TrimSpace(rawToken) == "" {
		return nil
	}

	unverifiedToken, _, err := jwt.NewParser().ParseUnverified(rawToken, jwt.MapClaims{})
	if err != nil {
		return nil
	}

	claims, ok := unverifiedToken.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}
	return claims
}
