// Package tokenid decodes the profile claims of an OIDC-style ID token into
// an identity. Signature verification happened upstream at the provider; this
// is claim extraction only and must never be used as an authentication check.
package tokenid

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/veltrix/storefront/internal/session/domain"
)

var ErrNoProfile = errors.New("token carries no profile claims")

type profileClaims struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
	jwt.RegisteredClaims
}

// Decode extracts name, email and picture claims from a raw ID token.
func Decode(raw string) (domain.Identity, error) {
	var claims profileClaims

	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(raw, &claims); err != nil {
		return domain.Identity{}, fmt.Errorf("parse id token: %w", err)
	}

	if claims.Name == "" && claims.Email == "" {
		return domain.Identity{}, ErrNoProfile
	}

	return domain.Identity{
		DisplayName: claims.Name,
		Email:       claims.Email,
		PhotoURL:    claims.Picture,
	}, nil
}
