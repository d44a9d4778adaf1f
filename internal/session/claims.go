package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of the API token claims shown to operators.
type Claims struct {
	Subject   string
	Email     string
	Role      string
	Country   string
	ExpiresAt time.Time
}

type tokenClaims struct {
	Email   string `json:"email"`
	Role    string `json:"role"`
	Country string `json:"country"`
	jwt.RegisteredClaims
}

// ParseClaims decodes the token payload without verifying its signature.
// The API is the authority on validity; the result is for display only.
func ParseClaims(token string) (*Claims, error) {
	var tc tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &tc); err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims := &Claims{
		Subject: tc.Subject,
		Email:   tc.Email,
		Role:    tc.Role,
		Country: tc.Country,
	}
	if tc.ExpiresAt != nil {
		claims.ExpiresAt = tc.ExpiresAt.Time
	}
	return claims, nil
}

// Expired reports whether the claims carry an expiry that has passed.
func (c *Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}
