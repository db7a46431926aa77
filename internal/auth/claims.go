package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the fields the UI reads from the backend's JWT.
type Claims struct {
	Name      string
	Email     string
	ExpiresAt time.Time
}

// ParseClaims decodes token without verifying its signature. Verification
// stays with the backend, which rejects forged tokens with 401.
func ParseClaims(token string) (Claims, error) {
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mc); err != nil {
		return Claims{}, fmt.Errorf("parse token: %w", err)
	}

	var c Claims
	c.Name, _ = mc["name"].(string)
	if email, ok := mc["email"].(string); ok && email != "" {
		c.Email = email
	} else if sub, err := mc.GetSubject(); err == nil {
		c.Email = sub
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	return c, nil
}
