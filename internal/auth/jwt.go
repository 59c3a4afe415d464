// Package auth verifies and issues the HMAC-signed JWTs callers present.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/expotoworld/programs-service/internal/policy"
	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoToken means the Authorization header was absent or not a token scheme.
	ErrNoToken = errors.New("no bearer token")
	// ErrNotConfigured means no signing secret is available.
	ErrNotConfigured = errors.New("jwt secret not configured")
)

// Claims carried by the identity provider's id tokens.
type Claims struct {
	PreferredUsername string   `json:"preferred_username"`
	Administrator     bool     `json:"administrator"`
	Roles             []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// Role derives the caller's role: administrators, or tokens listing ADMINS
// among their roles, are ADMINS. Everyone else is a learner.
func (c *Claims) Role() policy.Role {
	if c.Administrator {
		return policy.RoleAdmins
	}
	for _, r := range c.Roles {
		if role, ok := policy.ParseRole(r); ok && role == policy.RoleAdmins {
			return policy.RoleAdmins
		}
	}
	return policy.RoleLearners
}

// Username returns preferred_username, falling back to the subject.
func (c *Claims) Username() string {
	if c.PreferredUsername != "" {
		return c.PreferredUsername
	}
	return c.Subject
}

// ExtractToken pulls the token out of an Authorization header. Both the
// "Bearer" and the legacy "JWT" schemes are accepted.
func ExtractToken(header string) (string, error) {
	parts := strings.Fields(header)
	if len(parts) != 2 {
		return "", ErrNoToken
	}
	switch strings.ToLower(parts[0]) {
	case "bearer", "jwt":
		return parts[1], nil
	}
	return "", ErrNoToken
}

// Verifier validates token signatures and registered claims.
type Verifier struct {
	secret   []byte
	issuer   string
	audience string
}

// NewVerifier returns a verifier. issuer and audience are only checked when set.
func NewVerifier(secret, issuer, audience string) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: issuer, audience: audience}
}

// Verify parses tokenString and returns its claims.
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	if v == nil || len(v.secret) == 0 {
		return nil, ErrNotConfigured
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithLeeway(30 * time.Second),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return claims, nil
}

// Issue signs claims with HS256, filling issuer, audience, iat and exp when unset.
func (v *Verifier) Issue(claims Claims, ttl time.Duration) (string, error) {
	if v == nil || len(v.secret) == 0 {
		return "", ErrNotConfigured
	}
	now := time.Now()
	if claims.Issuer == "" {
		claims.Issuer = v.issuer
	}
	if len(claims.Audience) == 0 && v.audience != "" {
		claims.Audience = jwt.ClaimStrings{v.audience}
	}
	if claims.IssuedAt == nil {
		claims.IssuedAt = jwt.NewNumericDate(now)
	}
	if claims.ExpiresAt == nil && ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
