// Package jwttoken issues and validates the bearer tokens marketplace
// platforms use against the deal API. Tokens are short-lived HS256 with the
// platform entity ID as subject.
package jwttoken

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"nilclear/pkg/domain"
	dErrors "nilclear/pkg/domain-errors"
)

const issuer = "nilclear"

// Manager signs and validates platform tokens.
type Manager struct {
	signingKey []byte
	ttl        time.Duration
}

func NewManager(signingKey string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Manager{signingKey: []byte(signingKey), ttl: ttl}
}

// Issue mints a token for an authenticated platform.
func (m *Manager) Issue(platform domain.EntityID, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   platform.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign token")
	}
	return signed, nil
}

// TTL returns the token lifetime for advertising expiry to clients.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Validate parses a bearer token and returns the platform it identifies.
//
// Errors: CodeUnauthorized for any invalid, expired, or foreign token.
func (m *Manager) Validate(tokenString string) (domain.EntityID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.signingKey, nil
	}, jwt.WithIssuer(issuer), jwt.WithExpirationRequired())
	if err != nil {
		return domain.EntityID{}, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid or expired token")
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return domain.EntityID{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	platform, err := domain.ParseEntityID(claims.Subject)
	if err != nil {
		return domain.EntityID{}, dErrors.New(dErrors.CodeUnauthorized, "token subject is not a platform id")
	}
	return platform, nil
}
