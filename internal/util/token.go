package util

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var (
	jwtSecret []byte
	tokenTTL  = time.Hour

	ErrTokenNotConfigured = errors.New("jwt secret not configured")
	ErrInvalidToken       = errors.New("invalid token")
)

// InitToken configures the signing secret and lifetime for operator tokens.
func InitToken(secret string, ttl time.Duration) {
	jwtSecret = []byte(secret)
	if ttl != 0 {
		tokenTTL = ttl
	}
}

// GenerateToken issues an HS256 token for the given subject.
func GenerateToken(subject string) (string, error) {
	if len(jwtSecret) == 0 {
		return "", ErrTokenNotConfigured
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ValidateToken parses and verifies a token, returning its subject.
func ValidateToken(tokenString string) (string, error) {
	if len(jwtSecret) == 0 {
		return "", ErrTokenNotConfigured
	}

	claims := new(jwt.RegisteredClaims)
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}
