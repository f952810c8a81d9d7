package auth

import (
	"errors"
	"fmt"
	"time"

	"conferencegateway/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMissingSubject is returned for a valid token without a sub claim.
var ErrMissingSubject = errors.New("token has no subject")

type jwtClaims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles,omitempty"`
}

type jwtVerifier struct {
	secret []byte
	leeway time.Duration
}

// NewJWTVerifier returns a TokenVerifier that accepts HS256 JWTs signed with
// secret. Expiry and not-before are checked with the given leeway.
func NewJWTVerifier(secret string, leeway time.Duration) domain.TokenVerifier {
	return &jwtVerifier{secret: []byte(secret), leeway: leeway}
}

func (v *jwtVerifier) Verify(token string) (string, error) {
	claims := &jwtClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(v.leeway),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}
	if claims.Subject == "" {
		return "", ErrMissingSubject
	}
	return claims.Subject, nil
}
