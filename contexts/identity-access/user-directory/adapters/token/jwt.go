package token

import (
	"context"
	"strings"

	"improvdb/contexts/identity-access/user-directory/domain/entities"
	domainerrors "improvdb/contexts/identity-access/user-directory/domain/errors"
	"improvdb/contexts/identity-access/user-directory/ports"

	"github.com/golang-jwt/jwt/v4"
)

type bearerClaims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Verifier validates HMAC-signed bearer tokens and extracts identity claims.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

func (v *Verifier) Verify(_ context.Context, tokenString string) (entities.Claims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return entities.Claims{}, domainerrors.ErrInvalidToken
	}

	claims := &bearerClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domainerrors.ErrInvalidToken
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return entities.Claims{}, domainerrors.ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return entities.Claims{}, domainerrors.ErrInvalidToken
	}
	return entities.Claims{
		Subject: claims.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
	}, nil
}

// Issue signs a token for the given claims, used by tests and local tooling.
func (v *Verifier) Issue(claims entities.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, bearerClaims{
		Email: claims.Email,
		Name:  claims.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: claims.Subject,
		},
	})
	return token.SignedString(v.secret)
}

var _ ports.TokenVerifier = (*Verifier)(nil)
