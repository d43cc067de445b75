package token

import (
	"errors"
	"time"

	"github.com/coursemarket/backend/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the identity claims carried by an issued token. The token is a
// bearer capability: middleware re-validates the claims against live user
// state on every request, because there is no revocation list.
type Claims struct {
	jwt.RegisteredClaims
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

type Codec struct {
	secret []byte
	ttl    time.Duration
}

func NewCodec(secret []byte, ttl time.Duration) *Codec {
	return &Codec{secret: secret, ttl: ttl}
}

func (c *Codec) Issue(user *domain.User) (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
		Email: user.Email,
		Role:  user.Role,
	})
	return t.SignedString(c.secret)
}

// Verify parses and validates raw. Any expected failure (bad signature,
// malformed structure, wrong signing method, expiry) comes back as
// domain.ErrTokenInvalid.
func (c *Codec) Verify(raw string) (*Claims, error) {
	claims := &Claims{}

	t, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return c.secret, nil
	})
	if err != nil || !t.Valid {
		return nil, domain.ErrTokenInvalid
	}

	if claims.Subject == "" {
		return nil, domain.ErrTokenInvalid
	}
	return claims, nil
}
