// Package token issues and verifies the HS256 access tokens carried in the
// Authorization header.
package token

import (
	"errors"
	"fmt"
	"time"

	"kashpages/internal/domain/access"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoSecret     = errors.New("jwt secret not configured")
	ErrInvalidToken = errors.New("invalid or expired token")
)

type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Handle string `json:"handle"`
	Role   string `json:"role"`
	Plan   string `json:"plan"`
	jwt.RegisteredClaims
}

type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for p.
func (i *Issuer) Issue(p access.Principal) (string, error) {
	if len(i.secret) == 0 {
		return "", ErrNoSecret
	}
	now := i.now()
	claims := Claims{
		UserID: p.UserID,
		Email:  p.Email,
		Handle: p.Handle,
		Role:   p.Role,
		Plan:   p.Plan,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Parse verifies raw and returns the principal it was issued for.
func (i *Issuer) Parse(raw string) (access.Principal, error) {
	if len(i.secret) == 0 {
		return access.Principal{}, ErrNoSecret
	}
	var claims Claims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil || !tok.Valid || claims.UserID == "" {
		return access.Principal{}, ErrInvalidToken
	}
	return access.Principal{
		UserID: claims.UserID,
		Email:  claims.Email,
		Handle: claims.Handle,
		Role:   claims.Role,
		Plan:   claims.Plan,
	}, nil
}
