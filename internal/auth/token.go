package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token parse failures, distinguished so callers can tell a garbled
// string from a forged one.
var (
	ErrMalformed    = errors.New("token malformed")
	ErrBadSignature = errors.New("token signature invalid")
	ErrExpired      = errors.New("token expired")
)

// Claims is the token payload. The wire shape matches what the frontend
// already expects: a "user" and a "role" claim, HS256-signed.
type Claims struct {
	User string `json:"user"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Tokens issues and reads signed identity tokens with a fixed shared
// secret. There is no rotation and no server-side revocation; a token is
// valid for as long as its signature (and optional expiry) holds.
type Tokens struct {
	secret []byte
	ttl    time.Duration
}

// NewTokens constructs a token issuer/reader. A ttl of zero issues tokens
// without an expiry claim.
func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue signs a token carrying the given username and role.
func (t *Tokens) Issue(username, role string) (string, error) {
	claims := Claims{
		User: username,
		Role: role,
	}
	if t.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(t.ttl))
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Parse verifies the signature and returns the embedded claims verbatim.
func (t *Tokens) Parse(tokenString string) (Claims, error) {
	claims := Claims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrBadSignature
		}
		return t.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Claims{}, ErrMalformed
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Claims{}, ErrBadSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrExpired
		default:
			return Claims{}, ErrBadSignature
		}
	}
	if !token.Valid {
		return Claims{}, ErrBadSignature
	}
	return claims, nil
}
