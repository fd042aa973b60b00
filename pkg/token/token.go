// Package token issues and verifies the HS256 bearer tokens used by the API.
// Tokens are self-contained: a valid signature plus an unexpired exp claim is
// the whole proof of identity, nothing is stored server-side.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMalformed means the token text could not be parsed at all.
	ErrMalformed = errors.New("token malformed")
	// ErrInvalidSignature means the token parsed but was not signed with our secret.
	ErrInvalidSignature = errors.New("token signature invalid")
	// ErrExpired means the signature checked out but the exp claim is in the past.
	ErrExpired = errors.New("token expired")
)

// Claims is the payload carried inside a token. The JSON keys match what the
// bot pipeline already expects ("id", "username", plus registered iat/exp).
type Claims struct {
	UserID   uint   `json:"id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Codec signs and verifies tokens with a single shared secret. It is
// immutable after construction and safe for concurrent use.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

func NewCodec(secret []byte, ttl time.Duration) *Codec {
	return &Codec{secret: secret, ttl: ttl}
}

// TTL returns the configured token lifetime.
func (c *Codec) TTL() time.Duration { return c.ttl }

// ExpiresIn renders the lifetime the way the API reports it, e.g. "31536000s".
func (c *Codec) ExpiresIn() string {
	return fmt.Sprintf("%ds", int64(c.ttl.Seconds()))
}

// Issue signs a new token for the given user. exp is always iat + TTL.
func (c *Codec) Issue(userID uint, username string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Parse verifies a token and returns its claims. Only HS256 is accepted, so a
// token carrying alg "none" (or anything else) is rejected before signature
// checking. Failures collapse onto the three sentinel errors above; callers
// must not surface which of malformed/bad-signature occurred to clients.
func (c *Codec) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return nil, ErrInvalidSignature
	default:
		return nil, ErrMalformed
	}
}
