// Package session encodes the user identity into a signed, time-limited
// token carried in a cookie. Decoding fails soft: a missing, expired or
// tampered token is indistinguishable from no session at all.
package session

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Codec struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

// NewCodec builds a codec around the process-wide signing secret.
// The secret is read-only after startup and never rotated at runtime.
func NewCodec(secret string, ttl time.Duration, secure bool) *Codec {
	return &Codec{secret: []byte(secret), ttl: ttl, secure: secure}
}

// Encode signs a token whose subject is the user id.
func (c *Codec) Encode(userID int64) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Decode returns the user id carried by the token. The second result is
// false for empty, expired, tampered or malformed tokens; Decode never
// returns an error to callers.
func (c *Codec) Decode(token string) (int64, bool) {
	if token == "" {
		return 0, false
	}

	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil || !parsed.Valid {
		return 0, false
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
