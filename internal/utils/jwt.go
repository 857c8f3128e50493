// Package utils holds the token and password primitives the auth
// handlers build on.
package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessToken is a signed HS256 JWT plus its expiry.  Guests and staff
// send it in the Authorization header on every protected call.
type AccessToken struct {
	Token string
	Exp   time.Time
}

// RefreshToken is the long-lived token a client exchanges for new
// access tokens.  Only its SHA-256 hash is persisted; the raw value
// exists once, in the login or refresh response.
type RefreshToken struct {
	Raw string
	Exp time.Time
}

// NewAccessToken signs an HS256 token carrying the user id (sub) and
// role claims that JWTAuth reads back on every request.
func NewAccessToken(secret string, userID uint64, role string, ttlMin int) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"iss":  "hotel-reservation",
		"iat":  now.Unix(),
		"exp":  exp.Unix(),
	})
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// NewRefreshToken draws 48 random bytes and returns them hex-encoded
// (96 characters) with an expiry ttlDays ahead.
func NewRefreshToken(ttlDays int) (RefreshToken, error) {
	buf := make([]byte, 48)
	if _, err := rand.Read(buf); err != nil {
		return RefreshToken{}, err
	}
	return RefreshToken{
		Raw: hex.EncodeToString(buf),
		Exp: time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour),
	}, nil
}

// HashRefreshRaw is the storable form of a refresh token.  The
// refresh_tokens table only ever sees this hash, so its rows cannot be
// replayed against the API.
func HashRefreshRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
