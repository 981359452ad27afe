// Package driverauth guards cmd/tschsimd's RUN/PAUSE/RESET/STATUS command
// surface with a bcrypt-hashed operator secret and an HMAC-signed bearer
// token, adapted from the teacher's backend/auth package. This is ordinary
// driver-side API auth, not a simulated-network security feature — spec.md
// §1's "no cryptographic MAC" Non-goal scopes the simulated protocol only.
package driverauth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// HashSecret bcrypt-hashes the operator secret configured for the driver.
func HashSecret(secret string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	return string(b), err
}

// CheckSecret reports whether secret matches the bcrypt hash.
func CheckSecret(hash, secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}

// ErrInvalidToken is returned for any malformed, expired, or unsigned token.
var ErrInvalidToken = errors.New("driverauth: invalid token")

// GenerateToken issues an HMAC-signed bearer token scoping one operator
// role ("admin" or "viewer") for ttl. Format:
// b64(role)|expUnix|sig, matching the teacher's lightweight
// "JWT-like" token shape (GenerateJWT) without the email claim, which has
// no analogue for a single-operator simulation driver.
func GenerateToken(role string, ttl time.Duration, secret string) string {
	exp := time.Now().Add(ttl).Unix()
	parts := []string{
		base64.RawStdEncoding.EncodeToString([]byte(role)),
		fmt.Sprintf("%d", exp),
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strings.Join(parts, "|")))
	sig := base64.RawStdEncoding.EncodeToString(mac.Sum(nil))
	parts = append(parts, sig)
	return strings.Join(parts, "|")
}

// ParseToken verifies the HMAC signature and expiry, returning the
// token's role claim.
func ParseToken(tok, secret string) (role string, err error) {
	parts := strings.Split(tok, "|")
	if len(parts) != 3 {
		return "", ErrInvalidToken
	}
	roleBytes, err := base64.RawStdEncoding.DecodeString(parts[0])
	if err != nil {
		return "", ErrInvalidToken
	}
	var expUnix int64
	if _, err := fmt.Sscanf(parts[1], "%d", &expUnix); err != nil {
		return "", ErrInvalidToken
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strings.Join(parts[:2], "|")))
	expected := base64.RawStdEncoding.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(parts[2])) {
		return "", ErrInvalidToken
	}
	if time.Now().After(time.Unix(expUnix, 0)) {
		return "", ErrInvalidToken
	}
	return string(roleBytes), nil
}
