// Package auth resolves the caller identity from a JWT bearer token.
// Unauthenticated requests are allowed and attributed to "anonymous";
// a present but invalid token is rejected.
package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Anonymous is the identity of unauthenticated callers.
const Anonymous = "anonymous"

var ErrInvalidToken = errors.New("invalid or expired token")

// Verifier checks HS256 bearer tokens against a shared secret.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a Verifier for the given signing secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// UserID returns the token subject for the request, Anonymous when no
// Authorization header is present, or ErrInvalidToken.
func (v *Verifier) UserID(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return Anonymous, nil
	}
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return "", ErrInvalidToken
	}

	tok, err := jwt.Parse(raw, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !tok.Valid {
		return "", ErrInvalidToken
	}
	sub, err := tok.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}
