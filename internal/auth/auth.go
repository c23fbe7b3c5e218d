// Package auth resolves the authenticated identity for incoming requests.
// Tokens are issued by the external identity provider; this layer only
// validates the signature and extracts the username and roles, which is all
// the chat core needs.
package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when the token is missing, malformed or
	// fails signature validation.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when the token has expired.
	ErrExpiredToken = errors.New("token has expired")
)

// Claims carries the identity attributes the server consumes.
// PreferredUsername follows the OIDC claim name the identity provider emits;
// Subject is the fallback when it is absent.
type Claims struct {
	PreferredUsername string   `json:"preferred_username"`
	Roles             []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// Username returns the identity string for these claims: the preferred
// username when present, otherwise the token subject.
func (c *Claims) Username() string {
	if c.PreferredUsername != "" {
		return c.PreferredUsername
	}
	return c.Subject
}

// Verifier validates bearer tokens against a shared HMAC secret.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a Verifier for the given secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify validates tokenString and returns its claims.
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Username() == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// FromRequest extracts and validates the token carried by an HTTP request:
// the Authorization header ("Bearer <token>") or, for WebSocket upgrades
// where browsers cannot set headers, the "token" query parameter.
func (v *Verifier) FromRequest(r *http.Request) (*Claims, error) {
	tokenString := ""
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		tokenString = strings.TrimPrefix(header, "Bearer ")
	}
	if tokenString == "" {
		tokenString = r.URL.Query().Get("token")
	}
	if tokenString == "" {
		return nil, ErrInvalidToken
	}
	return v.Verify(tokenString)
}

// IssueToken signs a token for username with the given roles and lifetime.
// Production tokens come from the identity provider; this is used by tests
// and local development.
func (v *Verifier) IssueToken(username string, roles []string, lifetime time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		PreferredUsername: username,
		Roles:             roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}
