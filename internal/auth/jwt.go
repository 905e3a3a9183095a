// Package auth issues and verifies the signed credentials a connection
// presents at handshake time.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"studyhall/internal/domain"
)

var ErrInvalidToken = errors.New("invalid token")

// JWT wraps a signing secret for issuing and verifying tokens.
type JWT struct{ secret []byte }

func New(secret string) *JWT { return &JWT{secret: []byte(secret)} }

// Sign creates a token carrying the identity with the given TTL.
func (j *JWT) Sign(id domain.Identity, ttl time.Duration) (string, error) {
	if id.UserID == "" {
		return "", errors.New("empty user id")
	}
	claims := jwt.MapClaims{
		"sub":      string(id.UserID),
		"username": id.Username,
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(ttl).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(j.secret)
}

// Verify checks signature and expiry and returns the bound identity.
func (j *JWT) Verify(tok string) (domain.Identity, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return j.secret, nil
	})
	if err != nil {
		return domain.Identity{}, err
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return domain.Identity{}, ErrInvalidToken
	}
	username, _ := claims["username"].(string)
	return domain.Identity{UserID: domain.UserID(sub), Username: username}, nil
}

// Bind resolves a handshake payload to an identity. A present credential
// must verify or the handshake fails; without one the connection gets a
// transient guest identity keyed by its own connection id. Guest presence
// is therefore not stable across reconnects.
func (j *JWT) Bind(token, displayName, connectionID string) (domain.Identity, error) {
	if token != "" {
		return j.Verify(token)
	}
	if displayName == "" {
		displayName = domain.GuestUsername
	}
	return domain.NewIdentity(domain.UserID(connectionID), displayName)
}
