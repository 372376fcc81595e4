package utils // package utils provides helper functions for token creation and hashing

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// ErrInvalidToken is returned when a session token fails parsing or
// validation for any reason (signature, algorithm, expiry, missing claims).
var ErrInvalidToken = errors.New("invalid session token")

// SessionToken represents a signed session cookie value along with its
// expiry. The token carries the user ID in "sub" and the server-side session
// ID in "jti"; both are checked against the session store on every request.
type SessionToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// SessionClaims are the claims extracted from a verified session token.
type SessionClaims struct {
	UserID    string
	SessionID string
	ExpiresAt time.Time
}

// NewSessionToken builds and signs an HS256 JWT for a session. The expiry of
// the token matches the expiry of the session record it points to.
func NewSessionToken(secret, userID, sessionID string, exp time.Time) (SessionToken, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ID:        sessionID,
		ExpiresAt: jwt.NewNumericDate(exp),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, Exp: exp.UTC()}, nil
}

// ParseSessionToken verifies the signature and expiry of raw and returns its
// claims. Only HS256 is accepted.
func ParseSessionToken(secret, raw string) (SessionClaims, error) {
	if raw == "" {
		return SessionClaims{}, ErrInvalidToken
	}
	var claims jwt.RegisteredClaims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !tok.Valid {
		return SessionClaims{}, ErrInvalidToken
	}
	if claims.Subject == "" || claims.ID == "" {
		return SessionClaims{}, ErrInvalidToken
	}
	return SessionClaims{
		UserID:    claims.Subject,
		SessionID: claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
