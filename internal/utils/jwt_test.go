package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionToken_RoundTrip(t *testing.T) {
	exp := time.Now().Add(time.Hour)
	tok, err := NewSessionToken("k", "user-1", "sess-1", exp)
	require.NoError(t, err)

	claims, err := ParseSessionToken("k", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "sess-1", claims.SessionID)
	assert.WithinDuration(t, exp, claims.ExpiresAt, time.Second)
}

func TestParseSessionToken_Rejects(t *testing.T) {
	valid, err := NewSessionToken("k", "u", "s", time.Now().Add(time.Hour))
	require.NoError(t, err)
	expired, err := NewSessionToken("k", "u", "s", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	noJTI, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("k"))
	require.NoError(t, err)
	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "u",
		ID:      "s",
	}).SignedString([]byte("k"))
	require.NoError(t, err)
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   "u",
		ID:        "s",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("k"))
	require.NoError(t, err)

	tests := []struct {
		name   string
		secret string
		raw    string
	}{
		{"empty", "k", ""},
		{"garbage", "k", "not.a.jwt"},
		{"wrong secret", "other", valid.Token},
		{"expired", "k", expired.Token},
		{"missing jti", "k", noJTI},
		{"missing exp", "k", noExp},
		{"wrong algorithm", "k", hs512},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseSessionToken(tc.secret, tc.raw)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
