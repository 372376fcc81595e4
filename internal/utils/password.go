package utils

import (
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// ErrEmptyPassword is returned by HashPassword for an empty plain text.
var ErrEmptyPassword = errors.New("empty password")

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

// ErrPasswordTooLong is returned by HashPassword for inputs over
// MaxPasswordBytes bytes.
var ErrPasswordTooLong = errors.New("password too long")

func normalizeCost(cost int) int {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return bcrypt.DefaultCost
	}
	return cost
}

// HashPassword returns bcrypt hash using the given cost. Costs outside
// bcrypt's range fall back to bcrypt.DefaultCost.
func HashPassword(plain string, cost int) (string, error) {
	if plain == "" {
		return "", ErrEmptyPassword
	}
	if len(plain) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), normalizeCost(cost))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares bcrypt hash and plain password.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

var (
	dummyMu     sync.Mutex
	dummyHashes = map[int][]byte{}
)

// dummyHash returns a fixed hash generated at cost, built once per cost.
func dummyHash(cost int) []byte {
	dummyMu.Lock()
	defer dummyMu.Unlock()
	h, ok := dummyHashes[cost]
	if !ok {
		h, _ = bcrypt.GenerateFromPassword([]byte("csvboard-dummy-password"), cost)
		dummyHashes[cost] = h
	}
	return h
}

// BurnPasswordCheck runs a bcrypt comparison against a fixed hash of the
// given cost so a login for an unknown user costs about as much as one with
// a wrong password. Pass the cost real hashes are generated with.
func BurnPasswordCheck(plain string, cost int) {
	_ = bcrypt.CompareHashAndPassword(dummyHash(normalizeCost(cost)), []byte(plain))
}
