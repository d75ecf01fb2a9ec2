// Package cryptox wraps BCrypt password hashing.
package cryptox

import (
	"crypto/rand"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// MinCost is the lowest BCrypt cost accepted when hashing.
const MinCost = bcrypt.DefaultCost

var ErrCostTooLow = errors.New("bcrypt cost too low")

// HashPassword returns a BCrypt hash of password with the given cost.
// Costs below MinCost are rejected.
func HashPassword(password string, cost int) (string, error) {
	if cost < MinCost {
		return "", fmt.Errorf("%w: %d < %d", ErrCostTooLow, cost, MinCost)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the BCrypt hash. The
// comparison is constant time; a malformed hash never matches.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

var (
	dummyMu     sync.Mutex
	dummyHashes = map[int]string{}
)

// DummyHash returns a BCrypt hash of the given cost that no password
// matches. Hashes are generated once per cost and reused.
func DummyHash(cost int) string {
	cost = min(max(cost, MinCost), bcrypt.MaxCost)

	dummyMu.Lock()
	defer dummyMu.Unlock()

	if h, ok := dummyHashes[cost]; ok {
		return h
	}
	secret := make([]byte, 32)
	_, _ = rand.Read(secret)
	hash, err := bcrypt.GenerateFromPassword(secret, cost)
	if err != nil {
		panic(err)
	}
	dummyHashes[cost] = string(hash)
	return string(hash)
}

// CheckDummy runs a comparison against a hash no password matches. It is
// called for unknown usernames so their response time matches a real check
// against a stored hash of the same cost.
func CheckDummy(password string, cost int) {
	_ = CheckPassword(password, DummyHash(cost))
}

// Cost returns the cost a BCrypt hash was generated with.
func Cost(hash string) (int, error) {
	return bcrypt.Cost([]byte(hash))
}

// IsHash reports whether s looks like a BCrypt hash.
func IsHash(s string) bool {
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}
