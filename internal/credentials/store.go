// Package credentials hashes and verifies account passwords.
package credentials

import (
	"errors"
	"fmt"
	"log/slog"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

var ErrWeakPassword = errors.New("password does not meet the minimum policy")

// Store applies the password policy and wraps bcrypt with a
// configurable cost factor.
type Store struct {
	minLength int
	cost      int
}

func NewStore(minLength, cost int) *Store {
	if minLength <= 0 {
		minLength = 8
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Store{minLength: minLength, cost: cost}
}

// Hash policy-checks the password and returns its bcrypt hash.
// The plaintext is never logged.
func (s *Store) Hash(password string) (string, error) {
	if err := s.checkPolicy(password); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verify compares the password against a stored hash. bcrypt's compare
// is constant-time over the digest. A malformed stored hash is logged
// and reported as a plain mismatch, never an error.
func (s *Store) Verify(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true
	}
	if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		slog.Error("stored password hash is malformed", "error", err)
	}
	return false
}

func (s *Store) checkPolicy(password string) error {
	if len(password) < s.minLength {
		return ErrWeakPassword
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return ErrWeakPassword
	}
	return nil
}
