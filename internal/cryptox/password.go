// Package cryptox holds the credential primitives of the launch server:
// password hash verification, TOTP codes and legacy refresh-token derivation.
package cryptox

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// PasswordVerifier checks a plaintext password against a stored hash.
// The hashing scheme is pluggable; the server ships with bcrypt.
type PasswordVerifier interface {
	Verify(hash, password string) bool
}

// BcryptVerifier verifies bcrypt hashes ($2a$, $2b$, $2y$).
type BcryptVerifier struct{}

func (BcryptVerifier) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// HashPassword produces a bcrypt hash suitable for BcryptVerifier.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("empty password")
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
