// If you are AI: This file hashes and checks passwords with bcrypt and validates credential shape.

package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// minCredentialLen is the shortest accepted user name or password.
const minCredentialLen = 4

// ValidateCredentials rejects user names and passwords that are too short to be real.
func ValidateCredentials(name, password string) error {
	if len(name) < minCredentialLen || len(password) < minCredentialLen {
		return fmt.Errorf("%w: name and password must be at least %d characters",
			ErrInvalidCredentials, minCredentialLen)
	}
	return nil
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares password with a stored bcrypt hash.
// Returns ErrInvalidCredentials on mismatch.
func CheckPassword(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrInvalidCredentials
	}
	if err != nil {
		return fmt.Errorf("compare password: %w", err)
	}
	return nil
}
