package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var hashCost = passwordHashCost()

// SetHashCost changes the bcrypt cost used by HashPassword. Values
// outside bcrypt's accepted range are rejected.
func SetHashCost(cost int) error {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	hashCost = cost
	return nil
}

// HashPassword will generate a password hash
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", WrapError(err, CategoryInternal, "failed to hash password")
	}
	return string(h), nil
}

// ComparePasswordAndHash will validate the given cleartext
// password matches the hashed password
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		// a malformed stored hash must not leak as anything but a mismatch
		return ErrMismatchedHashAndPassword.WithSource(err)
	}
	return nil
}

type bcryptAuthenticator struct{}

// NewPasswordAuthenticator returns the bcrypt PasswordAuthenticator.
func NewPasswordAuthenticator() PasswordAuthenticator { return bcryptAuthenticator{} }

func (bcryptAuthenticator) HashPassword(password string) (string, error) {
	return HashPassword(password)
}

func (bcryptAuthenticator) ComparePasswordAndHash(password, hash string) error {
	return ComparePasswordAndHash(password, hash)
}
