// Package hash wraps bcrypt password hashing.
package hash

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var ErrFailedToHashPassword = errors.New("failed to hash password")

type Service struct {
	cost int
}

func New() *Service {
	return &Service{
		cost: bcrypt.DefaultCost,
	}
}

// HashPassword returns a salted, one-way hash of the password.
func (s *Service) HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFailedToHashPassword, err)
	}
	return string(hashed), nil
}

// CheckPasswordHash reports whether the plaintext password matches the hash.
func (s *Service) CheckPasswordHash(password, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}
