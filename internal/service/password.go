package service

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

type PasswordHasher struct {
	cost int
	// dummyHash is compared against when no stored hash exists, so a login
	// for an unknown email costs the same bcrypt work as a wrong password.
	dummyHash string
}

func NewPasswordHasher(cost int) *PasswordHasher {
	dummy, _ := bcrypt.GenerateFromPassword([]byte("dummy-password"), cost)
	return &PasswordHasher{cost: cost, dummyHash: string(dummy)}
}

func (h *PasswordHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func (h *PasswordHasher) Matches(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// MatchesNothing runs a full comparison that always fails.
func (h *PasswordHasher) MatchesNothing(password string) bool {
	h.Matches(password, h.dummyHash)
	return false
}
