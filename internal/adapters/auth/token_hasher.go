package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"eventregistry/internal/domain"
)

type bcryptTokenHasher struct {
	cost int
}

// NewBcryptTokenHasher returns a TokenHasher that bcrypt-hashes registration
// access tokens before they are stored. Tokens are random UUIDs, so a low
// cost is fine; cost <= 0 falls back to the bcrypt default.
func NewBcryptTokenHasher(cost int) domain.TokenHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &bcryptTokenHasher{cost: cost}
}

func (h *bcryptTokenHasher) Hash(token string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(token), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash token: %w", err)
	}
	return string(hash), nil
}

func (h *bcryptTokenHasher) Compare(hash, token string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(token))
}
