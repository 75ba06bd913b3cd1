package utils

import (
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost reads BCRYPT_COST, falling back to the library default when
// unset or out of range.
func bcryptCost() int {
	if v := os.Getenv("BCRYPT_COST"); v != "" {
		if cost, err := strconv.Atoi(v); err == nil && cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			return cost
		}
	}
	return bcrypt.DefaultCost
}

func HashPassword(s string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(s), bcryptCost())
}

func ComparePassword(hashed string, normal string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(normal))
}
