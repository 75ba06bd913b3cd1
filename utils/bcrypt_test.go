package utils

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndComparePassword(t *testing.T) {
	hashed, err := HashPassword("shop-secret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := ComparePassword(string(hashed), "shop-secret"); err != nil {
		t.Fatalf("compare: %v", err)
	}
	if err := ComparePassword(string(hashed), "wrong"); err == nil {
		t.Fatal("wrong password accepted")
	}
}

func TestBcryptCostFromEnv(t *testing.T) {
	t.Setenv("BCRYPT_COST", "4")
	hashed, err := HashPassword("quick")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	cost, err := bcrypt.Cost(hashed)
	if err != nil {
		t.Fatalf("cost: %v", err)
	}
	if cost != 4 {
		t.Fatalf("cost = %d, want 4", cost)
	}

	t.Setenv("BCRYPT_COST", "999")
	if got := bcryptCost(); got != bcrypt.DefaultCost {
		t.Fatalf("out-of-range cost = %d, want default %d", got, bcrypt.DefaultCost)
	}
}
