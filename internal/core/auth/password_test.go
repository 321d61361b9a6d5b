package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher_HashIsSalted(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	h1, err := h.Hash("secret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	h2, err := h.Hash("secret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if h1 == h2 {
		t.Fatalf("two hashes of the same password must differ")
	}

	for _, stored := range []string{h1, h2} {
		ok, err := h.Verify(stored, "secret")
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if !ok {
			t.Fatalf("correct password rejected")
		}
	}
}

func TestPasswordHasher_WrongPassword(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	stored, err := h.Hash("secret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	ok, err := h.Verify(stored, "wrong")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if ok {
		t.Fatalf("wrong password accepted")
	}
}

func TestPasswordHasher_CorruptHashFailsClosed(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	ok, err := h.Verify("not-a-bcrypt-hash", "secret")
	if ok {
		t.Fatalf("corrupt hash must never verify")
	}
	if err == nil {
		t.Fatalf("corrupt hash should be reported to the caller")
	}
}

func TestNewPasswordHasher_CostFallback(t *testing.T) {
	h := NewPasswordHasher(0)
	if h.cost != bcrypt.DefaultCost {
		t.Fatalf("expected default cost %d, got %d", bcrypt.DefaultCost, h.cost)
	}
}
