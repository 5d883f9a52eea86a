package security_test

import (
	"testing"

	"github.com/namay10/userhub/internal/security"
)

func TestHashPasswordNeverStoresPlaintext(t *testing.T) {
	plain := "secret1"

	hash, err := security.HashPassword(plain)

	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	if hash == plain {
		t.Fatalf("hash equals the plaintext password")
	}

	if hash == "" {
		t.Fatalf("hash is empty")
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := security.HashPassword("secret1")

	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	if err := security.CheckPassword(hash, "secret1"); err != nil {
		t.Errorf("expected matching password to verify, got: %v", err)
	}

	if err := security.CheckPassword(hash, "secret2"); err == nil {
		t.Errorf("expected mismatched password to fail verification")
	}
}
