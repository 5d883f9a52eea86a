package auth_test

import (
	"strings"
	"testing"
	"time"

	"github.com/namay10/userhub/internal/auth"
)

func TestGenerateAndVerify(t *testing.T) {
	m := auth.NewManager("test-secret", time.Hour)

	token, err := m.Generate("user-1", "ann@x.com", "admin")

	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	claims, err := m.Verify(token)

	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}

	if claims.UserID != "user-1" {
		t.Errorf("UserID = %q, want %q", claims.UserID, "user-1")
	}

	if claims.Email != "ann@x.com" {
		t.Errorf("Email = %q, want %q", claims.Email, "ann@x.com")
	}

	if claims.Role != "admin" {
		t.Errorf("Role = %q, want %q", claims.Role, "admin")
	}

	if claims.JTI == "" {
		t.Errorf("expected a non-empty jti")
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	m := auth.NewManager("test-secret", -time.Minute)

	token, err := m.Generate("user-1", "ann@x.com", "user")

	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if _, err := m.Verify(token); err == nil {
		t.Fatalf("expected expired token to fail verification")
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	issuer := auth.NewManager("secret-a", time.Hour)
	verifier := auth.NewManager("secret-b", time.Hour)

	token, err := issuer.Generate("user-1", "ann@x.com", "user")

	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if _, err := verifier.Verify(token); err == nil {
		t.Fatalf("expected signature mismatch to fail verification")
	}
}

func TestVerifyTamperedToken(t *testing.T) {
	m := auth.NewManager("test-secret", time.Hour)

	token, err := m.Generate("user-1", "ann@x.com", "user")

	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	parts := strings.Split(token, ".")

	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %d parts", len(parts))
	}

	// flip the first byte of the payload segment
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}

	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	if _, err := m.Verify(tampered); err == nil {
		t.Fatalf("expected tampered payload to fail verification")
	}
}

func TestVerifyGarbage(t *testing.T) {
	m := auth.NewManager("test-secret", time.Hour)

	if _, err := m.Verify("not-a-jwt"); err == nil {
		t.Fatalf("expected malformed token to fail verification")
	}
}
