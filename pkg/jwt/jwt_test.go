package jwt

import (
	"testing"

	"github.com/google/uuid"
)

func TestGenerateAndValidateToken(t *testing.T) {
	userID := uuid.New()
	privileges := []string{"sale:create", "drug:view"}

	token, err := GenerateToken(userID, "cashier@pharmacy.local", "Test Cashier", "CASHIER", privileges, "v1")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("user id = %s, want %s", claims.UserID, userID)
	}
	if claims.RoleCode != "CASHIER" {
		t.Errorf("role = %s, want CASHIER", claims.RoleCode)
	}
	if len(claims.Privileges) != 2 || claims.Privileges[0] != "sale:create" {
		t.Errorf("privileges = %v", claims.Privileges)
	}
	if claims.TokenVersion != "v1" {
		t.Errorf("token version = %s, want v1", claims.TokenVersion)
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	for _, bad := range []string{"", "not-a-token", "aaa.bbb.ccc"} {
		if _, err := ValidateToken(bad); err != ErrInvalidToken {
			t.Errorf("ValidateToken(%q) err = %v, want ErrInvalidToken", bad, err)
		}
	}
}

func TestValidateTokenRejectsTampered(t *testing.T) {
	token, err := GenerateToken(uuid.New(), "a@b.c", "A", "ADMIN", nil, "v1")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	tampered := token[:len(token)-2] + "xx"
	if _, err := ValidateToken(tampered); err == nil {
		t.Error("expected tampered token to be rejected")
	}
}
