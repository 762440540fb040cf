package auth

import (
	"testing"
	"time"
)

func TestGenerateAndParseToken(t *testing.T) {
	tm := NewTokenManager("test-secret", 15)

	token, expiresAt, err := tm.GenerateToken("customer42", RoleCustomer)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}
	if remaining := time.Until(expiresAt); remaining < 14*time.Minute || remaining > 15*time.Minute {
		t.Fatalf("unexpected expiry window: %v", remaining)
	}

	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.Subject != "customer42" {
		t.Fatalf("subject = %s", claims.Subject)
	}
	if claims.Role != RoleCustomer {
		t.Fatalf("role = %s", claims.Role)
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, _, err := NewTokenManager("secret-a", 15).GenerateToken("agent1", RoleAgent)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := NewTokenManager("secret-b", 15).ParseToken(token); err == nil {
		t.Fatal("expected signature validation error")
	}
}

func TestParseTokenGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret", 15)
	if _, err := tm.ParseToken("not.a.token"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestTokenManagerDefaultTTL(t *testing.T) {
	tm := NewTokenManager("test-secret", 0)
	if tm.TTL() != time.Hour {
		t.Fatalf("ttl = %v, want 1h", tm.TTL())
	}
}
