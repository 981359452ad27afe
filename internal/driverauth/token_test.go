package driverauth

import (
	"testing"
	"time"
)

func TestHashAndCheckSecretRoundtrip(t *testing.T) {
	hash, err := HashSecret("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashSecret: %v", err)
	}
	if !CheckSecret(hash, "correct horse battery staple") {
		t.Fatal("expected the original secret to check out against its own hash")
	}
	if CheckSecret(hash, "wrong secret") {
		t.Fatal("expected a wrong secret to fail the check")
	}
}

func TestGenerateAndParseTokenRoundtrip(t *testing.T) {
	tok := GenerateToken("admin", time.Hour, "s3cr3t")
	role, err := ParseToken(tok, "s3cr3t")
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if role != "admin" {
		t.Fatalf("role = %q, want admin", role)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	tok := GenerateToken("viewer", time.Hour, "s3cr3t")
	if _, err := ParseToken(tok, "other-secret"); err == nil {
		t.Fatal("expected a token signed with a different secret to be rejected")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	tok := GenerateToken("viewer", -time.Second, "s3cr3t")
	if _, err := ParseToken(tok, "s3cr3t"); err == nil {
		t.Fatal("expected an already-expired token to be rejected")
	}
}
