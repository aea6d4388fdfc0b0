package service

import (
	"strings"
	"testing"

	"inkwell/internal/config"
)

func newTestAuthService() *AuthService {
	return NewAuthService(&config.Config{
		JWTSecret:         "test-secret",
		AccessTokenMaxAge: 3600,
	})
}

func TestAuthService_TokenRoundTrip(t *testing.T) {
	svc := newTestAuthService()

	token, err := svc.GenerateAccessToken(42)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	userID, err := svc.ParseAccessToken(token)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if userID != 42 {
		t.Errorf("user id = %d, want 42", userID)
	}
}

func TestAuthService_RejectsTamperedToken(t *testing.T) {
	svc := newTestAuthService()

	token, err := svc.GenerateAccessToken(42)
	if err != nil {
		t.Fatal(err)
	}

	tampered := token[:len(token)-2] + "xx"
	if _, err := svc.ParseAccessToken(tampered); err == nil {
		t.Error("expected error for tampered signature")
	}
}

func TestAuthService_RejectsForeignSecret(t *testing.T) {
	token, err := newTestAuthService().GenerateAccessToken(42)
	if err != nil {
		t.Fatal(err)
	}

	other := NewAuthService(&config.Config{JWTSecret: "different-secret", AccessTokenMaxAge: 3600})
	if _, err := other.ParseAccessToken(token); err == nil {
		t.Error("expected error for token signed with another secret")
	}
	if !strings.Contains(token, ".") {
		t.Error("token is not a JWT")
	}
}
