package auth

import (
	"testing"
	"time"

	"github.com/WheelsHub/WheelsHub/internal/common/config"
)

func TestGenerateAndParseAccessToken(t *testing.T) {
	cfg := config.AuthConfig{
		Enabled:   true,
		JWTSecret: "test-secret",
		Issuer:    "wheelshub",
		Audience:  "wheelshub",
	}

	token, exp, err := GenerateAccessToken(cfg, "u-1", []string{"user", "admin"}, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token")
	}
	if exp.Before(time.Now()) {
		t.Fatalf("expected exp in future")
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.Subject != "u-1" {
		t.Fatalf("subject mismatch: %s", claims.Subject)
	}
	if len(claims.Roles) != 2 || claims.Roles[1] != "admin" {
		t.Fatalf("roles mismatch: %#v", claims.Roles)
	}
}

func TestParseAccessTokenRejectsWrongIssuer(t *testing.T) {
	cfg := config.AuthConfig{JWTSecret: "test-secret", Issuer: "wheelshub"}
	token, _, err := GenerateAccessToken(cfg, "u-1", nil, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	other := config.AuthConfig{JWTSecret: "test-secret", Issuer: "someone-else"}
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatalf("expected issuer mismatch error")
	}
}

func TestParseAccessTokenRejectsBadSignature(t *testing.T) {
	cfg := config.AuthConfig{JWTSecret: "test-secret"}
	token, _, err := GenerateAccessToken(cfg, "u-1", nil, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	if _, err := ParseAccessToken(config.AuthConfig{JWTSecret: "wrong"}, token); err == nil {
		t.Fatalf("expected signature error")
	}
}
