package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestNewAccessTokenClaims(t *testing.T) {
	tok, err := NewAccessToken("s3cret", "op-7", "OPERATOR", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	parsed, err := jwt.Parse(tok.Token, func(*jwt.Token) (interface{}, error) {
		return []byte("s3cret"), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !parsed.Valid {
		t.Fatalf("parse: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if sub, _ := claims.GetSubject(); sub != "op-7" {
		t.Fatalf("sub=%q", sub)
	}
	if claims["role"] != "OPERATOR" {
		t.Fatalf("role=%v", claims["role"])
	}
	if d := time.Until(tok.Exp); d < 59*time.Minute || d > time.Hour {
		t.Fatalf("unexpected expiry %v", tok.Exp)
	}
}

func TestNewAccessTokenRejectsBadInput(t *testing.T) {
	if _, err := NewAccessToken("", "x", "OPERATOR", time.Hour); err == nil {
		t.Fatal("expected error for empty secret")
	}
	if _, err := NewAccessToken("s", "x", "OPERATOR", 0); err == nil {
		t.Fatal("expected error for zero ttl")
	}
}
