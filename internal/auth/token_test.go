package auth

import (
	"errors"
	"testing"
	"time"
)

func TestNewTokenIssuerRequiresSecret(t *testing.T) {
	t.Parallel()

	if _, err := NewTokenIssuer("", time.Hour); err == nil {
		t.Fatal("expected error for empty secret")
	}
	if _, err := NewTokenIssuer("   ", time.Hour); err == nil {
		t.Fatal("expected error for blank secret")
	}
}

func TestIssueAndParseRoundTrip(t *testing.T) {
	t.Parallel()

	issuer, err := NewTokenIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}

	token, expires, err := issuer.Issue(42, "owner@example.com")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}
	if time.Until(expires) <= 0 {
		t.Fatalf("expected future expiry, got %s", expires)
	}

	claims, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != 42 {
		t.Fatalf("claims.UserID = %d, want 42", claims.UserID)
	}
	if claims.Email != "owner@example.com" {
		t.Fatalf("claims.Email = %q", claims.Email)
	}
}

func TestParseRejectsForeignSecret(t *testing.T) {
	t.Parallel()

	issuer, err := NewTokenIssuer("secret-one", time.Hour)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	other, err := NewTokenIssuer("secret-two", time.Hour)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}

	token, _, err := issuer.Issue(7, "owner@example.com")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	if _, err := other.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	t.Parallel()

	issuer := &TokenIssuer{secret: []byte("test-secret"), ttl: -time.Minute}
	token, _, err := issuer.Issue(7, "owner@example.com")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	if _, err := issuer.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	t.Parallel()

	issuer, err := NewTokenIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	if _, err := issuer.Parse("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
