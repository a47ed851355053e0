package service

import (
	"context"
	"testing"
	"time"

	"github.com/yourorg/servicetracker/internal/domain"
	"github.com/yourorg/servicetracker/internal/identity"
)

func newAuthFixture() *AuthService {
	tm := identity.NewTokenManager("test-secret", "servicetracker")
	return NewAuthService(newMemCredentialRepo(), tm, time.Hour, nil)
}

func TestSignupAndLogin(t *testing.T) {
	s := newAuthFixture()

	r, err := s.Signup("alice@example.com", "Alice", "Password123")
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	if r.IdentityID == "" || r.Token == "" {
		t.Fatalf("expected identity id and token")
	}

	// Duplicate email
	if _, err := s.Signup("alice@example.com", "Alice 2", "Password123"); domain.ErrorCode(err) != domain.EConflict {
		t.Fatalf("expected duplicate email conflict, got %v", err)
	}

	// Login ok
	lr, err := s.Login("alice@example.com", "Password123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if lr.Token == "" || lr.TokenType != "Bearer" {
		t.Fatalf("expected bearer token on login")
	}

	// Login wrong password
	if _, err := s.Login("alice@example.com", "Wrong"); domain.ErrorCode(err) != domain.EUnauthorized {
		t.Fatalf("expected invalid credentials error, got %v", err)
	}

	// Unknown email reads the same as a wrong password.
	if _, err := s.Login("nobody@example.com", "Password123"); domain.ErrorCode(err) != domain.EUnauthorized {
		t.Fatalf("expected invalid credentials error, got %v", err)
	}
}

func TestSignupValidation(t *testing.T) {
	s := newAuthFixture()

	if _, err := s.Signup("", "X", "Password123"); domain.ErrorCode(err) != domain.EInvalid {
		t.Errorf("expected invalid without email, got %v", err)
	}
	if _, err := s.Signup("not-an-email", "X", "Password123"); domain.ErrorCode(err) != domain.EInvalid {
		t.Errorf("expected invalid email format error, got %v", err)
	}
	if _, err := s.Signup("a@example.com", "X", "short"); domain.ErrorCode(err) != domain.EInvalid {
		t.Errorf("expected short password rejection, got %v", err)
	}
}

func TestSignupTokenIsVerifiable(t *testing.T) {
	tm := identity.NewTokenManager("test-secret", "servicetracker")
	s := NewAuthService(newMemCredentialRepo(), tm, time.Hour, nil)

	r, err := s.Signup("bob@example.com", "Bob", "Password123")
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	verifier := identity.NewJWTVerifier(tm)
	ident, err := verifier.Verify(context.Background(), r.Token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if ident.ID != r.IdentityID || ident.Email != "bob@example.com" {
		t.Errorf("token claims do not round-trip: %+v", ident)
	}
}
