package auth

import "testing"

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret")

	tok, err := svc.Issue("user-1", "trainee")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	claims, err := svc.Parse(tok)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.Sub != "user-1" || claims.Role != "trainee" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestTokenRejectsTampering(t *testing.T) {
	svc := NewTokenService("test-secret")
	tok, err := svc.Issue("user-1", "trainee")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := svc.Parse(tok + "x"); err == nil {
		t.Fatal("tampered token accepted")
	}
	other := NewTokenService("different-secret")
	if _, err := other.Parse(tok); err == nil {
		t.Fatal("token accepted under a different secret")
	}
	if _, err := svc.Parse("not-a-jwt"); err == nil {
		t.Fatal("garbage accepted")
	}
}
