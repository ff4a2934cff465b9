package jwt

import (
	"errors"
	"testing"
	"time"
)

func newTestIssuer() *Issuer {
	return NewIssuer("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
}

func TestAccessToken_RoundTrip(t *testing.T) {
	iss := newTestIssuer()
	token, err := iss.Access(42, "siti@example.com", "NON_ACTIVE_BPJS")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	claims, err := iss.ParseAccess(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != 42 || claims.Email != "siti@example.com" || claims.Role != "NON_ACTIVE_BPJS" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.Subject != "42" {
		t.Fatalf("expected subject 42, got %q", claims.Subject)
	}
}

func TestAccessToken_WrongSecret(t *testing.T) {
	token, _ := newTestIssuer().Access(1, "a@b.c", "BPJS")
	other := NewIssuer("other", "refresh-secret", time.Minute, time.Hour)
	if _, err := other.ParseAccess(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestAccessToken_Expired(t *testing.T) {
	iss := newTestIssuer()
	iss.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, _ := iss.Access(1, "a@b.c", "BPJS")

	if _, err := newTestIssuer().ParseAccess(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestRefreshToken(t *testing.T) {
	iss := newTestIssuer()
	first, expires, err := iss.Refresh(7)
	if err != nil {
		t.Fatalf("sign refresh: %v", err)
	}
	if d := time.Until(expires); d < 6*24*time.Hour || d > 7*24*time.Hour {
		t.Fatalf("unexpected expiry %v", expires)
	}

	claims, err := iss.ParseRefresh(first)
	if err != nil {
		t.Fatalf("parse refresh: %v", err)
	}
	if claims.UserID != 7 || claims.ID == "" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	second, _, _ := iss.Refresh(7)
	if second == first {
		t.Fatal("refresh tokens issued together must differ")
	}

	if _, err := iss.ParseAccess(first); err == nil {
		t.Fatal("refresh token must not pass as an access token")
	}
}
