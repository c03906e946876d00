package auth

import (
	"errors"
	"testing"
	"time"
)

func newManager() *TokenManager {
	return NewTokenManager("access-secret", "refresh-secret", 15*time.Minute, 10*24*time.Hour)
}

func TestTokenManagerIssueAndVerify(t *testing.T) {
	manager := newManager()

	pair, err := manager.IssuePair("user-1", "ada")
	if err != nil {
		t.Fatalf("issue pair: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected both tokens, got %+v", pair)
	}
	if !pair.RefreshExpiresAt.After(pair.AccessExpiresAt) {
		t.Fatal("refresh token should outlive access token")
	}

	claims, err := manager.VerifyAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("verify access: %v", err)
	}
	if claims.Subject != "user-1" || claims.Username != "ada" {
		t.Fatalf("unexpected claims %+v", claims)
	}

	claims, err = manager.VerifyRefresh(pair.RefreshToken)
	if err != nil {
		t.Fatalf("verify refresh: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Fatalf("unexpected refresh claims %+v", claims)
	}
}

func TestTokenManagerRejectsCrossFamilyTokens(t *testing.T) {
	manager := newManager()

	pair, err := manager.IssuePair("user-1", "ada")
	if err != nil {
		t.Fatalf("issue pair: %v", err)
	}

	if _, err := manager.VerifyAccess(pair.RefreshToken); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid got %v", err)
	}
	if _, err := manager.VerifyRefresh(pair.AccessToken); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid got %v", err)
	}
}

func TestTokenManagerExpiredToken(t *testing.T) {
	issuer := newManager()
	issuer.NowFunc = func() time.Time { return time.Now().Add(-time.Hour) }

	pair, err := issuer.IssuePair("user-1", "ada")
	if err != nil {
		t.Fatalf("issue pair: %v", err)
	}

	verifier := newManager()
	if _, err := verifier.VerifyAccess(pair.AccessToken); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired got %v", err)
	}
}

func TestTokenManagerRejectsTamperedToken(t *testing.T) {
	manager := newManager()

	pair, err := manager.IssuePair("user-1", "ada")
	if err != nil {
		t.Fatalf("issue pair: %v", err)
	}

	other := NewTokenManager("other-secret", "other-refresh", time.Minute, time.Hour)
	if _, err := other.VerifyAccess(pair.AccessToken); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid got %v", err)
	}
}

func TestTokenManagerEmptyUserID(t *testing.T) {
	manager := newManager()

	if _, err := manager.IssuePair("", "ada"); err == nil {
		t.Fatal("expected error for empty user id")
	}
}
