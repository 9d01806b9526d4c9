package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/librarium/internal/model"
)

func TestTokenManager_IssueAndVerify(t *testing.T) {
	m := NewTokenManager([]byte("test-secret"), time.Hour)

	token, err := m.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if token == "" {
		t.Fatal("Issue() returned empty token")
	}

	userID, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if userID != "user-123" {
		t.Errorf("userID = %q, want %q", userID, "user-123")
	}
}

func TestTokenManager_Verify_Expired(t *testing.T) {
	// 負の有効期間で発行し、即座に期限切れにする
	m := NewTokenManager([]byte("test-secret"), -time.Hour)

	token, err := m.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	_, err = m.Verify(token)
	if err == nil {
		t.Fatal("Verify() error = nil, want token expired error")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error should be *model.APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeTokenExpired {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeTokenExpired)
	}
}

func TestTokenManager_Verify_Malformed(t *testing.T) {
	m := NewTokenManager([]byte("test-secret"), time.Hour)

	_, err := m.Verify("not-a-jwt")
	if err == nil {
		t.Fatal("Verify() error = nil, want error")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error should be *model.APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeUnauthenticated {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeUnauthenticated)
	}
}

func TestTokenManager_Verify_WrongSecret(t *testing.T) {
	issuer := NewTokenManager([]byte("secret-a"), time.Hour)
	verifier := NewTokenManager([]byte("secret-b"), time.Hour)

	token, err := issuer.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	if _, err := verifier.Verify(token); err == nil {
		t.Error("Verify() with wrong secret should fail")
	}
}
