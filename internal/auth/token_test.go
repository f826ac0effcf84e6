package auth

import (
	"errors"
	"testing"
	"time"
)

func newTestService() *TokenService {
	return NewTokenService("test-secret", 15*time.Minute, 7*24*time.Hour, 7*24*time.Hour)
}

func TestIssueAndDecodeAccessToken(t *testing.T) {
	t.Parallel()

	s := newTestService()
	tok, err := s.IssueAccessToken("alice@example.com")
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}

	email, err := s.DecodeAccessToken(tok)
	if err != nil {
		t.Fatalf("DecodeAccessToken error: %v", err)
	}
	if email != "alice@example.com" {
		t.Fatalf("subject mismatch: got %q", email)
	}
}

func TestIssueAndDecodeRefreshToken(t *testing.T) {
	t.Parallel()

	s := newTestService()
	tok, err := s.IssueRefreshToken("bob@example.com")
	if err != nil {
		t.Fatalf("IssueRefreshToken error: %v", err)
	}

	email, err := s.DecodeRefreshToken(tok)
	if err != nil {
		t.Fatalf("DecodeRefreshToken error: %v", err)
	}
	if email != "bob@example.com" {
		t.Fatalf("subject mismatch: got %q", email)
	}
}

func TestScopeEnforcement(t *testing.T) {
	t.Parallel()

	s := newTestService()
	access, err := s.IssueAccessToken("u@example.com")
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}
	refresh, err := s.IssueRefreshToken("u@example.com")
	if err != nil {
		t.Fatalf("IssueRefreshToken error: %v", err)
	}

	if _, err := s.DecodeRefreshToken(access); !errors.Is(err, ErrInvalidScope) {
		t.Fatalf("access token via DecodeRefreshToken: want ErrInvalidScope, got %v", err)
	}
	if _, err := s.DecodeAccessToken(refresh); !errors.Is(err, ErrInvalidScope) {
		t.Fatalf("refresh token via DecodeAccessToken: want ErrInvalidScope, got %v", err)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	t.Parallel()

	// Negative TTLs would be replaced by defaults in NewTokenService, so
	// build the service directly with already-expired lifetimes.
	s := &TokenService{
		secret:     []byte("test-secret"),
		accessTTL:  -time.Minute,
		refreshTTL: -time.Minute,
		emailTTL:   -time.Minute,
	}

	access, err := s.IssueAccessToken("u@example.com")
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}
	if _, err := s.DecodeAccessToken(access); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expired access token: want ErrInvalidCredentials, got %v", err)
	}

	refresh, err := s.IssueRefreshToken("u@example.com")
	if err != nil {
		t.Fatalf("IssueRefreshToken error: %v", err)
	}
	if _, err := s.DecodeRefreshToken(refresh); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expired refresh token: want ErrInvalidCredentials, got %v", err)
	}

	emailTok, err := s.IssueEmailToken("u@example.com")
	if err != nil {
		t.Fatalf("IssueEmailToken error: %v", err)
	}
	if _, err := s.DecodeEmailToken(emailTok); !errors.Is(err, ErrUnprocessableToken) {
		t.Fatalf("expired email token: want ErrUnprocessableToken, got %v", err)
	}
}

func TestWrongSecretRejected(t *testing.T) {
	t.Parallel()

	s := newTestService()
	other := NewTokenService("other-secret", 0, 0, 0)

	tok, err := s.IssueAccessToken("u@example.com")
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}
	if _, err := other.DecodeAccessToken(tok); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong secret: want ErrInvalidCredentials, got %v", err)
	}
}

func TestMalformedTokenRejected(t *testing.T) {
	t.Parallel()

	s := newTestService()
	if _, err := s.DecodeAccessToken("not.a.jwt"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("malformed token: want ErrInvalidCredentials, got %v", err)
	}
	if _, err := s.DecodeEmailToken("not.a.jwt"); !errors.Is(err, ErrUnprocessableToken) {
		t.Fatalf("malformed email token: want ErrUnprocessableToken, got %v", err)
	}
}

func TestEmailTokenWrongScopeIsUnprocessable(t *testing.T) {
	t.Parallel()

	s := newTestService()
	access, err := s.IssueAccessToken("u@example.com")
	if err != nil {
		t.Fatalf("IssueAccessToken error: %v", err)
	}
	// The confirmation endpoint does not distinguish causes; even a valid
	// token with a different scope is unprocessable there.
	if _, err := s.DecodeEmailToken(access); !errors.Is(err, ErrUnprocessableToken) {
		t.Fatalf("access token via DecodeEmailToken: want ErrUnprocessableToken, got %v", err)
	}
}
