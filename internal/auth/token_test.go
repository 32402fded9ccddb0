package auth

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestPasetoService(t *testing.T) *PasetoService {
	t.Helper()

	key := bytes.Repeat([]byte("k"), 32)
	svc, err := NewPasetoService(key)
	if err != nil {
		t.Fatalf("failed to create paseto service: %v", err)
	}
	return svc
}

func TestNewPasetoServiceRejectsBadKeyLength(t *testing.T) {
	if _, err := NewPasetoService([]byte("too-short")); err == nil {
		t.Fatalf("expected error for short key, got nil")
	}
}

func TestPasetoServiceRoundTrip(t *testing.T) {
	svc := newTestPasetoService(t)
	userID := uuid.New()

	token, err := svc.CreateToken(userID, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("failed to create token: %v", err)
	}

	claims, err := svc.VerifyToken(token)
	if err != nil {
		t.Fatalf("failed to verify token: %v", err)
	}

	if claims.UserID != userID.String() {
		t.Fatalf("unexpected user id: want %s, got %s", userID, claims.UserID)
	}
	if !claims.ExpiresAt.After(time.Now()) {
		t.Fatalf("expected expiry in the future, got %v", claims.ExpiresAt)
	}
}

func TestPasetoServiceExpiredToken(t *testing.T) {
	svc := newTestPasetoService(t)

	token, err := svc.CreateToken(uuid.New(), -time.Hour)
	if err != nil {
		t.Fatalf("failed to create token: %v", err)
	}

	if _, err := svc.VerifyToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestPasetoServiceRejectsForeignToken(t *testing.T) {
	svc := newTestPasetoService(t)

	otherKey := bytes.Repeat([]byte("x"), 32)
	other, err := NewPasetoService(otherKey)
	if err != nil {
		t.Fatalf("failed to create paseto service: %v", err)
	}

	token, err := other.CreateToken(uuid.New(), time.Hour)
	if err != nil {
		t.Fatalf("failed to create token: %v", err)
	}

	if _, err := svc.VerifyToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestPasetoServiceRejectsGarbage(t *testing.T) {
	svc := newTestPasetoService(t)

	if _, err := svc.VerifyToken("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
