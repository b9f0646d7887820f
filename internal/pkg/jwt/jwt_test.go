package jwt_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/pierpay/pierpay-api/internal/pkg/jwt"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := jwt.NewService("test-secret", time.Minute, time.Hour)
	userID := uuid.New()

	token, err := svc.GenerateAccessToken(userID, "ADMIN")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	claims, err := svc.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("expected user id %s, got %s", userID, claims.UserID)
	}
	if claims.Role != "ADMIN" {
		t.Errorf("expected role ADMIN, got %s", claims.Role)
	}
}

func TestExpiredAccessToken(t *testing.T) {
	svc := jwt.NewService("test-secret", -time.Minute, time.Hour)

	token, err := svc.GenerateAccessToken(uuid.New(), "STAFF")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if _, err := svc.ValidateAccessToken(token); !errors.Is(err, jwt.ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestWrongSecretRejected(t *testing.T) {
	svc := jwt.NewService("secret-a", time.Minute, time.Hour)
	other := jwt.NewService("secret-b", time.Minute, time.Hour)

	token, err := svc.GenerateAccessToken(uuid.New(), "STAFF")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if _, err := other.ValidateAccessToken(token); !errors.Is(err, jwt.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestRefreshTokenHashStable(t *testing.T) {
	token, err := jwt.GenerateRefreshToken()
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if len(token) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(token))
	}
	if jwt.HashRefreshToken(token) != jwt.HashRefreshToken(token) {
		t.Fatal("hash must be deterministic")
	}
	if jwt.HashRefreshToken(token) == token {
		t.Fatal("hash must differ from raw token")
	}
}
