package service

import (
	"errors"
	"testing"
	"time"

	"sales-voice/internal/domain"
)

var jwtTestUser = domain.User{
	ID:          "u-1",
	Email:       "a@b.com",
	DisplayName: "Ana",
}

func TestJWTGenerateAndParse(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour, 24*time.Hour)

	pair, err := svc.GeneratePair(jwtTestUser)
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected both tokens")
	}
	if pair.ExpiresIn != int64(time.Hour.Seconds()) {
		t.Fatalf("unexpected expires_in: %d", pair.ExpiresIn)
	}

	claims, err := svc.ParseAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("parse access: %v", err)
	}
	if claims.UserID != "u-1" || claims.Email != "a@b.com" || claims.TokenType != "access" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestJWTRejectsRefreshAsAccess(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour, 24*time.Hour)

	pair, err := svc.GeneratePair(jwtTestUser)
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}
	if _, err := svc.ParseAccessToken(pair.RefreshToken); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid for refresh token in access slot, got %v", err)
	}
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	issuer := NewJWTService("secret-a", time.Hour, 24*time.Hour)
	verifier := NewJWTService("secret-b", time.Hour, 24*time.Hour)

	pair, err := issuer.GeneratePair(jwtTestUser)
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}
	if _, err := verifier.ParseAccessToken(pair.AccessToken); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid, got %v", err)
	}
}

func TestJWTExpiredAccessToken(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour, 24*time.Hour)
	token, err := svc.signToken(jwtTestUser, time.Now().UTC().Add(-2*time.Hour), time.Hour, "access", "")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := svc.ParseAccessToken(token); !errors.Is(err, ErrJWTExpired) {
		t.Fatalf("expected ErrJWTExpired, got %v", err)
	}
}

func TestJWTRefreshRotation(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour, 24*time.Hour)

	pair, err := svc.GeneratePair(jwtTestUser)
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}

	next, err := svc.RefreshPair(pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	claims, err := svc.ParseAccessToken(next.AccessToken)
	if err != nil {
		t.Fatalf("parse rotated access: %v", err)
	}
	if claims.UserID != "u-1" {
		t.Fatalf("expected identity carried over, got %+v", claims)
	}

	// El jti usado queda revocado: reusar el refresh viejo falla.
	if _, err := svc.RefreshPair(pair.RefreshToken); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid on refresh reuse, got %v", err)
	}
}

func TestJWTRevokeRefresh(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour, 24*time.Hour)

	pair, err := svc.GeneratePair(jwtTestUser)
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}
	if err := svc.RevokeRefresh(pair.RefreshToken); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := svc.RefreshPair(pair.RefreshToken); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid after logout, got %v", err)
	}
}

func TestJWTEmptySecretFails(t *testing.T) {
	svc := NewJWTService("", time.Hour, 24*time.Hour)
	if _, err := svc.GeneratePair(jwtTestUser); !errors.Is(err, ErrJWTInvalid) {
		t.Fatalf("expected ErrJWTInvalid without secret, got %v", err)
	}
}
