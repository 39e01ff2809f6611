package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/b2world/ems-backend/internal/core/domain"
	"github.com/b2world/ems-backend/internal/core/ports"
	"github.com/b2world/ems-backend/internal/pkg/token"
)

func newTestAuthService(repo *stubUserRepo, limit int) *AuthService {
	tokens := token.NewManager(token.Config{AccessSecret: "access", RefreshSecret: "refresh"})
	return NewAuthService(repo, tokens, limit, zerolog.Nop())
}

func registerAlice(t *testing.T, svc *AuthService) *domain.User {
	t.Helper()
	user, err := svc.Register(context.Background(), ports.RegisterInput{
		Name:     "Alice",
		Email:    "  Alice@Example.com ",
		Password: "pass123",
		Role:     domain.RoleEmployee,
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	return user
}

func TestAuthService_Register_Success(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo(), 0)

	user := registerAlice(t, svc)
	if user.Email != "alice@example.com" {
		t.Fatalf("expected normalised email, got %q", user.Email)
	}
	if user.PasswordHash == "pass123" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestAuthService_Register_DefaultRole(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo(), 0)

	user, err := svc.Register(context.Background(), ports.RegisterInput{Name: "Bob", Email: "bob@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.Role != domain.RoleEmployee {
		t.Fatalf("expected employee role, got %s", user.Role)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo(), 0)

	cases := []ports.RegisterInput{
		{Name: "", Email: "a@b.c", Password: "pass123"},
		{Name: "A", Email: "", Password: "pass123"},
		{Name: "A", Email: "a@b.c", Password: "123"},
		{Name: "A", Email: "a@b.c", Password: "pass123", Role: "client"},
	}
	for _, in := range cases {
		if _, err := svc.Register(context.Background(), in); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected ErrValidation for %+v, got %v", in, err)
		}
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo(), 0)
	registerAlice(t, svc)

	_, err := svc.Register(context.Background(), ports.RegisterInput{Name: "Alice 2", Email: "ALICE@example.com", Password: "pass123"})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestAuthService_Login(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo, 0)
	user := registerAlice(t, svc)

	res, err := svc.Login(context.Background(), "alice@example.com", "pass123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if res.AccessToken == "" || res.RefreshToken == "" {
		t.Fatalf("expected both tokens")
	}

	stored, _ := repo.FindByID(context.Background(), user.ID)
	if !stored.HasRefreshToken(res.RefreshToken) {
		t.Fatalf("refresh token was not stored")
	}
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo(), 0)
	registerAlice(t, svc)

	if _, err := svc.Login(context.Background(), "alice@example.com", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "nobody@example.com", "pass123"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "", ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestAuthService_Login_BoundsStoredTokens(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestAuthService(repo, 2)
	user := registerAlice(t, svc)

	var tokens []string
	for i := 0; i < 3; i++ {
		res, err := svc.Login(context.Background(), "alice@example.com", "pass123")
		if err != nil {
			t.Fatalf("Login returned error: %v", err)
		}
		tokens = append(tokens, res.RefreshToken)
	}

	stored, _ := repo.FindByID(context.Background(), user.ID)
	if len(stored.RefreshTokens) != 2 {
		t.Fatalf("expected 2 stored tokens, got %d", len(stored.RefreshTokens))
	}
	if _, err := svc.Refresh(context.Background(), tokens[0]); !errors.Is(err, domain.ErrRevokedToken) {
		t.Fatalf("expected oldest token to be revoked, got %v", err)
	}
	if _, err := svc.Refresh(context.Background(), tokens[2]); err != nil {
		t.Fatalf("expected newest token to refresh, got %v", err)
	}
}

func TestAuthService_Refresh(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo(), 0)
	registerAlice(t, svc)
	login, _ := svc.Login(context.Background(), "alice@example.com", "pass123")

	res, err := svc.Refresh(context.Background(), login.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if res.AccessToken == "" {
		t.Fatalf("expected a new access token")
	}
	// Not rotated: the same refresh token keeps working.
	if _, err := svc.Refresh(context.Background(), login.RefreshToken); err != nil {
		t.Fatalf("second refresh failed: %v", err)
	}
}

func TestAuthService_Refresh_Errors(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo(), 0)
	registerAlice(t, svc)
	login, _ := svc.Login(context.Background(), "alice@example.com", "pass123")

	if _, err := svc.Refresh(context.Background(), ""); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if _, err := svc.Refresh(context.Background(), "garbage"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if _, err := svc.Refresh(context.Background(), login.AccessToken); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected access token to be rejected, got %v", err)
	}
}

func TestAuthService_Logout_RevokesRefreshToken(t *testing.T) {
	svc := newTestAuthService(newStubUserRepo(), 0)
	registerAlice(t, svc)
	login, _ := svc.Login(context.Background(), "alice@example.com", "pass123")

	if err := svc.Logout(context.Background(), login.RefreshToken); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if _, err := svc.Refresh(context.Background(), login.RefreshToken); !errors.Is(err, domain.ErrRevokedToken) {
		t.Fatalf("expected ErrRevokedToken after logout, got %v", err)
	}
	// Logging out twice is harmless.
	if err := svc.Logout(context.Background(), login.RefreshToken); err != nil {
		t.Fatalf("second Logout returned error: %v", err)
	}
}
