package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/b2world/ems-backend/internal/core/domain"
	"github.com/b2world/ems-backend/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	loginFn    func(ctx context.Context, email, password string) (*ports.LoginResult, error)
	refreshFn  func(ctx context.Context, token string) (*ports.RefreshResult, error)
	logoutFn   func(ctx context.Context, token string) error
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Refresh(ctx context.Context, token string) (*ports.RefreshResult, error) {
	return s.refreshFn(ctx, token)
}

func (s *stubAuthService) Logout(ctx context.Context, token string) error {
	return s.logoutFn(ctx, token)
}

func newTestContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(_ context.Context, in ports.RegisterInput) (*domain.User, error) {
			if in.Name != "Alice" || in.Email != "alice@b2world.test" || in.Role != domain.RoleIntern {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.User{ID: "u1", Name: in.Name, Email: in.Email, Role: in.Role, PasswordHash: "hash"}, nil
		},
	}
	c, rec := newTestContext(http.MethodPost, "/api/auth/register",
		`{"name":"Alice","email":"alice@b2world.test","password":"secret1","role":"intern"}`)

	if err := NewAuthHandler(stub).Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var user map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &user); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if user["id"] != "u1" || user["role"] != domain.RoleIntern {
		t.Fatalf("unexpected user payload: %+v", user)
	}
	if _, leaked := user["password_hash"]; leaked {
		t.Fatalf("password hash must not be serialised")
	}
}

func TestAuthHandler_Register_RejectsPrivilegedRole(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*domain.User, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}
	c, _ := newTestContext(http.MethodPost, "/api/auth/register",
		`{"name":"Mallory","email":"m@b2world.test","password":"secret1","role":"admin"}`)

	err := NewAuthHandler(stub).Register(c)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAuthHandler_Register_UserExists(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*domain.User, error) {
			return nil, domain.ErrUserExists
		},
	}
	c, _ := newTestContext(http.MethodPost, "/api/auth/register",
		`{"name":"Bob","email":"bob@b2world.test","password":"secret1"}`)

	if err := NewAuthHandler(stub).Register(c); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestAuthHandler_Login(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(_ context.Context, email, password string) (*ports.LoginResult, error) {
			if email != "alice@b2world.test" || password != "secret1" {
				return nil, domain.ErrInvalidCredentials
			}
			return &ports.LoginResult{
				AccessToken:  "access",
				RefreshToken: "refresh",
				User:         &domain.User{ID: "u1", RefreshTokens: []string{"refresh"}},
			}, nil
		},
	}

	c, rec := newTestContext(http.MethodPost, "/api/auth/login", `{"email":"alice@b2world.test","password":"secret1"}`)
	if err := NewAuthHandler(stub).Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["accessToken"] != "access" || resp["refreshToken"] != "refresh" {
		t.Fatalf("unexpected tokens: %+v", resp)
	}
	if user := resp["user"].(map[string]any); user["refresh_tokens"] != nil {
		t.Fatalf("refresh tokens must not be serialised: %+v", user)
	}

	c, _ = newTestContext(http.MethodPost, "/api/auth/login", `{"email":"alice@b2world.test","password":"nope"}`)
	if err := NewAuthHandler(stub).Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestAuthHandler_Refresh_AcceptsBothFieldNames(t *testing.T) {
	var got []string
	stub := &stubAuthService{
		refreshFn: func(_ context.Context, token string) (*ports.RefreshResult, error) {
			got = append(got, token)
			return &ports.RefreshResult{AccessToken: "new", User: &domain.User{ID: "u1"}}, nil
		},
	}
	h := NewAuthHandler(stub)

	for _, body := range []string{`{"refreshToken":"r1"}`, `{"token":"r2"}`} {
		c, rec := newTestContext(http.MethodPost, "/api/auth/refresh-token", body)
		if err := h.Refresh(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	}
	if len(got) != 2 || got[0] != "r1" || got[1] != "r2" {
		t.Fatalf("unexpected tokens passed: %v", got)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	stub := &stubAuthService{
		logoutFn: func(_ context.Context, token string) error {
			if token == "" {
				return domain.ErrUnauthenticated
			}
			return nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newTestContext(http.MethodPost, "/api/auth/logout", `{"refreshToken":"r1"}`)
	if err := h.Logout(c); err != nil || rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%v)", rec.Code, err)
	}

	c, _ = newTestContext(http.MethodPost, "/api/auth/logout", `{}`)
	if err := h.Logout(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}
