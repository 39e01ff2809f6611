package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/b2world/ems-backend/internal/core/domain"
)

func runRBAC(role string, allowed ...string) (bool, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if role != "" {
		c.Set(CtxRole, role)
	}

	called := false
	err := RBAC(allowed...)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})(c)
	return called, err
}

func TestRBAC_Allows(t *testing.T) {
	called, err := runRBAC(domain.RoleAdmin, domain.RoleAdmin, domain.RoleManager)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
}

func TestRBAC_Forbids(t *testing.T) {
	called, err := runRBAC(domain.RoleIntern, domain.RoleAdmin, domain.RoleManager)
	if called {
		t.Fatalf("next handler must not be called")
	}
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestRBAC_NoRole(t *testing.T) {
	called, err := runRBAC("", domain.RoleAdmin)
	if called {
		t.Fatalf("next handler must not be called")
	}
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}
