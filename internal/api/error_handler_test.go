package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/b2world/ems-backend/internal/core/domain"
)

func TestHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"validation", domain.Validation("name is required"), http.StatusBadRequest, "name is required"},
		{"wrapped not found", fmt.Errorf("get user: %w", domain.ErrUserNotFound), http.StatusNotFound, "user not found"},
		{"unauthenticated", domain.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated"},
		{"expired token", fmt.Errorf("%w: token expired", domain.ErrInvalidToken), http.StatusUnauthorized, "invalid token"},
		{"revoked", fmt.Errorf("refresh: %w", domain.ErrRevokedToken), http.StatusUnauthorized, "refresh token revoked"},
		{"bad credentials", fmt.Errorf("login: %w", domain.ErrInvalidCredentials), http.StatusUnauthorized, "invalid credentials"},
		{"forbidden", domain.Forbidden("managers only"), http.StatusForbidden, "managers only"},
		{"conflict", fmt.Errorf("register: %w", domain.ErrUserExists), http.StatusConflict, "user already exists"},
		{"invalid period", domain.ErrNoWorkingDays, http.StatusUnprocessableEntity, "period has no working days"},
		{"echo error", echo.NewHTTPError(http.StatusMethodNotAllowed, "method not allowed"), http.StatusMethodNotAllowed, "method not allowed"},
		{"unknown", errors.New("mongo: connection reset"), http.StatusInternalServerError, "internal server error"},
	}

	h := NewHTTPErrorHandler(zerolog.Nop())
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/api/x", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			h(tc.err, c)

			if rec.Code != tc.status {
				t.Fatalf("status: got %d, want %d", rec.Code, tc.status)
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if body.Error != tc.msg {
				t.Fatalf("message: got %q, want %q", body.Error, tc.msg)
			}
		})
	}
}

func TestHTTPErrorHandler_CommittedResponse(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	_ = c.NoContent(http.StatusAccepted)

	NewHTTPErrorHandler(zerolog.Nop())(domain.ErrConflict, c)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("committed response must not be overwritten, got %d", rec.Code)
	}
}
