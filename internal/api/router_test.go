package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b2world/ems-backend/internal/core/domain"
	"github.com/b2world/ems-backend/internal/core/ports"
	"github.com/b2world/ems-backend/internal/pkg/token"
)

type stubAnalytics struct{}

func (stubAnalytics) Dashboard(_ context.Context, month, year int) (*ports.Dashboard, error) {
	return &ports.Dashboard{Month: month, Year: year}, nil
}

var (
	routerOnce sync.Once
	testRouter *echo.Echo
	testTokens = token.NewManager(token.Config{AccessSecret: "access", RefreshSecret: "refresh"})
)

// router is built once: echoprometheus registers its collectors globally.
func router() *echo.Echo {
	routerOnce.Do(func() {
		testRouter = NewRouter(Services{Analytics: stubAnalytics{}}, Options{
			Tokens:   testTokens,
			Location: time.UTC,
			Log:      zerolog.Nop(),
		})
	})
	return testRouter
}

func serve(t *testing.T, method, target, role string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if role != "" {
		signed, err := testTokens.IssueAccess("u-"+role, role)
		require.NoError(t, err)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+signed)
	}
	rec := httptest.NewRecorder()
	router().ServeHTTP(rec, req)
	return rec
}

func TestRouter_PublicRoutes(t *testing.T) {
	assert.Equal(t, http.StatusOK, serve(t, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, serve(t, http.MethodGet, "/health/ready", "").Code)
	assert.Equal(t, http.StatusOK, serve(t, http.MethodGet, "/metrics", "").Code)
}

func TestRouter_RequiresToken(t *testing.T) {
	rec := serve(t, http.MethodGet, "/api/analytics/dashboard", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")
}

func TestRouter_RoleGates(t *testing.T) {
	cases := []struct {
		method, target, role string
		want                 int
	}{
		{http.MethodGet, "/api/analytics/dashboard?month=1&year=2024", domain.RoleAdmin, http.StatusOK},
		{http.MethodGet, "/api/analytics/dashboard", domain.RoleManager, http.StatusForbidden},
		{http.MethodGet, "/api/employees", domain.RoleEmployee, http.StatusForbidden},
		{http.MethodGet, "/api/manager/team", domain.RoleIntern, http.StatusForbidden},
		{http.MethodPost, "/api/payroll/calculate", domain.RoleManager, http.StatusForbidden},
		{http.MethodPut, "/api/leave/approve/l1", domain.RoleEmployee, http.StatusForbidden},
		{http.MethodPost, "/api/training/create", domain.RoleEmployee, http.StatusForbidden},
		{http.MethodPut, "/api/offboarding/update-clearance/u1", domain.RoleEmployee, http.StatusForbidden},
		{http.MethodPut, "/api/offboarding/update-clearance/u1", domain.RoleIntern, http.StatusForbidden},
		{http.MethodGet, "/api/offboarding/relieving-letter/u1", domain.RoleManager, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.role+" "+tc.target, func(t *testing.T) {
			assert.Equal(t, tc.want, serve(t, tc.method, tc.target, tc.role).Code)
		})
	}
}

func TestRouter_ManagersReachClearanceUpdate(t *testing.T) {
	for _, role := range []string{domain.RoleAdmin, domain.RoleManager} {
		signed, err := testTokens.IssueAccess("u-"+role, role)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPut, "/api/offboarding/update-clearance/u1", strings.NewReader("{"))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+signed)
		rec := httptest.NewRecorder()
		router().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, role)
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, serve(t, http.MethodGet, "/api/nope", domain.RoleAdmin).Code)
}

func TestRouter_SwaggerDocumentListsOperations(t *testing.T) {
	rec := serve(t, http.MethodGet, "/swagger/doc.json", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var doc struct {
		Paths map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	require.Contains(t, doc.Paths, "/api/payroll/calculate")
	assert.Contains(t, doc.Paths["/api/payroll/calculate"], "post")
	assert.Contains(t, doc.Paths, "/api/payroll/payslip/{userId}/{month}/{year}")
	assert.Contains(t, doc.Paths, "/api/auth/login")
}
