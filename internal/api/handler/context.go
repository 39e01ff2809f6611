package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/b2world/ems-backend/internal/api/middleware"
	"github.com/b2world/ems-backend/internal/core/domain"
	"github.com/b2world/ems-backend/internal/core/ports"
)

const dateLayout = "2006-01-02"

// principal returns the caller stored by the Auth middleware. An empty user
// id or role means the middleware did not run for this route.
func principal(c echo.Context) (ports.Principal, error) {
	userID, _ := c.Get(middleware.CtxUserID).(string)
	role, _ := c.Get(middleware.CtxRole).(string)
	if userID == "" || role == "" {
		return ports.Principal{}, domain.ErrUnauthenticated
	}
	return ports.Principal{UserID: userID, Role: role}, nil
}

// bindAndValidate decodes the request body into req and runs its validate tags.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.Validation("invalid payload")
	}
	return c.Validate(req)
}

// period reads month and year from the query string, defaulting to the
// current month when both are absent.
func period(c echo.Context, now time.Time) (month, year int, err error) {
	m, y := c.QueryParam("month"), c.QueryParam("year")
	if m == "" && y == "" {
		return int(now.Month()), now.Year(), nil
	}
	return parsePeriod(m, y)
}

func parsePeriod(m, y string) (month, year int, err error) {
	month, err = strconv.Atoi(strings.TrimSpace(m))
	if err != nil {
		return 0, 0, domain.Validation("month must be a number")
	}
	year, err = strconv.Atoi(strings.TrimSpace(y))
	if err != nil {
		return 0, 0, domain.Validation("year must be a number")
	}
	return month, year, nil
}

// parseDate accepts a plain calendar date or an RFC 3339 timestamp.
func parseDate(field, v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if t, err := time.Parse(dateLayout, v); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, domain.Validation(field + " must be a date (YYYY-MM-DD)")
}

func parseOptionalDate(field, v string) (*time.Time, error) {
	if strings.TrimSpace(v) == "" {
		return nil, nil
	}
	t, err := parseDate(field, v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
