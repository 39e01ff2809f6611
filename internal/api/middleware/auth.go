package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/b2world/ems-backend/internal/core/domain"
	"github.com/b2world/ems-backend/internal/pkg/metrics"
	"github.com/b2world/ems-backend/internal/pkg/token"
)

// Context keys set by Auth.
const (
	CtxUserID = "user_id"
	CtxRole   = "role"
)

// HeaderAccessToken is the legacy header some clients still send instead of
// Authorization.
const HeaderAccessToken = "accesstoken"

// AccessVerifier parses access tokens.
type AccessVerifier interface {
	ParseAccess(raw string) (*token.Claims, error)
}

// Auth validates the access token and stores the caller in the echo context.
func Auth(tokens AccessVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c)
			if raw == "" {
				metrics.AuthFailuresTotal.WithLabelValues("missing_token").Inc()
				return domain.ErrUnauthenticated
			}

			claims, err := tokens.ParseAccess(raw)
			if err != nil {
				metrics.AuthFailuresTotal.WithLabelValues("invalid_access").Inc()
				if errors.Is(err, domain.ErrInvalidToken) {
					return err
				}
				return domain.ErrInvalidToken
			}

			c.Set(CtxUserID, claims.UserID)
			c.Set(CtxRole, claims.Role)
			return next(c)
		}
	}
}

// bearerToken reads "Authorization: Bearer <t>" when well-formed and falls
// back to the accesstoken header, where the Bearer prefix is optional.
func bearerToken(c echo.Context) string {
	h := c.Request().Header
	if t, ok := cutBearer(h.Get(echo.HeaderAuthorization)); ok && t != "" {
		return t
	}

	raw := strings.TrimSpace(h.Get(HeaderAccessToken))
	if t, ok := cutBearer(raw); ok {
		return t
	}
	return raw
}

func cutBearer(v string) (string, bool) {
	const prefix = "bearer "
	if len(v) < len(prefix) || !strings.EqualFold(v[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(v[len(prefix):]), true
}
