package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/b2world/ems-backend/pkg/logger"
)

// RequestLogger attaches a logger carrying the request id to the request
// context and writes one access line per request. It must run after the
// echo RequestID middleware.
func RequestLogger(base zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			reqID := c.Response().Header().Get(echo.HeaderXRequestID)
			l := base.With().Str("request_id", reqID).Logger()
			c.SetRequest(req.WithContext(logger.WithContext(req.Context(), l)))

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			ev := l.Info()
			if status := c.Response().Status; status >= 500 {
				ev = l.Error()
			}
			ev.Str("method", req.Method).
				Str("path", c.Path()).
				Int("status", c.Response().Status).
				Dur("latency", time.Since(start)).
				Msg("request")
			return nil
		}
	}
}
