package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jubairbh/storefront/internal/auth"
	"github.com/jubairbh/storefront/internal/handlers"
	"github.com/jubairbh/storefront/internal/logging"
	"github.com/jubairbh/storefront/internal/models"
	"github.com/jubairbh/storefront/internal/store"
)

// EnsureReady runs the cold-start initialization barrier before any
// handler that touches the store. Within one process exactly one request
// performs the seeding while the rest wait on the shared result.
func EnsureReady(s *store.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := s.EnsureReady(c.Request().Context()); err != nil {
				return err
			}
			return next(c)
		}
	}
}

// Timeout puts a hard deadline on the request context. Handlers observe
// it through ctx; writes stay atomic because the store's write path is
// detached from this cancellation.
func Timeout(d time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx, cancel := context.WithTimeout(c.Request().Context(), d)
			defer cancel()
			c.SetRequest(c.Request().WithContext(ctx))

			err := next(c)
			if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return context.DeadlineExceeded
			}
			return err
		}
	}
}

// RequireRole gates a route on a valid, unexpired session whose role
// satisfies required. Claims land in the echo context under "claims".
func RequireRole(gate *auth.Gate, required models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := tokenFromRequest(c)
			if token == "" {
				return auth.ErrInvalidSession
			}
			claims, err := gate.Authorize(token, required)
			if err != nil {
				return err
			}
			c.Set("claims", claims)
			return next(c)
		}
	}
}

// tokenFromRequest accepts the session cookie or a bearer header; the
// cookie wins when both are present.
func tokenFromRequest(c echo.Context) string {
	if cookie, err := c.Cookie(handlers.SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return after
	}
	return ""
}

// RequestLogger attaches the logger to the request context and writes one
// line per completed request.
func RequestLogger(l *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))

			err := next(c)

			l.Info("request",
				"method", req.Method,
				"path", req.URL.Path,
				"status", c.Response().Status,
				"duration_ms", time.Since(start).Milliseconds(),
			)
			return err
		}
	}
}
