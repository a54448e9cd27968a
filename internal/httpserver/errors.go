package httpserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jubairbh/storefront/internal/auth"
	"github.com/jubairbh/storefront/internal/logging"
	"github.com/jubairbh/storefront/internal/store"
)

type errorBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// ErrorHandler converts every failure reaching the router boundary into
// exactly one HTTP response. Domain errors map to their status; anything
// unrecognized becomes a 500 with detail suppressed unless debug is on.
func ErrorHandler(debug bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		message := "internal server error"

		var httpErr *echo.HTTPError
		switch {
		case errors.As(err, &httpErr):
			code = httpErr.Code
			if m, ok := httpErr.Message.(string); ok {
				message = m
			} else {
				message = http.StatusText(code)
			}
		case errors.Is(err, store.ErrStorageUnavailable):
			code = http.StatusServiceUnavailable
			message = "storage unavailable"
		case errors.Is(err, auth.ErrInvalidCredentials):
			code = http.StatusUnauthorized
			message = "invalid email or password"
		case errors.Is(err, auth.ErrInvalidSession):
			code = http.StatusUnauthorized
			message = "invalid session"
		case errors.Is(err, auth.ErrSessionExpired):
			code = http.StatusUnauthorized
			message = "session expired"
		case errors.Is(err, auth.ErrUnauthorized):
			code = http.StatusForbidden
			message = "insufficient permissions"
		case errors.Is(err, context.DeadlineExceeded):
			code = http.StatusGatewayTimeout
			message = "request timed out"
		}

		if code >= http.StatusInternalServerError {
			logging.FromContext(c.Request().Context()).Error("request failed",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", code,
				"error", err.Error(),
			)
		}

		body := errorBody{Status: "error", Message: message}
		if debug && code >= http.StatusInternalServerError {
			body.Detail = err.Error()
		}

		var respErr error
		if c.Request().Method == http.MethodHead {
			respErr = c.NoContent(code)
		} else {
			respErr = c.JSON(code, body)
		}
		if respErr != nil {
			logging.FromContext(c.Request().Context()).Error("write error response", "error", respErr.Error())
		}
	}
}
