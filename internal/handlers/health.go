package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jubairbh/storefront/internal/store"
)

const appVersion = "1.0.0"

type HealthHandler struct {
	Store       *store.Store
	Environment string
}

// Live only confirms the process answers; it never touches the store, so
// it stays cheap and cannot fail on storage problems.
func (h *HealthHandler) Live(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

// Health reports store readiness. Because it reports on the store it must
// trigger initialization itself rather than assume a warm one.
func (h *HealthHandler) Health(c echo.Context) error {
	dbStatus := "connected"
	status := "healthy"
	code := http.StatusOK
	if err := h.Store.EnsureReady(c.Request().Context()); err != nil {
		dbStatus = "disconnected"
		status = "warning"
		code = http.StatusServiceUnavailable
	}

	return c.JSON(code, echo.Map{
		"status": status,
		"database": echo.Map{
			"type":   "SQLite",
			"status": dbStatus,
		},
		"environment": h.Environment,
		"platform":    "serverless",
		"app":         "Jubair Boot House",
		"version":     appVersion,
	})
}
