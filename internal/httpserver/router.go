package httpserver

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/jubairbh/storefront/internal/auth"
	"github.com/jubairbh/storefront/internal/handlers"
	"github.com/jubairbh/storefront/internal/models"
	"github.com/jubairbh/storefront/internal/store"
)

type Deps struct {
	Store          *store.Store
	Gate           *auth.Gate
	AuthHandler    *handlers.AuthHandler
	ProductHandler *handlers.ProductHandler
	HealthHandler  *handlers.HealthHandler

	Logger         *slog.Logger
	Debug          bool
	RequestTimeout time.Duration
}

// New builds the single HTTP entry point: every path the host forwards is
// dispatched here, unmatched ones fall out as 404 through the error
// handler.
func New(d *Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler(d.Debug)

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	if d.Logger != nil {
		e.Use(RequestLogger(d.Logger))
	}
	e.Use(Timeout(d.RequestTimeout))

	Register(e, d)
	return e
}

func Register(e *echo.Echo, d *Deps) {
	ready := EnsureReady(d.Store)

	// Liveness stays off the store entirely; the full healthcheck reports
	// on it and so initializes it itself.
	e.GET("/health/live", d.HealthHandler.Live)
	e.GET("/health", d.HealthHandler.Health)

	v1 := e.Group("/api/v1", ready)

	v1.POST("/register", d.AuthHandler.Register)
	v1.POST("/login", d.AuthHandler.Login)
	v1.POST("/logout", d.AuthHandler.Logout)
	v1.GET("/me", d.AuthHandler.Me, RequireRole(d.Gate, models.RoleCustomer))

	products := v1.Group("/products")
	products.GET("", d.ProductHandler.GetProducts)
	products.GET("/:id", d.ProductHandler.GetProduct)

	admin := v1.Group("/admin", RequireRole(d.Gate, models.RoleAdmin))
	admin.POST("/products", d.ProductHandler.CreateProduct)
	admin.PATCH("/products/:id", d.ProductHandler.PatchProduct)
	admin.DELETE("/products/:id", d.ProductHandler.DeleteProduct)
}
