package app

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/jubairbh/storefront/internal/auth"
	"github.com/jubairbh/storefront/internal/config"
	"github.com/jubairbh/storefront/internal/events"
	"github.com/jubairbh/storefront/internal/handlers"
	"github.com/jubairbh/storefront/internal/httpserver"
	"github.com/jubairbh/storefront/internal/logging"
	"github.com/jubairbh/storefront/internal/store"
)

// App bundles everything one process instance needs. Both the serverless
// entry point and the local server build exactly one of these.
type App struct {
	Config   *config.Config
	Store    *store.Store
	Producer *events.Producer
	Echo     *echo.Echo
}

func New(cfg *config.Config) (*App, error) {
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	gate := &auth.Gate{
		DB:     st.DB(),
		Secret: cfg.SecretKey,
		TTL:    cfg.SessionTTL,
	}

	producer := events.NewProducer(cfg.KafkaAddress)
	logger := logging.New(cfg.LogLevel)

	e := httpserver.New(&httpserver.Deps{
		Store:          st,
		Gate:           gate,
		AuthHandler:    &handlers.AuthHandler{Store: st, Gate: gate, Producer: producer},
		ProductHandler: &handlers.ProductHandler{Store: st, Producer: producer},
		HealthHandler:  &handlers.HealthHandler{Store: st, Environment: cfg.Environment},
		Logger:         logger,
		Debug:          cfg.Debug,
		RequestTimeout: cfg.RequestTimeout,
	})

	return &App{
		Config:   cfg,
		Store:    st,
		Producer: producer,
		Echo:     e,
	}, nil
}

func (a *App) Close() error {
	if err := a.Producer.Close(); err != nil {
		return err
	}
	return a.Store.Close()
}
