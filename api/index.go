// Package api is the serverless entry point: the host routes every
// incoming path to Handler. The process has no durable local storage, so
// the app is built lazily once per process and the store re-seeds itself
// on the first request that touches it.
package api

import (
	"net/http"
	"sync"

	"github.com/jubairbh/storefront/internal/app"
	"github.com/jubairbh/storefront/internal/config"
)

var (
	buildOnce sync.Once
	instance  *app.App
	buildErr  error
)

func build() (*app.App, error) {
	buildOnce.Do(func() {
		cfg, err := config.Load()
		if err != nil {
			buildErr = err
			return
		}
		instance, buildErr = app.New(cfg)
	})
	return instance, buildErr
}

// Handler serves one request. A failed cold start (missing SECRET_KEY,
// unwritable storage) is sticky for the process: every request fails
// loudly instead of serving from a half-started app.
func Handler(w http.ResponseWriter, r *http.Request) {
	a, err := build()
	if err != nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}
	a.Echo.ServeHTTP(w, r)
}
