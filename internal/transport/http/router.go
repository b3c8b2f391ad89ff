// Package http assembles the HTTP surface: middleware chain, authenticated
// workflow routes, and unauthenticated operational endpoints.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"credgate/internal/platform/health"
	"credgate/internal/platform/middleware"
)

// Registrar mounts a set of routes on a chi router.
type Registrar interface {
	Register(r chi.Router)
}

// RouterConfig carries the dependencies the router wires together.
type RouterConfig struct {
	Logger         *slog.Logger
	TokenValidator middleware.TokenValidator
	Health         *health.Handler
	RequestTimeout time.Duration

	// Authenticated carries the handlers mounted behind RequireAuth.
	Authenticated []Registrar
}

// NewRouter builds the service router. Health and metrics stay outside the
// auth gate so probes and scrapers need no token.
func NewRouter(cfg RouterConfig) http.Handler {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Timeout(timeout))
	r.Use(middleware.ContentTypeJSON)

	if cfg.Health != nil {
		cfg.Health.Register(r)
	}
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(cfg.TokenValidator, cfg.Logger))
		for _, reg := range cfg.Authenticated {
			reg.Register(r)
		}
	})

	return r
}
