// Copyright (c) 2026 Librio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires the chi router, the middleware chain and every domain
handler into a runnable [http.Server].

Only this package and cmd/api construct server primitives; domain packages
expose a RegisterRoutes method and nothing else.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/librio/internal/platform/config"
	"github.com/taibuivan/librio/internal/platform/constants"
	"github.com/taibuivan/librio/internal/platform/metrics"
	"github.com/taibuivan/librio/internal/platform/middleware"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// RouteRegistrar is implemented by every domain handler.
type RouteRegistrar interface {
	RegisterRoutes(router chi.Router)
}

// # Handler Registry

// Handlers groups the health checks, the viewer resolver and the domain handlers.
type Handlers struct {
	// Liveness answers /health while the process is up.
	Liveness http.HandlerFunc

	// Readiness answers /ready once Postgres and Redis respond.
	Readiness http.HandlerFunc

	// Viewer resolves the request's viewer after authentication.
	Viewer func(http.Handler) http.Handler

	Books    RouteRegistrar
	Tags     RouteRegistrar
	Authors  RouteRegistrar
	Readings RouteRegistrar
	Wishlist RouteRegistrar
	Auth     RouteRegistrar
	Account  RouteRegistrar
	Groups   RouteRegistrar
}

// # Server Initialization

// NewServer constructs the router with the full middleware chain and mounts
// every route group under /api/v1.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.TokenVerifier, h Handlers) *Server {
	r := chi.NewRouter()

	// # Infrastructure Endpoints
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)
	r.Handle("/metrics", metrics.Handler())

	// # Application API
	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.RequestID())
		api.Use(middleware.StructuredLogger(log))
		api.Use(chimw.Timeout(constants.GlobalRequestTimeout))
		api.Use(middleware.RateLimit(context))
		api.Use(metrics.Middleware)
		api.Use(middleware.PanicRecovery(log))
		api.Use(middleware.CORS(cfg))
		api.Use(middleware.Authenticate(verifier))
		api.Use(h.Viewer)
		api.Use(chimw.CleanPath)

		mount(api, "/books", h.Books)
		mount(api, "/tags", h.Tags)
		mount(api, "/authors", h.Authors)
		mount(api, "/readings", h.Readings)
		mount(api, "/wishlist", h.Wishlist)
		mount(api, "/auth", h.Auth)
		mount(api, "/account", h.Account)
		mount(api, "/groups", h.Groups)
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

func mount(api chi.Router, prefix string, registrar RouteRegistrar) {
	api.Route(prefix, registrar.RegisterRoutes)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// # Server Lifecycle

// ListenAndServe blocks until the server is closed or fails.
func (s *Server) ListenAndServe() error {
	s.log.Info("server_starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown stops the server, waiting for in-flight requests up to timeout.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
