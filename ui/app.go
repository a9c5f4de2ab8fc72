// Package ui serves the dashboard's HTTP API.
package ui

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"claimsight/app"
	"claimsight/internal"
	"claimsight/internal/config"
)

// App represents the HTTP application
type App struct {
	router *chi.Mux
	logger *internal.Logger
	config config.ServerConfig

	dashboards *app.DashboardService
	anomalies  *app.AnomalyService
	filters    *app.FilterService
	insights   *app.InsightService
	exports    *app.ExportService
	chat       *app.ChatService // nil when no model API key is configured

	server *http.Server
}

// Services bundles the application services the HTTP layer exposes.
type Services struct {
	Dashboards *app.DashboardService
	Anomalies  *app.AnomalyService
	Filters    *app.FilterService
	Insights   *app.InsightService
	Exports    *app.ExportService
	Chat       *app.ChatService
}

// NewApp creates the HTTP application
func NewApp(cfg config.ServerConfig, services Services, logger *internal.Logger) *App {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	a := &App{
		router:     chi.NewRouter(),
		logger:     logger,
		config:     cfg,
		dashboards: services.Dashboards,
		anomalies:  services.Anomalies,
		filters:    services.Filters,
		insights:   services.Insights,
		exports:    services.Exports,
		chat:       services.Chat,
	}

	a.setupMiddleware()
	a.setupRoutes()
	return a
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(requestID)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/health", a.handleHealth)

	a.router.Route("/api", func(r chi.Router) {
		r.Get("/overview", a.handleOverview)
		r.Get("/claims", a.handleClaims)
		r.Get("/anomalies", a.handleAnomalies)
		r.Get("/filters", a.handleFilterOptions)
		r.Get("/entities", a.handleEntities)
		r.Get("/insights", a.handleInsights)
		r.Get("/export", a.handleExport)
		r.Post("/chat", a.handleChat)
	})

	a.router.Get("/report/anomalies", a.handleAnomalyReport)
}

// Router exposes the handler tree, mainly for tests.
func (a *App) Router() http.Handler {
	return a.router
}

// Start starts the HTTP server and blocks until it stops.
func (a *App) Start() error {
	a.server = &http.Server{
		Addr:         ":" + a.config.Port,
		Handler:      a.router,
		ReadTimeout:  a.config.ReadTimeout,
		WriteTimeout: a.config.WriteTimeout,
	}
	a.logger.Info("Starting ClaimSight server on :%s", a.config.Port)
	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (a *App) Shutdown(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}
