// Package server provides the HTTP server exposing the JSON API, health,
// metrics and the live meal plan feed
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alchemorsel/recipebox/internal/infrastructure/config"
	"github.com/alchemorsel/recipebox/internal/infrastructure/http/handlers"
	"github.com/alchemorsel/recipebox/internal/infrastructure/http/middleware"
	"github.com/alchemorsel/recipebox/internal/infrastructure/http/realtime"
	"github.com/alchemorsel/recipebox/internal/infrastructure/http/response"
	"github.com/alchemorsel/recipebox/internal/infrastructure/monitoring"
	"github.com/alchemorsel/recipebox/internal/ports/inbound"
	"github.com/alchemorsel/recipebox/pkg/healthcheck"
	apperrors "github.com/alchemorsel/recipebox/pkg/errors"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

const requestTimeout = 30 * time.Second

// Dependencies groups what the server routes to. Metrics and Tracing may be
// nil.
type Dependencies struct {
	Recipes  inbound.RecipeService
	MealPlan inbound.MealPlanService
	Hub      *realtime.Hub
	Health   *healthcheck.HealthCheck
	Metrics  *monitoring.MetricsCollector
	Tracing  *monitoring.TracingProvider
}

// Server represents the HTTP server
type Server struct {
	config  *config.Config
	logger  *zap.Logger
	deps    Dependencies
	router  *chi.Mux
	handler http.Handler
	server  *http.Server
}

// NewServer creates a new HTTP server instance
func NewServer(cfg *config.Config, logger *zap.Logger, deps Dependencies) *Server {
	s := &Server{
		config: cfg,
		logger: logger.Named("http"),
		deps:   deps,
	}

	s.router = s.setupRouter()

	var handler http.Handler = s.router
	if deps.Tracing != nil {
		handler = deps.Tracing.Middleware("recipebox")(handler)
	}
	if cfg.Server.EnableH2C {
		handler = h2c.NewHandler(handler, &http2.Server{})
	}
	s.handler = handler

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    cfg.Server.MaxHeaderBytes,
	}

	return s
}

// setupRouter configures the HTTP router with middleware and routes
func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	healthPath := s.config.Monitoring.HealthCheckPath

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger, healthPath, "/metrics"))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Security(s.config.IsProduction()))
	r.Use(middleware.CORS(s.config.Server, s.config.IsDevelopment()))
	if s.deps.Metrics != nil {
		r.Use(middleware.Metrics(s.deps.Metrics))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, r, s.logger, apperrors.NewNotFoundError("Route"))
	})

	if s.deps.Health != nil {
		r.Get(healthPath, s.deps.Health.Handler())
	}
	if s.deps.Metrics != nil && s.config.Monitoring.EnableMetrics {
		r.Method(http.MethodGet, "/metrics", s.deps.Metrics.Handler())
	}
	if s.deps.Hub != nil {
		r.Method(http.MethodGet, "/ws/mealplan", s.deps.Hub)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(s.config.RateLimit, s.logger))
		r.Use(chimiddleware.Timeout(requestTimeout))
		if s.config.Server.EnableCompression {
			r.Use(middleware.Compressor(5))
		}
		r.Use(middleware.JSONBody(s.logger))
		r.Use(middleware.Warnings)
		s.setupAPIRoutes(r)
	})

	return r
}

// setupAPIRoutes configures REST API routes
func (s *Server) setupAPIRoutes(r chi.Router) {
	validator := handlers.NewRequestValidator()

	if s.deps.Recipes != nil {
		r.Route("/recipes", handlers.NewRecipeHandlers(s.deps.Recipes, validator, s.logger).Routes)
	}
	if s.deps.MealPlan != nil {
		r.Route("/mealplan", handlers.NewMealPlanHandlers(s.deps.MealPlan, validator, s.logger).Routes)
	}
}

// Handler returns the fully wrapped handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.server.Addr
}

// Start starts the HTTP server and blocks until it stops. A graceful
// shutdown is not reported as an error.
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server",
		zap.String("address", s.server.Addr),
		zap.String("environment", s.config.App.Environment),
		zap.Bool("h2c", s.config.Server.EnableH2C),
	)

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
