package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/openclaims/heron/internal/domain"
	"github.com/openclaims/heron/internal/knowledge"
	"github.com/openclaims/heron/internal/pipeline"
	"github.com/openclaims/heron/internal/rules"
)

// Server represents the HTTP API server.
type Server struct {
	router  *chi.Mux
	handler *Handler
	server  *http.Server
	config  domain.ServerConfig
}

// NewServer creates a new API server.
func NewServer(cfg domain.ServerConfig, repo domain.Repository, cache domain.Cache, bus domain.EventBus, engine *rules.Engine, typologyEngine *rules.TypologyEngine, adjudicator *pipeline.Adjudicator, kb *knowledge.Base, version string, mode domain.AdjudicationMode) *Server {
	handler := NewHandler(repo, cache, bus, engine, typologyEngine, adjudicator, kb, version, mode)
	router := chi.NewRouter()

	// Global middleware stack
	router.Use(CORSMiddleware)         // CORS for browser clients
	router.Use(RecoverMiddleware)      // Recover from panics
	router.Use(TracingMiddleware)      // OpenTelemetry tracing
	router.Use(LoggingMiddleware)      // Request logging
	router.Use(middleware.RealIP)      // Extract real IP
	router.Use(middleware.Compress(5)) // Gzip compression

	// Health endpoints (no tenant required)
	router.Get("/health", handler.Health)
	router.Get("/ready", handler.Ready)

	// API routes (tenant required)
	router.Route("/", func(r chi.Router) {
		r.Use(TenantMiddleware)

		// Claim adjudication
		r.Post("/adjudicate", handler.Adjudicate)

		// Adjudication retrieval
		r.Get("/adjudications", handler.ListAdjudications)
		r.Get("/adjudications/high-risk", handler.ListHighRiskAdjudications)
		r.Get("/adjudications/{id}", handler.GetAdjudication)

		// Claim retrieval
		r.Get("/claims/{id}", handler.GetClaim)
		r.Get("/claims/{id}/summary", handler.GetClaimSummary)

		// Disease knowledge base
		r.Get("/diseases", handler.ListDiseases)
		r.Get("/diseases/{name}", handler.GetDisease)

		// Rule management
		r.Get("/rules", handler.ListRules)
		r.Get("/rules/{id}", handler.GetRule)
		r.Post("/rules", handler.CreateRule)
		r.Post("/rules/reload", handler.ReloadRules)

		// Typology management
		r.Get("/typologies", handler.ListTypologies)
		r.Get("/typologies/{id}", handler.GetTypology)
		r.Post("/typologies", handler.CreateTypology)
		r.Put("/typologies/{id}", handler.UpdateTypology)
		r.Delete("/typologies/{id}", handler.DeleteTypology)
		r.Post("/typologies/reload", handler.ReloadTypologies)
	})

	return &Server{
		router:  router,
		handler: handler,
		config:  cfg,
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.config.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.config.WriteTimeout) * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the Chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Handler returns the handler for testing.
func (s *Server) Handler() *Handler {
	return s.handler
}
