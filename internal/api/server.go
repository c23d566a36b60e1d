// Package api serves the deck builder's REST and WebSocket endpoints.
package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ramonehamilton/deckbuilder/internal/api/handlers"
	"github.com/ramonehamilton/deckbuilder/internal/api/websocket"
	"github.com/ramonehamilton/deckbuilder/internal/events"
	"github.com/ramonehamilton/deckbuilder/internal/metrics"
	"github.com/ramonehamilton/deckbuilder/internal/session"
)

// Server represents the REST API server.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	port       int

	allowedOrigins []string
	requestTimeout time.Duration

	// WebSocket hub for real-time events
	wsHub *websocket.Hub

	services *Services
}

// Config holds configuration for the API server.
type Config struct {
	Port           int
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// DefaultConfig returns the default API server configuration.
func DefaultConfig() *Config {
	return &Config{
		Port:           8080,
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		RequestTimeout: 60 * time.Second,
	}
}

// Services holds what the handlers are built from.
type Services struct {
	Catalog    handlers.CatalogService
	Sessions   *session.Manager
	Store      handlers.DeckStore
	Renderer   handlers.Renderer
	Dispatcher *events.EventDispatcher
	Metrics    *metrics.ServiceMetrics

	// RenderWithCatalog forwards the catalog records with every image request.
	RenderWithCatalog bool
}

// NewServer creates a new API server over services.
func NewServer(cfg *Config, services *Services) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultConfig().RequestTimeout
	}
	if services.Dispatcher == nil {
		services.Dispatcher = events.NewEventDispatcher()
	}
	if services.Metrics == nil {
		services.Metrics = metrics.New()
	}

	s := &Server{
		router:         chi.NewRouter(),
		port:           cfg.Port,
		allowedOrigins: cfg.AllowedOrigins,
		requestTimeout: cfg.RequestTimeout,
		wsHub:          websocket.NewHub(cfg.AllowedOrigins...),
		services:       services,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	// Request ID for tracing
	s.router.Use(middleware.RequestID)

	// Real IP detection
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(middleware.Logger)

	// Panic recovery
	s.router.Use(middleware.Recoverer)

	// Request counters and latency
	s.router.Use(s.services.Metrics.Middleware)

	// Request timeout
	s.router.Use(middleware.Timeout(s.requestTimeout))

	// CORS configuration
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Content-Type enforcement for POST/PUT/PATCH only (not GET/DELETE/OPTIONS)
	s.router.Use(s.jsonContentTypeMiddleware)
}

// jsonContentTypeMiddleware enforces application/json content-type for requests with bodies.
func (s *Server) jsonContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			if r.ContentLength == 0 {
				next.ServeHTTP(w, r)
				return
			}

			contentType := r.Header.Get("Content-Type")
			if contentType == "" || (contentType != "application/json" && !strings.HasPrefix(contentType, "application/json;")) {
				http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Handler returns the router, for serving without Start.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the WebSocket hub and the API server in goroutines.
func (s *Server) Start() error {
	go s.wsHub.Run()

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      s.requestTimeout + 5*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Printf("API server starting on port %d", s.port)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("API server error: %v", err)
		}
	}()

	return nil
}

// Shutdown gracefully shuts down the API server and the WebSocket hub.
func (s *Server) Shutdown(ctx context.Context) error {
	s.wsHub.Stop()
	if s.httpServer == nil {
		return nil
	}

	log.Println("Shutting down API server...")
	return s.httpServer.Shutdown(ctx)
}

// Port returns the port the server is configured to listen on.
func (s *Server) Port() int {
	return s.port
}

// WebSocketHub returns the WebSocket hub.
func (s *Server) WebSocketHub() *websocket.Hub {
	return s.wsHub
}

// NewWebSocketObserver creates an observer that forwards dispatched events
// to the server's WebSocket clients.
func (s *Server) NewWebSocketObserver() *websocket.WebSocketObserver {
	return websocket.NewWebSocketObserver(s.wsHub)
}
