package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/deckbuilder/internal/api/handlers"
	"github.com/ramonehamilton/deckbuilder/internal/api/response"
	"github.com/ramonehamilton/deckbuilder/internal/version"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check endpoint (no versioning)
	s.router.Get("/health", s.healthCheck)

	// WebSocket endpoint; ?session=<id> scopes the stream
	s.router.Get("/ws", s.wsHub.ServeWs)

	svc := s.services

	s.router.Route("/api/v1", func(r chi.Router) {
		// Card routes
		cardHandler := handlers.NewCardHandler(svc.Catalog, svc.Sessions.Filters(), svc.Metrics)
		r.Route("/cards", func(r chi.Router) {
			r.Get("/", cardHandler.ListCards)
			r.Get("/options", cardHandler.GetOptions)
			r.Post("/search", cardHandler.SearchCards)
			r.Get("/{cardID}", cardHandler.GetCard)
		})

		// Session routes
		sessionHandler := handlers.NewSessionHandler(handlers.SessionHandlerConfig{
			Sessions:   svc.Sessions,
			Catalog:    svc.Catalog,
			Store:      svc.Store,
			Renderer:   svc.Renderer,
			Dispatcher: svc.Dispatcher,
			Metrics:    svc.Metrics,

			IncludeCatalog: svc.RenderWithCatalog,
		})
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessionHandler.CreateSession)
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", sessionHandler.GetSession)
				r.Delete("/", sessionHandler.DeleteSession)
				r.Get("/filters", sessionHandler.GetFilters)
				r.Patch("/filters", sessionHandler.UpdateFilters)
				r.Get("/cards", sessionHandler.GetCards)
				r.Get("/deck", sessionHandler.GetDeck)
				r.Post("/deck/delta", sessionHandler.ApplyDelta)
				r.Get("/deck/curve", sessionHandler.GetCurve)
				r.Post("/import", sessionHandler.ImportDeck)
				r.Get("/export", sessionHandler.ExportDeck)
				r.Post("/image", sessionHandler.GenerateImage)
				r.Post("/save", sessionHandler.SaveDeck)
				r.Post("/load", sessionHandler.LoadDeck)
			})
		})

		// Saved deck routes
		deckHandler := handlers.NewDeckHandler(svc.Store, svc.Catalog, svc.Dispatcher)
		r.Route("/decks", func(r chi.Router) {
			r.Get("/", deckHandler.ListDecks)
			r.Get("/{name}", deckHandler.GetDeck)
			r.Delete("/{name}", deckHandler.DeleteDeck)
		})

		// System routes
		systemHandler := handlers.NewSystemHandler(svc.Catalog, svc.Sessions, svc.Metrics, svc.Dispatcher)
		r.Route("/system", func(r chi.Router) {
			r.Get("/status", systemHandler.GetStatus)
			r.Get("/version", systemHandler.GetVersion)
			r.Get("/metrics", systemHandler.GetMetrics)
			r.Post("/catalog/reload", systemHandler.ReloadCatalog)
		})
	})
}

// healthCheck returns server health status.
func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"service": version.Service,
		"version": version.GetVersion(),
	})
}
