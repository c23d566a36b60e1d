package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/ramonehamilton/deckbuilder/internal/api/response"
	"github.com/ramonehamilton/deckbuilder/internal/catalog"
	"github.com/ramonehamilton/deckbuilder/internal/events"
	"github.com/ramonehamilton/deckbuilder/internal/metrics"
	"github.com/ramonehamilton/deckbuilder/internal/version"
)

// SessionCounter reports the number of live sessions.
type SessionCounter interface {
	Count() int
}

// SystemHandler handles system-related API requests.
type SystemHandler struct {
	catalog    CatalogService
	sessions   SessionCounter
	metrics    *metrics.ServiceMetrics
	dispatcher *events.EventDispatcher
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler(catalog CatalogService, sessions SessionCounter, m *metrics.ServiceMetrics, dispatcher *events.EventDispatcher) *SystemHandler {
	if m == nil {
		m = metrics.New()
	}
	return &SystemHandler{catalog: catalog, sessions: sessions, metrics: m, dispatcher: dispatcher}
}

// Status describes the running service.
type Status struct {
	Service  string         `json:"service"`
	Version  string         `json:"version"`
	Catalog  catalog.Status `json:"catalog"`
	Sessions int            `json:"sessions"`
}

// GetStatus returns the system status.
func (h *SystemHandler) GetStatus(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, Status{
		Service:  version.Service,
		Version:  version.GetVersion(),
		Catalog:  h.catalog.Status(),
		Sessions: h.sessions.Count(),
	})
}

// GetVersion returns the application version.
func (h *SystemHandler) GetVersion(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"version": version.GetVersion(),
		"service": version.Service,
	})
}

// GetMetrics returns the service metrics.
func (h *SystemHandler) GetMetrics(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, h.metrics.GetStats())
}

// ReloadCatalog drops the cached catalog and fetches it again.
func (h *SystemHandler) ReloadCatalog(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	err := h.catalog.Reload(r.Context())
	h.metrics.CatalogLoadLatency.Time(start)

	status := h.catalog.Status()
	reloaded := events.CatalogReloadedEvent{Cards: status.Cards}
	if err != nil {
		reloaded.Error = err.Error()
	}
	if h.dispatcher != nil {
		h.dispatcher.Dispatch(events.NewGlobalEvent(r.Context(), events.TypeCatalogReloaded, reloaded))
	}

	if err != nil {
		log.Printf("[API] Catalog reload failed: %v", err)
		response.BadGateway(w, err)
		return
	}
	response.Success(w, status)
}
