package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/ramonehamilton/deckbuilder/internal/api/response"
	"github.com/ramonehamilton/deckbuilder/internal/cards/filter"
	"github.com/ramonehamilton/deckbuilder/internal/metrics"
)

// CardHandler handles catalog API requests.
type CardHandler struct {
	catalog CatalogService
	filters *filter.Engine
	metrics *metrics.ServiceMetrics
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(catalog CatalogService, filters *filter.Engine, m *metrics.ServiceMetrics) *CardHandler {
	if filters == nil {
		filters = filter.NewEngine(filter.VariantFacet)
	}
	if m == nil {
		m = metrics.New()
	}
	return &CardHandler{catalog: catalog, filters: filters, metrics: m}
}

// ListCards returns the ordered catalog.
func (h *CardHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	writeCards(w, r, h.catalog.Cards(r.Context()))
}

// GetOptions returns the values each filter facet can take.
func (h *CardHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.catalog.Options(r.Context()))
}

// GetCard returns a card by ID.
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	cardID := pathParam(r, "cardID")
	if cardID == "" {
		response.BadRequest(w, errors.New("card ID is required"))
		return
	}

	card, ok := catalogLookup(r.Context(), h.catalog).Lookup(cardID)
	if !ok {
		response.NotFound(w, errors.New("card not found"))
		return
	}

	response.Success(w, card)
}

// SearchRequest is a stateless filter query.
type SearchRequest struct {
	Filters  *filter.State `json:"filters"`
	LeaderID string        `json:"leaderId"`
}

// SearchCards filters the catalog without a session.
func (h *CardHandler) SearchCards(w http.ResponseWriter, r *http.Request) {
	// Fields absent from the body keep the variant defaults.
	state := h.filters.NewState()
	req := SearchRequest{Filters: &state}
	if err := decodeBody(r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}
	if req.Filters == nil {
		state = h.filters.NewState()
	}

	start := time.Now()
	result := h.filters.Filter(h.catalog.Cards(r.Context()), state, req.LeaderID)
	h.metrics.FilterLatency.Time(start)

	writeCards(w, r, result)
}
