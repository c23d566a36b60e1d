package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/ramonehamilton/deckbuilder/internal/api/response"
	"github.com/ramonehamilton/deckbuilder/internal/cards"
	"github.com/ramonehamilton/deckbuilder/internal/cards/filter"
	"github.com/ramonehamilton/deckbuilder/internal/charts"
	"github.com/ramonehamilton/deckbuilder/internal/deck"
	"github.com/ramonehamilton/deckbuilder/internal/deckexport"
	"github.com/ramonehamilton/deckbuilder/internal/deckimport"
	"github.com/ramonehamilton/deckbuilder/internal/deckstore"
	"github.com/ramonehamilton/deckbuilder/internal/events"
	"github.com/ramonehamilton/deckbuilder/internal/imagegen"
	"github.com/ramonehamilton/deckbuilder/internal/metrics"
	"github.com/ramonehamilton/deckbuilder/internal/session"
)

// SessionHandlerConfig wires a SessionHandler.
type SessionHandlerConfig struct {
	Sessions   *session.Manager
	Catalog    CatalogService
	Store      DeckStore
	Renderer   Renderer
	Dispatcher *events.EventDispatcher
	Metrics    *metrics.ServiceMetrics

	// IncludeCatalog forwards the catalog records with every render.
	IncludeCatalog bool
}

// SessionHandler handles the per-session deck editing API.
type SessionHandler struct {
	sessions   *session.Manager
	catalog    CatalogService
	store      DeckStore
	renderer   Renderer
	dispatcher *events.EventDispatcher
	metrics    *metrics.ServiceMetrics

	includeCatalog bool
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(config SessionHandlerConfig) *SessionHandler {
	if config.Metrics == nil {
		config.Metrics = metrics.New()
	}
	return &SessionHandler{
		sessions:   config.Sessions,
		catalog:    config.Catalog,
		store:      config.Store,
		renderer:   config.Renderer,
		dispatcher: config.Dispatcher,
		metrics:    config.Metrics,

		includeCatalog: config.IncludeCatalog,
	}
}

// DeckView is a session's deck resolved against the catalog.
type DeckView struct {
	SessionID string       `json:"sessionId"`
	Version   uint64       `json:"version"`
	State     deck.State   `json:"state"`
	Listing   deck.Listing `json:"listing"`
	Summary   deck.Summary `json:"summary"`
}

func (h *SessionHandler) deckView(r *http.Request, snap session.Snapshot) DeckView {
	lookup := catalogLookup(r.Context(), h.catalog)
	return DeckView{
		SessionID: snap.ID,
		Version:   snap.Version,
		State:     snap.Deck,
		Listing:   deck.Entries(snap.Deck, lookup),
		Summary:   deck.Summarize(snap.Deck, lookup),
	}
}

// snapshot resolves the session named in the URL, writing 404 on a miss.
func (h *SessionHandler) snapshot(w http.ResponseWriter, r *http.Request) (session.Snapshot, bool) {
	s, err := h.sessions.Get(pathParam(r, "sessionID"))
	if err != nil {
		response.NotFound(w, err)
		return session.Snapshot{}, false
	}
	return s.Snapshot(), true
}

// writeUpdateError maps a session mutation error to a status.
func writeUpdateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		response.NotFound(w, err)
	case errors.Is(err, filter.ErrUnknownField), errors.Is(err, filter.ErrUnsupportedUpdate):
		response.BadRequest(w, err)
	default:
		response.InternalError(w, err)
	}
}

// CreateSession starts a new empty session.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Create(r.Context())
	response.Created(w, s.Snapshot())
}

// GetSession returns the session state.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	response.Success(w, snap)
}

// DeleteSession drops a session.
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(pathParam(r, "sessionID")); err != nil {
		response.NotFound(w, err)
		return
	}
	response.NoContent(w)
}

// FiltersView is a session's filter state.
type FiltersView struct {
	SessionID string       `json:"sessionId"`
	Version   uint64       `json:"version"`
	Filters   filter.State `json:"filters"`
}

// GetFilters returns the session's filter state.
func (h *SessionHandler) GetFilters(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	response.Success(w, FiltersView{SessionID: snap.ID, Version: snap.Version, Filters: snap.Filters})
}

// UpdateFilters applies one {field, value} update or an array of them. The
// batch is atomic.
func (h *SessionHandler) UpdateFilters(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if err := decodeBody(r, &raw); err != nil {
		response.BadRequest(w, err)
		return
	}

	var wire []filter.WireUpdate
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &wire); err != nil {
			response.BadRequest(w, fmt.Errorf("invalid filter updates: %w", err))
			return
		}
	} else {
		var single filter.WireUpdate
		if err := json.Unmarshal(trimmed, &single); err != nil {
			response.BadRequest(w, fmt.Errorf("invalid filter update: %w", err))
			return
		}
		wire = []filter.WireUpdate{single}
	}
	if len(wire) == 0 {
		response.BadRequest(w, errors.New("at least one filter update is required"))
		return
	}

	updates := make([]filter.Update, 0, len(wire))
	for _, wu := range wire {
		u, err := wu.Decode()
		if err != nil {
			response.BadRequest(w, err)
			return
		}
		updates = append(updates, u)
	}

	snap, err := h.sessions.ApplyFilter(r.Context(), pathParam(r, "sessionID"), updates...)
	if err != nil {
		writeUpdateError(w, err)
		return
	}
	response.Success(w, FiltersView{SessionID: snap.ID, Version: snap.Version, Filters: snap.Filters})
}

// GetCards returns the catalog filtered by the session's filters and leader.
func (h *SessionHandler) GetCards(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	start := time.Now()
	result := h.sessions.Filters().Filter(h.catalog.Cards(r.Context()), snap.Filters, snap.Deck.Leader())
	h.metrics.FilterLatency.Time(start)

	writeCards(w, r, result)
}

// GetDeck returns the session's deck listing and summary.
func (h *SessionHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	response.Success(w, h.deckView(r, snap))
}

// DeltaRequest adds or removes copies of a card.
type DeltaRequest struct {
	CardID string `json:"cardId"`
	Delta  int    `json:"delta"`
}

// ApplyDelta adds delta copies of a card to the session's deck.
func (h *SessionHandler) ApplyDelta(w http.ResponseWriter, r *http.Request) {
	var req DeltaRequest
	if err := decodeBody(r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}
	if req.CardID == "" {
		response.BadRequest(w, errors.New("cardId is required"))
		return
	}

	card, ok := catalogLookup(r.Context(), h.catalog).Lookup(req.CardID)
	if !ok {
		response.NotFound(w, fmt.Errorf("card not found: %s", req.CardID))
		return
	}

	snap, err := h.sessions.ApplyDelta(r.Context(), pathParam(r, "sessionID"), card, req.Delta)
	if err != nil {
		writeUpdateError(w, err)
		return
	}
	response.Success(w, h.deckView(r, snap))
}

// CurveView is the cost curve and color breakdown as chart series.
type CurveView struct {
	MainCards  int                `json:"main_cards"`
	TargetSize int                `json:"target_size"`
	CostCurve  []charts.DataPoint `json:"cost_curve"`
	Colors     []charts.DataPoint `json:"colors"`
}

// GetCurve returns the deck's cost curve. With ?format=html it renders a
// chart page instead; ?chart=colors selects the color breakdown.
func (h *SessionHandler) GetCurve(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	summary := deck.Summarize(snap.Deck, catalogLookup(r.Context(), h.catalog))

	if r.URL.Query().Get("format") != "html" {
		response.Success(w, CurveView{
			MainCards:  summary.MainCards,
			TargetSize: summary.TargetSize,
			CostCurve:  charts.CostCurvePoints(summary.CostCurve),
			Colors:     charts.ColorPoints(summary.ColorCounts),
		})
		return
	}

	var buf bytes.Buffer
	config := charts.DefaultChartConfig()
	var err error
	switch chart := r.URL.Query().Get("chart"); chart {
	case "", "cost":
		err = charts.RenderCostCurve(&buf, summary, config)
	case "colors":
		err = charts.RenderColorPie(&buf, summary, config)
	default:
		response.BadRequest(w, fmt.Errorf("unknown chart %q", chart))
		return
	}
	if err != nil {
		response.InternalError(w, err)
		return
	}
	response.Binary(w, "text/html; charset=utf-8", "", buf.Bytes())
}

// ImportRequest carries a deck payload in the JSON or text format.
type ImportRequest struct {
	Payload string `json:"payload"`
}

// ImportResult is the session's deck after an import.
type ImportResult struct {
	DeckView
	Format   deckimport.Format `json:"format"`
	Warnings []string          `json:"warnings,omitempty"`
}

// ImportDeck replaces the session's deck with an imported one. A payload that
// cannot be parsed leaves the session untouched.
func (h *SessionHandler) ImportDeck(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if err := decodeBody(r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}

	id := pathParam(r, "sessionID")
	if _, err := h.sessions.Get(id); err != nil {
		response.NotFound(w, err)
		return
	}

	result, err := deckimport.NewParser(catalogLookup(r.Context(), h.catalog)).Parse(req.Payload)
	if err != nil {
		h.metrics.ImportFailures.Add(1)
		log.Printf("[API] Import into session %s failed: %v", id, err)
		response.UnprocessableEntity(w, deckimport.ErrImportFailed)
		return
	}

	snap, err := h.sessions.Replace(r.Context(), id, events.ReasonImport, result.State)
	if err != nil {
		writeUpdateError(w, err)
		return
	}
	response.Success(w, ImportResult{
		DeckView: h.deckView(r, snap),
		Format:   result.Format,
		Warnings: result.Warnings,
	})
}

// ExportDeck downloads the session's deck as json, text or qr.
func (h *SessionHandler) ExportDeck(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	format, err := deckexport.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	out, err := deckexport.NewExporter(catalogLookup(r.Context(), h.catalog)).Export(snap.Deck, r.URL.Query().Get("name"), format)
	if err != nil {
		response.InternalError(w, err)
		return
	}
	response.Binary(w, out.ContentType, out.Filename, out.Content)
}

// ImageRequest configures a deck-sheet render.
type ImageRequest struct {
	DeckName       string `json:"deckName"`
	IncludeCatalog bool   `json:"includeCatalog"`
}

// GenerateImage asks the renderer for a deck-sheet image of the session's deck.
func (h *SessionHandler) GenerateImage(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	var req ImageRequest
	if r.ContentLength != 0 {
		if err := decodeBody(r, &req); err != nil {
			response.BadRequest(w, err)
			return
		}
	}
	if snap.Deck.Leader() == "" {
		response.UnprocessableEntity(w, imagegen.ErrNoLeader)
		return
	}
	if h.renderer == nil {
		response.ServiceUnavailable(w, imagegen.ErrNotConfigured)
		return
	}

	var catalog []cards.Card
	if req.IncludeCatalog || h.includeCatalog {
		catalog = h.catalog.Cards(r.Context())
	}

	start := time.Now()
	img, err := h.renderer.Render(r.Context(), imagegen.NewRequest(snap.Deck, req.DeckName, catalog))
	h.metrics.RenderLatency.Time(start)
	h.metrics.Renders.Add(1)
	if err != nil {
		h.metrics.RenderFailures.Add(1)
		switch {
		case errors.Is(err, imagegen.ErrNoLeader):
			response.UnprocessableEntity(w, err)
		case errors.Is(err, imagegen.ErrNotConfigured):
			response.ServiceUnavailable(w, err)
		default:
			response.BadGateway(w, err)
		}
		return
	}
	response.Binary(w, img.ContentType, img.Filename, img.Data)
}

// NamedDeckRequest names a saved deck.
type NamedDeckRequest struct {
	Name string `json:"name"`
}

// SaveDeck saves the session's deck under a name.
func (h *SessionHandler) SaveDeck(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	var req NamedDeckRequest
	if err := decodeBody(r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}

	if err := h.store.Save(r.Context(), req.Name, snap.Deck.Deck, snap.Deck.LeaderID); err != nil {
		writeStoreError(w, err)
		return
	}

	saved := events.DeckSavedEvent{Name: req.Name, TotalCards: snap.Deck.Deck.Total()}
	if h.dispatcher != nil {
		h.dispatcher.Dispatch(events.NewGlobalEvent(r.Context(), events.TypeDeckSaved, saved))
	}
	response.Success(w, saved)
}

// LoadDeck replaces the session's deck with a saved one.
func (h *SessionHandler) LoadDeck(w http.ResponseWriter, r *http.Request) {
	var req NamedDeckRequest
	if err := decodeBody(r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}

	id := pathParam(r, "sessionID")
	if _, err := h.sessions.Get(id); err != nil {
		response.NotFound(w, err)
		return
	}

	state, err := h.store.Load(r.Context(), req.Name)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	snap, err := h.sessions.Replace(r.Context(), id, events.ReasonLoad, state)
	if err != nil {
		writeUpdateError(w, err)
		return
	}
	response.Success(w, h.deckView(r, snap))
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, deckstore.ErrNotFound):
		response.NotFound(w, err)
	case errors.Is(err, deckstore.ErrEmptyName), errors.Is(err, deckstore.ErrReservedName):
		response.BadRequest(w, err)
	default:
		response.InternalError(w, err)
	}
}
