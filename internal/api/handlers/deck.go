package handlers

import (
	"errors"
	"net/http"

	"github.com/ramonehamilton/deckbuilder/internal/api/response"
	"github.com/ramonehamilton/deckbuilder/internal/deck"
	"github.com/ramonehamilton/deckbuilder/internal/events"
)

// DeckHandler handles saved-deck API requests.
type DeckHandler struct {
	store      DeckStore
	catalog    CatalogService
	dispatcher *events.EventDispatcher
}

// NewDeckHandler creates a new DeckHandler.
func NewDeckHandler(store DeckStore, catalog CatalogService, dispatcher *events.EventDispatcher) *DeckHandler {
	return &DeckHandler{store: store, catalog: catalog, dispatcher: dispatcher}
}

// ListDecks returns the saved deck names in save order.
func (h *DeckHandler) ListDecks(w http.ResponseWriter, r *http.Request) {
	names, err := h.store.ListNames(r.Context())
	if err != nil {
		response.InternalError(w, err)
		return
	}
	response.Success(w, names)
}

// SavedDeck is a saved deck resolved against the catalog.
type SavedDeck struct {
	Name    string       `json:"name"`
	State   deck.State   `json:"state"`
	Listing deck.Listing `json:"listing"`
	Summary deck.Summary `json:"summary"`
}

// GetDeck returns a saved deck by name.
func (h *DeckHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "name")
	if name == "" {
		response.BadRequest(w, errors.New("deck name is required"))
		return
	}

	state, err := h.store.Load(r.Context(), name)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	lookup := catalogLookup(r.Context(), h.catalog)
	response.Success(w, SavedDeck{
		Name:    name,
		State:   state,
		Listing: deck.Entries(state, lookup),
		Summary: deck.Summarize(state, lookup),
	})
}

// DeleteDeck removes a saved deck.
func (h *DeckHandler) DeleteDeck(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "name")
	if name == "" {
		response.BadRequest(w, errors.New("deck name is required"))
		return
	}

	if err := h.store.Delete(r.Context(), name); err != nil {
		writeStoreError(w, err)
		return
	}

	if h.dispatcher != nil {
		h.dispatcher.Dispatch(events.NewGlobalEvent(r.Context(), events.TypeDeckDeleted, events.DeckDeletedEvent{Name: name}))
	}
	response.NoContent(w)
}
