package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/deckbuilder/internal/api/response"
	"github.com/ramonehamilton/deckbuilder/internal/cards"
	"github.com/ramonehamilton/deckbuilder/internal/catalog"
	"github.com/ramonehamilton/deckbuilder/internal/deck"
	"github.com/ramonehamilton/deckbuilder/internal/imagegen"
)

// CatalogService is the card catalog the handlers read from.
type CatalogService interface {
	Cards(ctx context.Context) []cards.Card
	Lookup(id string) (cards.Card, bool)
	Options(ctx context.Context) catalog.Options
	Status() catalog.Status
	Reload(ctx context.Context) error
}

// DeckStore persists named decks.
type DeckStore interface {
	Save(ctx context.Context, name string, d deck.CountMap, leaderID *string) error
	Load(ctx context.Context, name string) (deck.State, error)
	ListNames(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, name string) error
}

// Renderer turns a deck into a deck-sheet image.
type Renderer interface {
	Render(ctx context.Context, req imagegen.Request) (*imagegen.Image, error)
}

var (
	_ CatalogService = (*catalog.Repository)(nil)
	_ Renderer       = (*imagegen.Client)(nil)
)

// catalogLookup returns a deck.CardLookup backed by the catalog, loading it first.
func catalogLookup(ctx context.Context, c CatalogService) deck.CardLookup {
	_ = c.Cards(ctx)
	return c
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// pathParam returns a decoded URL parameter.
func pathParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

const maxPageSize = 500

// writeCards writes list, paginated when the request carries page or
// page_size.
func writeCards(w http.ResponseWriter, r *http.Request, list []cards.Card) {
	q := r.URL.Query()
	if q.Get("page") == "" && q.Get("page_size") == "" {
		response.Success(w, list)
		return
	}

	page, err := positiveParam(q.Get("page"), 1)
	if err != nil {
		response.BadRequest(w, fmt.Errorf("invalid page: %w", err))
		return
	}
	pageSize, err := positiveParam(q.Get("page_size"), 50)
	if err != nil {
		response.BadRequest(w, fmt.Errorf("invalid page_size: %w", err))
		return
	}
	pageSize = min(pageSize, maxPageSize)

	start := min((page-1)*pageSize, len(list))
	end := min(start+pageSize, len(list))
	response.Paginated(w, list[start:end], page, pageSize, len(list))
}

func positiveParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, errors.New("must be at least 1")
	}
	return n, nil
}
