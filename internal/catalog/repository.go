// Package catalog owns the loaded card catalog: it fetches it once from a
// source, orders it with the configured scheme and serves lookups.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ramonehamilton/deckbuilder/internal/cards"
	"github.com/ramonehamilton/deckbuilder/internal/cards/ordering"
)

// Config configures a Repository.
type Config struct {
	Source Source
	Scheme ordering.Scheme
	Logger *slog.Logger
}

// Repository loads the catalog once and caches it until Reset.
type Repository struct {
	source Source
	cmp    ordering.Comparator
	logger *slog.Logger

	mu       sync.RWMutex
	loaded   bool
	list     []cards.Card
	byID     map[string]cards.Card
	options  Options
	loadedAt time.Time
}

// NewRepository creates a repository. The catalog is not fetched until the
// first call to Cards or Load.
func NewRepository(config Config) (*Repository, error) {
	if config.Source == nil {
		return nil, fmt.Errorf("source is required")
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Scheme == "" {
		config.Scheme = ordering.SchemeGrouping
	}

	return &Repository{
		source: config.Source,
		cmp:    ordering.ForScheme(config.Scheme),
		logger: config.Logger,
	}, nil
}

// Cards returns the ordered catalog, loading it on first use. A failed load
// is logged and yields an empty catalog; it is not cached, so a later call
// tries again. The returned slice is shared and must not be modified.
func (r *Repository) Cards(ctx context.Context) []cards.Card {
	r.mu.RLock()
	if r.loaded {
		list := r.list
		r.mu.RUnlock()
		return list
	}
	r.mu.RUnlock()

	if err := r.Load(ctx); err != nil {
		return []cards.Card{}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.list == nil {
		return []cards.Card{}
	}
	return r.list
}

// Load fetches the catalog if it is not already cached.
func (r *Repository) Load(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.loaded {
		return nil
	}

	start := time.Now()
	records, err := r.source.Fetch(ctx)
	if err != nil {
		r.logger.Error("Catalog load failed", "source", r.source.String(), "error", err)
		return fmt.Errorf("failed to load catalog from %s: %w", r.source, err)
	}

	list := r.cmp.Sorted(cards.ParseAll(records))
	byID := make(map[string]cards.Card, len(list))
	for _, c := range list {
		if _, dup := byID[c.ID]; dup {
			r.logger.Warn("Duplicate card ID in catalog", "id", c.ID)
			continue
		}
		byID[c.ID] = c
	}

	r.list = list
	r.byID = byID
	r.options = deriveOptions(list)
	r.loaded = true
	r.loadedAt = time.Now()

	r.logger.Info("Catalog loaded",
		"source", r.source.String(),
		"cards", len(list),
		"duration", time.Since(start))
	return nil
}

// Reset drops the cached catalog so the next call to Cards reloads it.
func (r *Repository) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.loaded = false
	r.list = nil
	r.byID = nil
	r.options = Options{}
	r.loadedAt = time.Time{}
}

// Reload resets the cache and loads again.
func (r *Repository) Reload(ctx context.Context) error {
	r.Reset()
	return r.Load(ctx)
}

// Lookup returns the cached card with the given ID. It does not trigger a load.
func (r *Repository) Lookup(id string) (cards.Card, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byID[id]
	return c, ok
}

// Options returns the facet options derived from the cached catalog.
func (r *Repository) Options(ctx context.Context) Options {
	_ = r.Cards(ctx)

	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.loaded {
		return deriveOptions(nil)
	}
	return r.options
}

// Status describes the cache.
type Status struct {
	Source   string    `json:"source"`
	Loaded   bool      `json:"loaded"`
	Cards    int       `json:"cards"`
	LoadedAt time.Time `json:"loaded_at,omitempty"`
}

// Status reports what is cached.
func (r *Repository) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Status{
		Source:   r.source.String(),
		Loaded:   r.loaded,
		Cards:    len(r.list),
		LoadedAt: r.loadedAt,
	}
}
