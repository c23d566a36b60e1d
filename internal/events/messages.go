package events

// Event types.
const (
	TypeSessionUpdated  = "session:updated"
	TypeSessionCreated  = "session:created"
	TypeCatalogReloaded = "catalog:reloaded"
	TypeDeckSaved       = "deck:saved"
	TypeDeckDeleted     = "deck:deleted"
)

// Reasons carried by SessionUpdatedEvent.
const (
	ReasonDelta   = "delta"
	ReasonFilter  = "filter"
	ReasonImport  = "import"
	ReasonLoad    = "load"
	ReasonReplace = "replace"
)

// SessionUpdatedEvent is the payload for session:updated.
type SessionUpdatedEvent struct {
	Version    uint64  `json:"version"`
	Reason     string  `json:"reason"`
	TotalCards int     `json:"totalCards"`
	LeaderID   *string `json:"leaderId"`
}

// SessionCreatedEvent is the payload for session:created.
type SessionCreatedEvent struct {
	ID string `json:"id"`
}

// CatalogReloadedEvent is the payload for catalog:reloaded.
type CatalogReloadedEvent struct {
	Cards int    `json:"cards"`
	Error string `json:"error,omitempty"`
}

// DeckSavedEvent is the payload for deck:saved.
type DeckSavedEvent struct {
	Name       string `json:"name"`
	TotalCards int    `json:"totalCards"`
}

// DeckDeletedEvent is the payload for deck:deleted.
type DeckDeletedEvent struct {
	Name string `json:"name"`
}
