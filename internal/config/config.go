// Package config loads the server configuration from a TOML file with
// DECKBUILDER_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"

	"github.com/ramonehamilton/deckbuilder/internal/cards/filter"
	"github.com/ramonehamilton/deckbuilder/internal/cards/ordering"
	"github.com/ramonehamilton/deckbuilder/internal/deck"
)

// Storage backends.
const (
	BackendSQLite   = "sqlite"
	BackendSaveData = "savedata"
)

// Config is the server configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Catalog  CatalogConfig  `toml:"catalog"`
	Filter   FilterConfig   `toml:"filter"`
	Rules    RulesConfig    `toml:"rules"`
	Storage  StorageConfig  `toml:"storage"`
	Renderer RendererConfig `toml:"renderer"`
	App      AppConfig      `toml:"app"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port               int      `toml:"port"                 env:"DECKBUILDER_PORT"`
	AllowedOrigins     []string `toml:"allowed_origins"      env:"DECKBUILDER_ALLOWED_ORIGINS" envSeparator:","`
	RequestTimeout     string   `toml:"request_timeout"      env:"DECKBUILDER_REQUEST_TIMEOUT"`
	SessionIdleTimeout string   `toml:"session_idle_timeout" env:"DECKBUILDER_SESSION_IDLE_TIMEOUT"` // "0" keeps sessions forever
}

// CatalogConfig says where the card list comes from. URL wins over Path.
type CatalogConfig struct {
	Path       string `toml:"path"        env:"DECKBUILDER_CATALOG_PATH"`
	URL        string `toml:"url"         env:"DECKBUILDER_CATALOG_URL"`
	Watch      bool   `toml:"watch"       env:"DECKBUILDER_CATALOG_WATCH"`
	SortScheme string `toml:"sort_scheme" env:"DECKBUILDER_SORT_SCHEME"` // "grouping" or "display"
}

// FilterConfig selects the filter-state shape.
type FilterConfig struct {
	Variant string `toml:"variant" env:"DECKBUILDER_FILTER_VARIANT"` // "facet" or "range"
}

// RulesConfig contains deck legality limits.
type RulesConfig struct {
	MaxCopies           int  `toml:"max_copies"            env:"DECKBUILDER_MAX_COPIES"`
	MaxLeaderCopies     int  `toml:"max_leader_copies"     env:"DECKBUILDER_MAX_LEADER_COPIES"`
	ClearPreviousLeader bool `toml:"clear_previous_leader" env:"DECKBUILDER_CLEAR_PREVIOUS_LEADER"`
}

// StorageConfig selects the saved-deck backend: "sqlite" stores decks in the
// database at Path, "savedata" in the per-user data directory named AppName.
type StorageConfig struct {
	Backend string `toml:"backend"  env:"DECKBUILDER_STORAGE_BACKEND"`
	Path    string `toml:"path"     env:"DECKBUILDER_DB_PATH"`
	AppName string `toml:"app_name" env:"DECKBUILDER_APP_NAME"`
}

// RendererConfig points at the deck-sheet image service.
type RendererConfig struct {
	URL            string `toml:"url"             env:"DECKBUILDER_RENDERER_URL"`
	Timeout        string `toml:"timeout"         env:"DECKBUILDER_RENDERER_TIMEOUT"`
	IncludeCatalog bool   `toml:"include_catalog" env:"DECKBUILDER_RENDERER_INCLUDE_CATALOG"`
}

// AppConfig contains general settings.
type AppConfig struct {
	DebugMode bool `toml:"debug_mode" env:"DECKBUILDER_DEBUG"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:               8080,
			AllowedOrigins:     []string{"http://localhost:*", "http://127.0.0.1:*"},
			RequestTimeout:     "60s",
			SessionIdleTimeout: "24h",
		},
		Catalog: CatalogConfig{
			Path:       "cardlist.json",
			SortScheme: string(ordering.SchemeGrouping),
		},
		Filter: FilterConfig{
			Variant: string(filter.VariantFacet),
		},
		Rules: RulesConfig{
			MaxCopies:       deck.DefaultMaxCopies,
			MaxLeaderCopies: deck.DefaultMaxLeaderCopies,
		},
		Storage: StorageConfig{
			Backend: BackendSQLite,
			Path:    "",
			AppName: "deckbuilder",
		},
		Renderer: RendererConfig{
			Timeout: "60s",
		},
	}
}

// Dir returns the configuration directory, creating it if needed.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	dir := filepath.Join(homeDir, ".deckbuilder")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}
	return dir, nil
}

// DefaultPath returns the default configuration file path.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the configuration from path, falling back to the defaults when
// the file does not exist, then applies environment overrides. An empty path
// selects DefaultPath.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	config := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config file: %w", err)
	default:
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyEnv overrides fields from DECKBUILDER_* variables. Unset variables
// leave the current value alone.
func (c *Config) ApplyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Save writes the configuration to path.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	if _, err := time.ParseDuration(c.Server.RequestTimeout); err != nil {
		return fmt.Errorf("invalid request timeout %q: %w", c.Server.RequestTimeout, err)
	}
	if _, err := time.ParseDuration(c.Server.SessionIdleTimeout); err != nil {
		return fmt.Errorf("invalid session idle timeout %q: %w", c.Server.SessionIdleTimeout, err)
	}

	if c.Catalog.Path == "" && c.Catalog.URL == "" {
		return errors.New("catalog path or url is required")
	}
	if c.Catalog.Watch && c.Catalog.URL != "" {
		return errors.New("catalog watch requires a file catalog")
	}
	if _, err := ordering.ParseScheme(c.Catalog.SortScheme); err != nil {
		return err
	}
	if _, err := filter.ParseVariant(c.Filter.Variant); err != nil {
		return err
	}

	if c.Rules.MaxCopies < 0 {
		return fmt.Errorf("max copies cannot be negative: %d", c.Rules.MaxCopies)
	}
	if c.Rules.MaxLeaderCopies < 0 {
		return fmt.Errorf("max leader copies cannot be negative: %d", c.Rules.MaxLeaderCopies)
	}

	switch strings.ToLower(c.Storage.Backend) {
	case BackendSQLite:
	case BackendSaveData:
		if c.Storage.AppName == "" {
			return errors.New("savedata backend requires an app name")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	if _, err := time.ParseDuration(c.Renderer.Timeout); err != nil {
		return fmt.Errorf("invalid renderer timeout %q: %w", c.Renderer.Timeout, err)
	}
	return nil
}

// GetRequestTimeout returns the per-request timeout.
func (c *Config) GetRequestTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Server.RequestTimeout)
}

// GetSessionIdleTimeout returns how long an untouched session is kept.
func (c *Config) GetSessionIdleTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Server.SessionIdleTimeout)
}

// GetRendererTimeout returns the image request timeout.
func (c *Config) GetRendererTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Renderer.Timeout)
}

// SortScheme returns the parsed catalog ordering.
func (c *Config) SortScheme() ordering.Scheme {
	s, err := ordering.ParseScheme(c.Catalog.SortScheme)
	if err != nil {
		return ordering.SchemeGrouping
	}
	return s
}

// FilterVariant returns the parsed filter variant.
func (c *Config) FilterVariant() filter.Variant {
	v, err := filter.ParseVariant(c.Filter.Variant)
	if err != nil {
		return filter.VariantFacet
	}
	return v
}

// DeckRules returns the deck legality rules.
func (c *Config) DeckRules() deck.Rules {
	return deck.Rules{
		MaxCopies:           c.Rules.MaxCopies,
		MaxLeaderCopies:     c.Rules.MaxLeaderCopies,
		ClearPreviousLeader: c.Rules.ClearPreviousLeader,
	}
}

// StoragePath returns the sqlite path, defaulting to decks.db in the
// configuration directory.
func (c *Config) StoragePath() (string, error) {
	if c.Storage.Path != "" {
		return c.Storage.Path, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "decks.db"), nil
}
