// Package main runs the deck builder REST and WebSocket server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ramonehamilton/deckbuilder/internal/api"
	"github.com/ramonehamilton/deckbuilder/internal/cards/filter"
	"github.com/ramonehamilton/deckbuilder/internal/catalog"
	"github.com/ramonehamilton/deckbuilder/internal/config"
	"github.com/ramonehamilton/deckbuilder/internal/deckstore"
	"github.com/ramonehamilton/deckbuilder/internal/events"
	"github.com/ramonehamilton/deckbuilder/internal/imagegen"
	"github.com/ramonehamilton/deckbuilder/internal/metrics"
	"github.com/ramonehamilton/deckbuilder/internal/session"
	"github.com/ramonehamilton/deckbuilder/internal/storage"
	"github.com/ramonehamilton/deckbuilder/internal/storage/savedata"
	"github.com/ramonehamilton/deckbuilder/internal/version"
)

var (
	configPath = flag.String("config", "", "Config file path (default: ~/.deckbuilder/config.toml)")
	port       = flag.Int("port", 0, "API server port (overrides config)")
	migrate    = flag.Bool("migrate", false, "Apply database migrations, print the schema version and exit")
)

// prunerInterval is how often idle sessions are swept.
const prunerInterval = time.Minute

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	if *migrate {
		runMigrations(cfg)
		return
	}

	fmt.Println("Deck Builder - REST API Server")
	fmt.Println("==============================")
	fmt.Printf("Version: %s\n", version.GetVersion())
	fmt.Println()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Saved deck storage
	kv, closeStore := openStore(cfg)
	defer closeStore()
	store := deckstore.New(kv)

	// Event dispatch and metrics
	dispatcher := events.NewEventDispatcher()
	serviceMetrics := metrics.New()
	dispatcher.Register(serviceMetrics)
	if cfg.App.DebugMode {
		dispatcher.Register(events.NewLoggingObserver(true))
	}

	// Card catalog
	repo := openCatalog(ctx, cfg, serviceMetrics)
	if cfg.Catalog.Watch {
		go func() {
			err := repo.Watch(ctx, func(cards int, err error) {
				reloaded := events.CatalogReloadedEvent{Cards: cards}
				if err != nil {
					reloaded.Error = err.Error()
				}
				dispatcher.DispatchAsync(events.NewGlobalEvent(ctx, events.TypeCatalogReloaded, reloaded))
			})
			if err != nil {
				log.Printf("[Catalog] Watch stopped: %v", err)
			}
		}()
	}

	// Sessions
	idle, err := cfg.GetSessionIdleTimeout()
	if err != nil {
		log.Fatalf("Invalid session idle timeout: %v", err)
	}
	sessions := session.NewManager(session.Config{
		Rules:      cfg.DeckRules(),
		Filters:    filter.NewEngine(cfg.FilterVariant()),
		Dispatcher: dispatcher,
		MaxIdle:    idle,
	})
	if idle > 0 {
		go sessions.RunPruner(ctx, prunerInterval)
	}

	// Image renderer
	rendererTimeout, err := cfg.GetRendererTimeout()
	if err != nil {
		log.Fatalf("Invalid renderer timeout: %v", err)
	}
	renderer := imagegen.NewClient(imagegen.Config{
		URL:     cfg.Renderer.URL,
		Timeout: rendererTimeout,
	})

	// Create API server
	requestTimeout, err := cfg.GetRequestTimeout()
	if err != nil {
		log.Fatalf("Invalid request timeout: %v", err)
	}
	server := api.NewServer(&api.Config{
		Port:           cfg.Server.Port,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RequestTimeout: requestTimeout,
	}, &api.Services{
		Catalog:    repo,
		Sessions:   sessions,
		Store:      store,
		Renderer:   renderer,
		Dispatcher: dispatcher,
		Metrics:    serviceMetrics,

		RenderWithCatalog: cfg.Renderer.IncludeCatalog,
	})
	dispatcher.Register(server.NewWebSocketObserver())

	// Start API server
	if err := server.Start(); err != nil {
		log.Fatalf("Failed to start API server: %v", err)
	}

	fmt.Println()
	fmt.Printf("API server running at http://localhost:%d\n", cfg.Server.Port)
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	fmt.Println()
	fmt.Println("Shutting down...")
	cancel()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	fmt.Println("API server stopped.")
}

// openStore opens the configured saved-deck backend.
func openStore(cfg *config.Config) (deckstore.KeyValue, func()) {
	if strings.EqualFold(cfg.Storage.Backend, config.BackendSaveData) {
		store, err := savedata.Open(cfg.Storage.AppName)
		if err != nil {
			log.Fatalf("Failed to open save data: %v", err)
		}
		fmt.Printf("Saved decks: user data directory (%s)\n", cfg.Storage.AppName)
		return store, func() {}
	}

	dbPath, err := cfg.StoragePath()
	if err != nil {
		log.Fatalf("Failed to resolve database path: %v", err)
	}
	fmt.Printf("Database: %s\n", dbPath)

	db, err := storage.Open(storage.DefaultConfig(dbPath))
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	return db.KeyValue(), func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}
}

// runMigrations brings the sqlite database up to date.
func runMigrations(cfg *config.Config) {
	dbPath, err := cfg.StoragePath()
	if err != nil {
		log.Fatalf("Failed to resolve database path: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		log.Fatalf("Failed to create database directory: %v", err)
	}
	mgr, err := storage.NewMigrationManager(dbPath)
	if err != nil {
		log.Fatalf("Failed to create migration manager: %v", err)
	}
	defer func() {
		if err := mgr.Close(); err != nil {
			log.Printf("Error closing migration manager: %v", err)
		}
	}()

	if err := mgr.Up(); err != nil {
		log.Printf("Migration failed: %v", err)
		return
	}
	schema, dirty, err := mgr.Version()
	if err != nil {
		log.Printf("Failed to read schema version: %v", err)
		return
	}
	fmt.Printf("Database: %s\nSchema version: %d (dirty: %t)\n", dbPath, schema, dirty)
}

// openCatalog builds the catalog repository and loads it once. A failed
// first load is logged; requests retry it.
func openCatalog(ctx context.Context, cfg *config.Config, m *metrics.ServiceMetrics) *catalog.Repository {
	var source catalog.Source
	if cfg.Catalog.URL != "" {
		source = catalog.NewHTTPSource(catalog.HTTPSourceConfig{URL: cfg.Catalog.URL})
	} else {
		source = catalog.NewFileSource(cfg.Catalog.Path)
	}

	level := slog.LevelInfo
	if cfg.App.DebugMode {
		level = slog.LevelDebug
	}
	repo, err := catalog.NewRepository(catalog.Config{
		Source: source,
		Scheme: cfg.SortScheme(),
		Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})),
	})
	if err != nil {
		log.Fatalf("Failed to create catalog: %v", err)
	}
	fmt.Printf("Catalog: %s\n", source)

	start := time.Now()
	if err := repo.Load(ctx); err != nil {
		log.Printf("[Catalog] Initial load failed: %v", err)
	}
	m.CatalogLoadLatency.Time(start)
	return repo
}
