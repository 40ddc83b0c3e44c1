package factory

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/duelarena/server/internal/catalog"
	"github.com/duelarena/server/internal/coordinator"
	"github.com/duelarena/server/internal/dependencies/clock"
	"github.com/duelarena/server/internal/dependencies/random"
	"github.com/duelarena/server/internal/locking"
	"github.com/duelarena/server/internal/services/match"
	"github.com/duelarena/server/internal/services/player"
	"github.com/duelarena/server/internal/services/reaper"
	"github.com/duelarena/server/internal/services/room"
	"github.com/duelarena/server/internal/storage"
	"github.com/duelarena/server/internal/storage/memory"
	"github.com/duelarena/server/internal/ws"
)

// Catalog source constants
const (
	CatalogSourceStatic = "static"
	CatalogSourceFile   = "file"
	CatalogSourceRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random
	Locks  *locking.KeyedMutex

	// Services
	Catalog        *catalog.Service
	PlayerRegistry *player.Registry
	RoomRegistry   *room.Registry
	Engine         *match.Engine
	Sweeper        *reaper.Sweeper
	Coordinator    *coordinator.Coordinator
	Hub            *ws.Hub

	catalogClose func() error
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// Coordinator holds the coordinator's timing knobs (optional)
	// If zero value, defaults to coordinator.DefaultConfig()
	Coordinator coordinator.Config
	// CatalogSource selects where character content is loaded from
	// ("static", "file" or "redis"). If empty, defaults to "static".
	CatalogSource string
	// CatalogPath is the path to the character file (required if
	// CatalogSource is "file")
	CatalogPath string
	// RedisURL is the content store connection string (required if
	// CatalogSource is "redis")
	RedisURL string
}

// New creates a new application with all dependencies wired. The character
// catalog is loaded from the configured source before returning.
func New(ctx context.Context, cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	coordCfg := cfg.Coordinator
	if coordCfg.StartCountdown == 0 {
		coordCfg = coordinator.DefaultConfig()
	}

	var (
		source       catalog.Source
		catalogClose func() error
	)
	catalogSource := cfg.CatalogSource
	if catalogSource == "" {
		catalogSource = CatalogSourceStatic
	}

	switch catalogSource {
	case CatalogSourceStatic:
		source = catalog.NewStaticSource()
	case CatalogSourceFile:
		if cfg.CatalogPath == "" {
			return nil, errors.New("CatalogPath required when CatalogSource is file")
		}
		source = catalog.NewFileSource(cfg.CatalogPath)
	case CatalogSourceRedis:
		if cfg.RedisURL == "" {
			return nil, errors.New("RedisURL required when CatalogSource is redis")
		}
		redisSource, err := catalog.NewRedisSource(catalog.RedisConfig{URL: cfg.RedisURL})
		if err != nil {
			return nil, err
		}
		source = redisSource
		catalogClose = redisSource.Close
	default:
		return nil, errors.New("invalid CatalogSource: must be 'static', 'file' or 'redis'")
	}

	store := memory.New()
	clk := clock.New()
	rnd := random.New()

	app := newWithDependencies(store, clk, rnd, coordCfg, logger)
	app.catalogClose = catalogClose

	if err := app.Catalog.Load(ctx, source); err != nil {
		_ = app.Close()
		return nil, err
	}

	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, coordCfg coordinator.Config, logger *slog.Logger) *App {
	locks := locking.NewKeyedMutex()

	catalogService := catalog.New(logger)
	roomRegistry := room.NewRegistry(store, clk, rnd, logger)
	playerRegistry := player.NewRegistry(store, roomRegistry, clk, rnd, logger)
	engine := match.NewEngine(store, clk, logger)
	sweeper := reaper.NewSweeper(store, locks, clk, logger)
	hub := ws.NewHub(logger)

	coord := coordinator.New(
		playerRegistry,
		roomRegistry,
		engine,
		catalogService,
		sweeper,
		clk,
		locks,
		hub,
		logger,
		coordCfg,
	)

	return &App{
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		Locks:          locks,
		Catalog:        catalogService,
		PlayerRegistry: playerRegistry,
		RoomRegistry:   roomRegistry,
		Engine:         engine,
		Sweeper:        sweeper,
		Coordinator:    coord,
		Hub:            hub,
	}
}

// Close releases resources held by the app (the content store connection,
// pending start timers)
func (a *App) Close() error {
	a.Coordinator.Shutdown()
	if a.catalogClose != nil {
		return a.catalogClose()
	}
	return nil
}
