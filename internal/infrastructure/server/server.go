package server

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	api "github.com/wwwqqqzzz/digital-workspace-os/internal/api/http"
	"github.com/wwwqqqzzz/digital-workspace-os/internal/api/middleware"
	"github.com/wwwqqqzzz/digital-workspace-os/internal/api/ws"
	"github.com/wwwqqqzzz/digital-workspace-os/internal/domain/tab"
	"github.com/wwwqqqzzz/digital-workspace-os/internal/domain/view"
	"github.com/wwwqqqzzz/digital-workspace-os/internal/domain/workspace"
	"github.com/wwwqqqzzz/digital-workspace-os/internal/events"
	"github.com/wwwqqqzzz/digital-workspace-os/internal/infrastructure/config"
	"github.com/wwwqqqzzz/digital-workspace-os/internal/infrastructure/logging"
	"github.com/wwwqqqzzz/digital-workspace-os/internal/infrastructure/monitoring"
	"github.com/wwwqqqzzz/digital-workspace-os/internal/infrastructure/tracing"
	"github.com/wwwqqqzzz/digital-workspace-os/internal/shared/types"
	"github.com/wwwqqqzzz/digital-workspace-os/internal/store"
)

// Server wraps the HTTP server and the session core it fronts.
type Server struct {
	router   *gin.Engine
	store    *store.Store
	registry *workspace.Registry
	cache    *tab.Cache
	pool     *view.Pool
	bus      *events.Bus
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	// Initialize logger
	var logger *logging.Logger
	if cfg.Logging.Development {
		logger = logging.NewDevelopment()
	} else {
		logger = logging.NewDefault()
	}

	logger.Info("Initializing workspace server",
		zap.String("port", cfg.Server.Port),
		zap.String("db_path", cfg.Storage.Path),
	)

	// Initialize metrics first (needed by other components)
	metrics := monitoring.NewMetrics()

	// Initialize request tracing
	tracer := tracing.New("workspace-os", logger.Logger)

	// Open the persistent store
	st, err := store.Open(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	logger.Info("Store opened", zap.String("path", cfg.Storage.Path))

	// Wire the session core
	bus := events.NewBus()
	registry := workspace.NewRegistry(st, bus)
	cache := tab.NewCache(st, bus)
	pool := view.NewPool(view.NewPrefetchFactory(), bus)

	observeEvents(bus, metrics, registry, cache, pool)

	// Seed defaults on a fresh store, otherwise restore the previous session
	if err := bootstrap(registry, cache, pool, logger); err != nil {
		st.Close()
		return nil, fmt.Errorf("bootstrap session: %w", err)
	}

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	// Create handlers
	handlers := api.NewHandlers(registry, cache, pool)
	envelopeRouter := ws.NewRouter(registry, cache, pool, st, ws.NopLayout{}, logger)
	wsHandler := ws.NewHandler(envelopeRouter, bus, logger, metrics)

	// Register routes
	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)

	// Inspection endpoints
	router.GET("/workspaces", handlers.ListWorkspaces)
	router.GET("/workspaces/:id", handlers.GetWorkspace)
	router.GET("/workspaces/:id/tabs", handlers.ListWorkspaceTabs)

	// Envelope boundary
	router.GET("/ipc", wsHandler.HandleConnection)

	// Metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	logger.Info("Server initialized successfully")

	return &Server{
		router:   router,
		store:    st,
		registry: registry,
		cache:    cache,
		pool:     pool,
		bus:      bus,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
	}, nil
}

// Run starts the HTTP server
func (s *Server) Run() error {
	addr := s.config.Server.Host + ":" + s.config.Server.Port
	s.logger.Info("Starting HTTP server", zap.String("addr", addr))
	return s.router.Run(addr)
}

// Close gracefully shuts down the server
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	if err := s.store.Close(); err != nil {
		s.logger.Error("Failed to close store", zap.Error(err))
		return fmt.Errorf("failed to close store: %w", err)
	}
	s.logger.Info("Store closed")

	// Sync logger before exit
	s.logger.Sync()

	return nil
}

// Router exposes the gin engine, for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// observeEvents feeds lifecycle events into the metrics collector and keeps
// the session-state gauges current.
func observeEvents(
	bus *events.Bus,
	metrics *monitoring.Metrics,
	registry *workspace.Registry,
	cache *tab.Cache,
	pool *view.Pool,
) {
	refresh := func() {
		metrics.SetWorkspacesTotal(registry.Stats().TotalWorkspaces)
		metrics.SetTabsCached(cache.Stats().CachedTabs)
		metrics.SetLiveViews(pool.Stats().LiveViews)
	}
	bus.SubscribeWorkspace(func(evt types.WorkspaceEvent) {
		metrics.RecordEvent("workspace", evt.Type)
		refresh()
	})
	bus.SubscribeTab(func(evt types.TabEvent) {
		metrics.RecordEvent("tab", evt.Type)
		refresh()
	})
}
