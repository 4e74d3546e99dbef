package server

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"time"

	"github.com/GriffinCanCode/kitprompt/internal/api/middleware"
	"github.com/GriffinCanCode/kitprompt/internal/catalog"
	"github.com/GriffinCanCode/kitprompt/internal/docs"
	"github.com/GriffinCanCode/kitprompt/internal/http"
	"github.com/GriffinCanCode/kitprompt/internal/infrastructure/config"
	"github.com/GriffinCanCode/kitprompt/internal/infrastructure/logging"
	"github.com/GriffinCanCode/kitprompt/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/kitprompt/internal/ws"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server wraps the HTTP server and its dependencies
type Server struct {
	router  *gin.Engine
	http    *nethttp.Server
	catalog *catalog.Catalog
	docs    *docs.Store
	logger  *logging.Logger
	config  *config.Config
	metrics *monitoring.Metrics
}

// NewServer creates a new server instance. Metrics are registered on reg
// and served from /metrics.
func NewServer(cfg *config.Config, logger *logging.Logger, reg *prometheus.Registry) (*Server, error) {
	if logger == nil {
		logger = logging.FromConfig(cfg.Logging.Level, cfg.Logging.Development)
	}
	logger.Info("Initializing prompt server",
		zap.String("host", cfg.Server.Host),
		zap.String("port", cfg.Server.Port),
		zap.String("prompt_dir", cfg.Prompt.Dir),
	)

	metrics := monitoring.NewMetrics(reg)

	store := loadDocs(cfg.Docs, logger.Logger)

	cat := catalog.New(catalog.Config{
		Dir:           cfg.Prompt.Dir,
		ScriptTimeout: cfg.Prompt.ScriptTimeout,
		KitMode:       cfg.Prompt.KitMode,
	}, store, logger.Logger)
	if err := cat.Scan(); err != nil {
		return nil, fmt.Errorf("failed to load prompts: %w", err)
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.CORSConfig{
		AllowOrigins: cfg.CORS.Origins,
		MaxAge:       middleware.DefaultCORSConfig().MaxAge,
	}))
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

	handlers := http.NewHandlers(cat, store, metrics)
	wsHandler := ws.NewHandler(cat, logger.Logger, metrics, cfg.Prompt.PreviewDebounce)

	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)

	router.GET("/prompts", handlers.ListPrompts)
	router.GET("/prompts/:name", handlers.GetPrompt)
	router.GET("/docs/:dir/*file", handlers.GetDoc)

	router.GET("/prompt/:name", wsHandler.HandleConnection)

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	logger.Info("Server initialized", zap.Int("prompts", len(cat.List())))

	return &Server{
		router:  router,
		catalog: cat,
		docs:    store,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
		http: &nethttp.Server{
			Addr:              cfg.Server.Host + ":" + cfg.Server.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// loadDocs reads docs.json from the configured URL or path. Missing docs
// only disable previews.
func loadDocs(cfg config.DocsConfig, logger *zap.Logger) *docs.Store {
	switch {
	case cfg.URL != "":
		store := docs.New(nil, logger)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := store.Fetch(ctx, cfg.URL); err != nil {
			logger.Warn("Failed to fetch docs", zap.String("url", cfg.URL), zap.Error(err))
		}
		return store
	case cfg.Path != "":
		store, err := docs.Load(cfg.Path, logger)
		if err != nil {
			logger.Warn("Failed to load docs", zap.String("path", cfg.Path), zap.Error(err))
			return docs.New(nil, logger)
		}
		return store
	default:
		return docs.New(nil, logger)
	}
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() nethttp.Handler {
	return s.router
}

// Catalog returns the loaded prompt catalog.
func (s *Server) Catalog() *catalog.Catalog {
	return s.catalog
}

// Run starts the server and blocks until it stops. Shutdown makes it
// return nil.
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for open prompts until
// ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	err := s.http.Shutdown(ctx)
	_ = s.logger.Sync()
	return err
}
