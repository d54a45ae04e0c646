// Package web serves the email form and its JSON API over gin.
package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mixelka/emaildraft/internal/composer"
	"github.com/mixelka/emaildraft/pkg/models"
)

const (
	defaultTimeout        = 5 * time.Second
	defaultMaxUploadBytes = 10 << 20
)

// Generator runs a generate action
type Generator interface {
	Generate(ctx context.Context, req *models.EmailRequest) *composer.Outcome
}

// DraftSaver stores a serialized draft in a mailbox
type DraftSaver interface {
	SaveDraft(ctx context.Context, msg []byte) error
	Mailbox() string
}

// HistoryStore reads the generation log
type HistoryStore interface {
	ListGenerations(ctx context.Context, limit int) ([]*models.GenerationRecord, error)
	GetGeneration(ctx context.Context, id string) (*models.GenerationRecord, error)
	CountGenerationsByState(ctx context.Context) (map[string]int, error)
}

// Config captures all inputs required to construct the HTTP server
type Config struct {
	ListenAddr           string
	AllowedOrigins       []string
	MaxUploadBytes       int64
	Generator            Generator
	Drafts               DraftSaver   // optional
	History              HistoryStore // optional
	Logger               *slog.Logger
	ReadHeaderTimeout    time.Duration
	ShutdownGraceTimeout time.Duration
}

// Server hosts the form and the JSON API
type Server struct {
	config     Config
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer wires gin, middleware and handlers
func NewServer(cfg Config) (*Server, error) {
	if strings.TrimSpace(cfg.ListenAddr) == "" {
		return nil, errors.New("web: listen address is required")
	}
	if cfg.Generator == nil {
		return nil, errors.New("web: generator is required")
	}
	if cfg.Logger == nil {
		return nil, errors.New("web: logger is required")
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}

	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	logger := cfg.Logger.With("component", "web")

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(logger))
	engine.MaxMultipartMemory = cfg.MaxUploadBytes
	engine.SetHTMLTemplate(tmpl)

	h := &handler{
		generator:      cfg.Generator,
		drafts:         cfg.Drafts,
		history:        cfg.History,
		maxUploadBytes: cfg.MaxUploadBytes,
		logger:         logger,
	}

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/", h.index)
	engine.POST("/generate", h.generateForm)
	engine.POST("/drafts/eml", h.draftEML)
	engine.POST("/drafts/imap", h.draftIMAP)

	api := engine.Group("/api")
	api.Use(buildCORS(cfg.AllowedOrigins))
	api.POST("/generate", h.generateAPI)
	api.GET("/history", h.listHistory)
	api.GET("/history/:id", h.getHistory)

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           engine,
		ReadHeaderTimeout: pickDuration(cfg.ReadHeaderTimeout, defaultTimeout),
	}

	return &Server{
		config:     cfg,
		httpServer: httpServer,
		logger:     logger,
	}, nil
}

// Handler exposes the router
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins serving HTTP traffic
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.config.ListenAddr)
	err := s.httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully terminates the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	timeout := pickDuration(s.config.ShutdownGraceTimeout, defaultTimeout)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		logger.Info(
			"http request completed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(started).Milliseconds(),
		)
	}
}

func buildCORS(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowHeaders: []string{"Content-Type", "X-Requested-With"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	}
	if len(allowedOrigins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowedOrigins
	}
	return cors.New(cfg)
}

func pickDuration(candidate time.Duration, fallback time.Duration) time.Duration {
	if candidate <= 0 {
		return fallback
	}
	return candidate
}
