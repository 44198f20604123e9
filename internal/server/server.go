// Package server exposes health, source inspection and the Telegram webhook over HTTP.
package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/apodervinskas/Veteran-TestBot/pkg/feedtypes"
	"github.com/apodervinskas/Veteran-TestBot/pkg/providers"
)

// WebhookPath is where Telegram pushes updates in webhook mode
const WebhookPath = "/telegram/webhook"

// DefaultFetchTimeout bounds a live fetch made through the API
const DefaultFetchTimeout = 60 * time.Second

// SourceList is the set of sources the API exposes
type SourceList interface {
	Get(name string) (providers.Source, bool)
	All() []providers.Source
}

// Server holds the HTTP route handlers
type Server struct {
	sources      SourceList
	webhook      http.Handler
	apiToken     string
	fetchTimeout time.Duration
}

// NewServer creates the route handlers. webhook is nil in long polling mode.
func NewServer(sources SourceList, webhook http.Handler) *Server {
	return &Server{
		sources:      sources,
		webhook:      webhook,
		fetchTimeout: DefaultFetchTimeout,
	}
}

// WithAPIToken requires "Authorization: Bearer <token>" on the /api/v1 routes
func (s *Server) WithAPIToken(token string) *Server {
	s.apiToken = token
	return s
}

// NewEngine creates a gin engine with the server routes registered
func (s *Server) NewEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	s.RegisterRoutes(r)
	return r
}

// RegisterRoutes adds the server routes to r
func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", s.health)

	v1 := r.Group("/api/v1")
	if s.apiToken != "" {
		v1.Use(bearerAuth(s.apiToken))
	}
	{
		v1.GET("/sources", s.listSources)
		v1.GET("/sources/:name", s.fetchSource)
	}

	if s.webhook != nil {
		r.POST(WebhookPath, gin.WrapH(s.webhook))
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listSources(c *gin.Context) {
	all := s.sources.All()
	data := make([]providers.SourceMetadata, 0, len(all))
	for _, src := range all {
		data = append(data, src.Metadata())
	}

	c.JSON(http.StatusOK, gin.H{
		"code": "ok",
		"data": data,
	})
}

// sourceResponse is the body of a live fetch
type sourceResponse struct {
	Source providers.SourceMetadata `json:"source"`
	Result feedtypes.FetchResult    `json:"result"`
}

func (s *Server) fetchSource(c *gin.Context) {
	name := c.Param("name")
	src, ok := s.sources.Get(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    "not_found",
			"message": fmt.Sprintf("unknown source %q", name),
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.fetchTimeout)
	defer cancel()

	result := src.Fetch(ctx)
	c.JSON(http.StatusOK, gin.H{
		"code": "ok",
		"data": sourceResponse{Source: src.Metadata(), Result: result},
	})
}

// bearerAuth rejects requests without the expected bearer token
func bearerAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    "unauthorized",
				"message": "missing or invalid bearer token",
			})
			return
		}
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

// HTTPServer runs a handler on a TCP address
type HTTPServer struct {
	srv *http.Server
}

// NewHTTPServer creates a server listening on addr
func NewHTTPServer(addr string, handler http.Handler) *HTTPServer {
	return &HTTPServer{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Start binds the listener and serves in the background
func (h *HTTPServer) Start(ctx context.Context) error {
	lis, err := net.Listen("tcp", h.srv.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", h.srv.Addr, err)
	}

	go func() {
		slog.Info("HTTP server listening", "addr", lis.Addr().String())
		if err := h.srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
	return nil
}

// Stop gracefully shuts the server down
func (h *HTTPServer) Stop(ctx context.Context) error {
	slog.Info("Shutting down HTTP server")
	return h.srv.Shutdown(ctx)
}
