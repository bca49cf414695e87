// Package http exposes the dashboard page, the JSON API, and the health,
// readiness, and metrics endpoints.
package http

import (
	"context"
	_ "embed"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/areacheck/property-insight-service/internal/httpkit"
	"github.com/areacheck/property-insight-service/internal/validation"
)

//go:embed web/index.html
var indexHTML []byte

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server exposes the dashboard, API, health, readiness, and metrics routes.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates the HTTP server and mounts all routes.
func NewServer(addr string, svc InsightService, ready ReadinessChecker, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	handler := NewHandler(svc, validation.New(), logger)

	router.GET("/", serveDashboard)
	api := router.Group("/api/v1")
	api.GET("/streets", handler.Streets)
	api.GET("/insights", handler.Insights)

	router.GET("/healthz", handleHealth)
	router.GET("/readyz", handleReady(ready))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func serveDashboard(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}

func handleHealth(c *gin.Context) {
	httpkit.OK(c, gin.H{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		httpkit.OK(c, gin.H{"status": "ready"})
	}
}
