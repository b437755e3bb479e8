// Package server exposes the audit pipeline over HTTP with gin.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/RajatSharma-ops/Biased-AI/pkg/audit"
	"github.com/RajatSharma-ops/Biased-AI/pkg/model"
)

// Options holds the directories and limits used by the handlers.
type Options struct {
	UploadDir      string
	ChartDir       string
	ReportDir      string
	MaxUploadBytes int64
}

// Server owns the gin engine and the auditor behind it.
type Server struct {
	engine  *gin.Engine
	auditor *audit.Auditor
	opts    Options
	logger  *slog.Logger
}

// New builds the router. A nil logger means slog.Default().
func New(auditor *audit.Auditor, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 32 << 20
	}
	if opts.UploadDir == "" {
		opts.UploadDir = "uploads"
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(logger))
	engine.MaxMultipartMemory = opts.MaxUploadBytes

	s := &Server{engine: engine, auditor: auditor, opts: opts, logger: logger}

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/models", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"models": model.ModelNames()})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	engine.POST("/results", s.handleResults)
	engine.GET("/charts/:name", s.serveArtifact(opts.ChartDir))
	engine.GET("/reports/:name", s.serveArtifact(opts.ReportDir))

	return s
}

// Engine returns the http.Handler to mount.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client", c.ClientIP())
	}
}
