package web

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Snekussaurier/Yellpepper/internal/pipeline"
	"github.com/Snekussaurier/Yellpepper/internal/profile"
	"github.com/Snekussaurier/Yellpepper/internal/voice"
)

// Server exposes a small read-only status surface next to the bot.
type Server struct {
	router *gin.Engine
	logger *zap.Logger
}

// NewServer builds the status router.
func NewServer(reg *profile.Registry, p *pipeline.Pipeline, vm *voice.Manager, production bool, log *zap.Logger) *Server {
	if production {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(ginLogger(log))
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":          "ok",
			"voice_connected": vm.Connected(),
			"busy":            p.Busy(),
		})
	})

	v1 := router.Group("/v1")
	{
		v1.GET("/profiles", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"profiles": reg.Names()})
		})
	}

	return &Server{router: router, logger: log}
}

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Handler exposes the router, used by tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ginLogger is a custom logger middleware for Gin
func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		log.Debug("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
