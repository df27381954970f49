// Package server exposes the advisor over HTTP.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/velmala/funding-advisor/internal/advisor"
)

type Server struct {
	advisor        *advisor.Advisor
	logger         *zap.Logger
	allowedOrigins map[string]bool
	engine         *gin.Engine
}

// New builds the HTTP server around an advisor. allowedOrigins is the CORS
// allowlist for browser frontends; an empty list disables CORS headers.
func New(adv *advisor.Advisor, logger *zap.Logger, allowedOrigins []string) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	origins := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		origins[origin] = true
	}

	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		advisor:        adv,
		logger:         logger,
		allowedOrigins: origins,
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), s.cors())

	engine.GET("/", s.root)
	engine.GET("/health", s.health)
	engine.POST("/recommendations", s.recommendations)
	engine.POST("/recommendations/by-business-id", s.recommendationsByBusinessID)

	s.engine = engine
	return s
}

// Engine exposes the router, mainly for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) Run(addr string) error {
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.engine.Run(addr)
}

func (s *Server) cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && s.allowedOrigins[origin] {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (s *Server) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Funding Advisor API"})
}

func (s *Server) health(c *gin.Context) {
	catalog := s.advisor.Catalog()
	c.JSON(http.StatusOK, gin.H{
		"status":            "ok",
		"instrument_source": catalog.Source,
		"instrument_count":  catalog.Len(),
	})
}
