package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"strategylab/internal/backtest"
	"strategylab/internal/live"
	"strategylab/internal/logging"
)

// Server is the HTTP surface over the engine and the live runner
type Server struct {
	engine *gin.Engine
	server *http.Server
	logger *logging.Logger
}

// NewServer creates the server. ginMode is one of gin's debug, release or
// test modes; defaults are the parameters a request starts from.
func NewServer(port int, ginMode string, runner *live.Runner, defaults backtest.Params) *Server {
	if ginMode != "" {
		gin.SetMode(ginMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	logger := logging.NewComponentLogger("api")
	engine.Use(loggerMiddleware(logger))

	s := &Server{
		engine: engine,
		logger: logger,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	s.setupRoutes(NewHandler(runner, defaults))
	return s
}

func (s *Server) setupRoutes(handler *Handler) {
	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.engine.Group("/api")
	{
		api.GET("/strategies", handler.ListStrategies)
		api.POST("/backtest", handler.RunBacktest)

		api.GET("/live", handler.ListLive)
		api.POST("/live", handler.StartLive)
		api.GET("/live/:id", handler.GetLive)
		api.DELETE("/live/:id", handler.DeleteLive)
		api.POST("/live/:id/step", handler.StepLive)
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.logger.Infof("API listening on %s", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func loggerMiddleware(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger.Debugf("%s %s %d %v", c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
