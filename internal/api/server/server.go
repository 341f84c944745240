// Package server wires the gin router into an http.Server with graceful shutdown.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"solana-wallet-tokens/internal/api/middleware"
	"solana-wallet-tokens/internal/api/rest"
	"solana-wallet-tokens/internal/config"
	"solana-wallet-tokens/internal/logger"
)

// Server wraps the HTTP server
type Server struct {
	config     config.ServerConfig
	debug      bool
	handler    rest.Handler
	httpServer *http.Server
}

// New creates a new API server
func New(cfg config.ServerConfig, debug bool, handler rest.Handler) *Server {
	return &Server{
		config:  cfg,
		debug:   debug,
		handler: handler,
	}
}

// Router builds the gin engine with middleware and routes.
func (s *Server) Router() *gin.Engine {
	if s.debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.SetupCORS())
	router.Use(middleware.Timeout(s.config.RequestTimeout))

	rest.SetupRoutes(router, s.handler)
	return router
}

// Start initializes and starts the HTTP server. It blocks until Shutdown.
func (s *Server) Start() error {
	addr := s.config.Address()
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	logger.Info("Starting API server",
		zap.String("address", addr),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("Shutting down API server")

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
	}

	return nil
}
