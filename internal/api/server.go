// Package api exposes the decision engine over HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/ksingh-08/devops-intelligence-platform/internal/config"
)

// Server wraps the echo HTTP server and lifecycle helpers.
type Server struct {
	cfg     config.ServerConfig
	echo    *echo.Echo
	logger  *slog.Logger
	service DecisionAPI
}

// NewServer constructs an HTTP server bound to the configured address.
func NewServer(cfg config.ServerConfig, service DecisionAPI, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			logger.Info("http request",
				slog.String("method", c.Request().Method),
				slog.String("uri", c.Request().RequestURI),
				slog.Int("status", c.Response().Status),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)))
			return err
		}
	})

	s := &Server{
		cfg:     cfg,
		echo:    e,
		logger:  logger,
		service: service,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)

	v1 := s.echo.Group("/api/v1")
	v1.POST("/analysis", s.handleAnalysis)
	v1.GET("/decisions", s.handleDecisions)
	v1.GET("/insights", s.handleInsights)
	v1.GET("/report", s.handleReport)
	v1.POST("/impact", s.handleImpact)
}

// Start serves HTTP requests until Shutdown is invoked.
func (s *Server) Start() error {
	err := s.echo.Start(s.cfg.Address)
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// GracefulTimeout returns the configured graceful timeout duration.
func (s *Server) GracefulTimeout() time.Duration {
	return s.cfg.GracefulTimeout
}
