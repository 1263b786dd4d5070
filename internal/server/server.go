// Package server exposes the operational HTTP endpoints of long-running
// commands: health and Prometheus metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Debarshi-Chaudhuri/news-api/internal/logger"
)

const (
	defaultReadTimeout     = 5 * time.Second
	defaultWriteTimeout    = 10 * time.Second
	defaultShutdownTimeout = 5 * time.Second
)

// HealthStatus represents the status of a health check.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthChecker reports the state of one dependency.
type HealthChecker func(ctx context.Context) error

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  HealthStatus           `json:"status"`
	Service string                 `json:"service"`
	Uptime  string                 `json:"uptime"`
	Checks  map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult is the outcome of one health check.
type CheckResult struct {
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
	Latency string       `json:"latency"`
}

// Config configures the server.
type Config struct {
	Address     string
	ServiceName string
	Metrics     http.Handler
	Checks      map[string]HealthChecker
}

// Server is the operational HTTP server.
type Server struct {
	router  *gin.Engine
	server  *http.Server
	log     logger.Logger
	started time.Time
}

// New builds the router and server. Nothing listens until Run.
func New(cfg Config, log logger.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	log = logger.Component(log, "server")

	s := &Server{
		router:  gin.New(),
		log:     log,
		started: time.Now(),
	}
	s.router.Use(recoveryMiddleware(log), loggerMiddleware(log))

	s.router.GET("/health", s.healthHandler(cfg.ServiceName, cfg.Checks))
	s.router.HEAD("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	if cfg.Metrics != nil {
		s.router.GET("/metrics", gin.WrapH(cfg.Metrics))
	}

	s.server = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.router,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
	}
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is done and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Starting HTTP server", logger.String("address", s.server.Addr))
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultShutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	s.log.Info("HTTP server stopped gracefully")
	return nil
}

func (s *Server) healthHandler(service string, checks map[string]HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := HealthResponse{
			Status:  HealthStatusHealthy,
			Service: service,
			Uptime:  time.Since(s.started).Round(time.Second).String(),
		}
		if len(checks) > 0 {
			resp.Checks = make(map[string]CheckResult, len(checks))
		}
		for name, check := range checks {
			start := time.Now()
			result := CheckResult{Status: HealthStatusHealthy}
			if err := check(c.Request.Context()); err != nil {
				result.Status = HealthStatusUnhealthy
				result.Message = err.Error()
				resp.Status = HealthStatusUnhealthy
			}
			result.Latency = time.Since(start).String()
			resp.Checks[name] = result
		}

		status := http.StatusOK
		if resp.Status == HealthStatusUnhealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, resp)
	}
}

func loggerMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("HTTP request",
			logger.String("method", c.Request.Method),
			logger.String("path", c.Request.URL.Path),
			logger.Int("status", c.Writer.Status()),
			logger.Duration("duration", time.Since(start)),
			logger.String("client_ip", c.ClientIP()),
		)
	}
}

func recoveryMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("Panic recovered",
					logger.Any("panic", r),
					logger.String("path", c.Request.URL.Path),
				)
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()
		c.Next()
	}
}
