// Package http serves the status API of a running lswatch session.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/fyrsmithlabs/lswatch/pkg/lswatch"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// StatusSource exposes registry state. *lswatch.Registry implements it.
type StatusSource interface {
	Stats() lswatch.Stats
	Snapshot() lswatch.Snapshot
}

// HealthCheck reports whether a dependency is usable. A nil error means
// healthy.
type HealthCheck func(ctx context.Context) error

// Server provides HTTP endpoints for an lswatch session.
type Server struct {
	echo      *echo.Echo
	source    StatusSource
	logger    *zap.Logger
	config    *Config
	version   string
	clientID  string
	startedAt time.Time
	checks    map[string]HealthCheck
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int
}

type options struct {
	version       string
	clientID      string
	checks        map[string]HealthCheck
	meterProvider metric.MeterProvider
}

// Option configures a Server.
type Option func(*options)

// WithVersion sets the version reported by /api/v1/status.
func WithVersion(version string) Option {
	return func(o *options) {
		o.version = version
	}
}

// WithClientID sets the session client ID reported by /api/v1/status.
func WithClientID(id string) Option {
	return func(o *options) {
		o.clientID = id
	}
}

// WithHealthCheck adds a named dependency check to /health.
func WithHealthCheck(name string, check HealthCheck) Option {
	return func(o *options) {
		o.checks[name] = check
	}
}

// WithMeterProvider sets the provider for HTTP request metrics. Defaults to
// the global provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		o.meterProvider = mp
	}
}

// NewServer creates a new HTTP server.
func NewServer(source StatusSource, logger *zap.Logger, cfg *Config, opts ...Option) (*Server, error) {
	if source == nil {
		return nil, fmt.Errorf("status source cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host: "127.0.0.1",
			Port: 9191,
		}
	}

	o := options{checks: make(map[string]HealthCheck)}
	for _, opt := range opts {
		opt(&o)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(NewHTTPMetrics(o.meterProvider, logger).MetricsMiddleware())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			logger.Debug("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
			return err
		}
	})

	s := &Server{
		echo:      e,
		source:    source,
		logger:    logger,
		config:    cfg,
		version:   o.version,
		clientID:  o.clientID,
		startedAt: time.Now(),
		checks:    o.checks,
	}
	s.registerRoutes()

	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.echo.Group("/api/v1")
	v1.GET("/status", s.handleStatus)
	v1.GET("/watches", s.handleWatches)
}

// runChecks runs every health check and returns their results by name.
func (s *Server) runChecks(ctx context.Context) (map[string]string, bool) {
	results := make(map[string]string, len(s.checks))
	healthy := true
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			results[name] = err.Error()
			healthy = false
			continue
		}
		results[name] = "ok"
	}
	return results, healthy
}

func (s *Server) handleHealth(c echo.Context) error {
	checks, healthy := s.runChecks(c.Request().Context())
	if !healthy {
		return c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "degraded", Checks: checks})
	}
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok", Checks: checks})
}

func (s *Server) handleStatus(c echo.Context) error {
	checks, healthy := s.runChecks(c.Request().Context())
	status := "ok"
	if !healthy {
		status = "degraded"
	}

	return c.JSON(http.StatusOK, StatusResponse{
		Status:        status,
		Version:       s.version,
		ClientID:      s.clientID,
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
		Checks:        checks,
		Registry:      s.source.Stats(),
	})
}

// handleWatches returns the registry snapshot. The optional prefix query
// parameter keeps only watches whose path starts with it.
func (s *Server) handleWatches(c echo.Context) error {
	snapshot := s.source.Snapshot()

	if prefix := c.QueryParam("prefix"); prefix != "" {
		filtered := snapshot.Watches[:0:0]
		for _, w := range snapshot.Watches {
			if strings.HasPrefix(w.Path, prefix) {
				filtered = append(filtered, w)
			}
		}
		snapshot.Watches = filtered
	}

	return c.JSON(http.StatusOK, snapshot)
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

// Start serves until Shutdown. It returns nil after a clean shutdown.
func (s *Server) Start() error {
	s.logger.Info("starting http server", zap.String("addr", s.Addr()))
	if err := s.echo.Start(s.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
