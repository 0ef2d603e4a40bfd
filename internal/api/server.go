// Package api exposes the calculator over HTTP with gin.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/contactkeval/option-pricer/internal/calculator"
	"github.com/contactkeval/option-pricer/internal/config"
	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/metrics"
)

type Server struct {
	cfg     config.ServerConfig
	router  *gin.Engine
	svc     *calculator.Service
	metrics *metrics.Metrics
}

// NewServer builds the router. m may be nil, in which case /metrics is not served.
func NewServer(cfg config.ServerConfig, svc *calculator.Service, m *metrics.Metrics) *Server {
	s := &Server{
		cfg:     cfg,
		router:  gin.New(),
		svc:     svc,
		metrics: m,
	}
	s.router.Use(gin.Recovery(), s.observe())
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.health)
	s.router.GET("/defaults", s.defaults)

	s.router.GET("/price", s.price)
	s.router.POST("/price", s.price)
	s.router.GET("/implied-vol", s.impliedVol)
	s.router.POST("/implied-vol", s.impliedVol)
	s.router.GET("/sweep", s.sweep)
	s.router.POST("/sweep", s.sweep)

	if s.metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}
}

// Handler returns the router, e.g. for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("starting REST server on %s", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Infof("shutting down REST server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// observe records request counts and latency, and traces each request.
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := c.Writer.Status()
		logger.Tracef("%s %s -> %d in %s", c.Request.Method, c.Request.URL.RequestURI(), status, time.Since(start))

		if s.metrics != nil {
			s.metrics.HTTPRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(status)).Inc()
			s.metrics.HTTPDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
		}
	}
}
