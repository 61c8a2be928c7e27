// Package api exposes the advisor over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/omerorhan/fx-advisor/internal/engine"
	"github.com/omerorhan/fx-advisor/internal/metrics"
	"github.com/omerorhan/fx-advisor/internal/service"
)

// Advisor is the subset of the advisor service the API needs.
type Advisor interface {
	Recommend(ctx context.Context, req service.RecommendReq) (*service.Recommendation, error)
	AvailableChannels(amount float64, method engine.Method, location string) ([]engine.Channel, error)
	RateQuote(ctx context.Context, from, to string) (*service.RateQuote, error)
	SupportedCurrencies() []string
	IsInitialized() bool
	IsLeader() bool
	Metrics() *metrics.AdvisorMetrics
}

type Options struct {
	CORSOrigins    []string
	RequestsPerSec float64
	Burst          int
	RequestTimeout time.Duration
	Version        string
}

func DefaultOptions() Options {
	return Options{
		CORSOrigins:    []string{"*"},
		RequestsPerSec: 20,
		Burst:          40,
		RequestTimeout: 30 * time.Second,
		Version:        "dev",
	}
}

// Server is the HTTP API server.
type Server struct {
	router  chi.Router
	advisor Advisor
	opts    Options
	logger  *zap.Logger
}

func NewServer(advisor Advisor, opts Options, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		advisor: advisor,
		opts:    opts,
		logger:  logger,
	}
	s.router = s.buildRouter()
	return s
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)
	if s.opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.opts.RequestTimeout))
	}

	origins := []string{"*"}
	if len(s.opts.CORSOrigins) > 0 {
		origins = s.opts.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.advisor.Metrics().Registry, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.rateLimit(s.opts.RequestsPerSec, s.opts.Burst))

		r.Post("/strategies", s.handleStrategies)
		r.Post("/channels", s.handleChannels)
		r.Get("/rates/{from}/{to}", s.handleRate)
		r.Get("/currencies", s.handleCurrencies)
	})

	return r
}
