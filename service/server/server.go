package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/brojonat/recibo/service/config"
	"github.com/brojonat/recibo/service/metrics"
)

// Server is the HTTP surface of the payment-confirmation service.
type Server struct {
	addr     string
	cfg      *config.Config
	fetcher  TransactionFetcher
	renderer *TemplateRenderer
	metrics  *metrics.Metrics
	logger   *slog.Logger
	server   *http.Server
}

// New creates a new HTTP server with the given dependencies.
// The metrics is optional - if nil, no metrics are recorded and the
// /metrics endpoint is not registered.
func New(addr string, cfg *config.Config, fetcher TransactionFetcher, m *metrics.Metrics, logger *slog.Logger) *Server {
	return &Server{
		addr:    addr,
		cfg:     cfg,
		fetcher: fetcher,
		metrics: m,
		logger:  logger,
	}
}

// WithTemplates adds HTML page rendering support using embedded files.
func (s *Server) WithTemplates() error {
	renderer, err := NewTemplateRenderer(s.logger)
	if err != nil {
		return err
	}
	s.renderer = renderer
	s.logger.Info("HTML templates loaded from embedded files")
	return nil
}

// Start starts the HTTP server and blocks until it exits.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second, // analyze requests wait on the RPC node
	}

	s.logger.Info("http server listening", "addr", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	withMetrics := func(name string, h http.Handler) http.Handler {
		return metrics.HTTPMetricsMiddleware(s.metrics, name)(h)
	}

	mux.Handle("POST /api/v1/analyze",
		withMetrics("/api/v1/analyze", handleAnalyze(s.fetcher, s.cfg, s.metrics, s.logger)))
	mux.Handle("GET /api/v1/health", handleHealth())

	if s.renderer != nil {
		mux.Handle("GET /{$}", handleIndexPage(s.renderer))
		mux.Handle("POST /receipt",
			withMetrics("/receipt", handleReceiptPage(s.fetcher, s.cfg, s.metrics, s.logger)))
	}

	if s.metrics != nil {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	return mux
}
