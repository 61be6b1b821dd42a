// Package httpserver wires the svcerr HTTP endpoints onto one listener.
package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"git.home.luguber.info/inful/svcerr/internal/foundation/errors"
	"git.home.luguber.info/inful/svcerr/internal/server/handlers"
	smw "git.home.luguber.info/inful/svcerr/internal/server/middleware"
	"git.home.luguber.info/inful/svcerr/internal/sink"
)

// Options configures the server.
type Options struct {
	Addr        string
	MetricsPath string
	// Metrics serves the scrape endpoint; nil disables it.
	Metrics http.Handler
	Logger  *slog.Logger
}

// Server exposes metrics, health, the code catalog and record ingestion.
type Server struct {
	opts     Options
	srv      *http.Server
	listener net.Listener

	monitoringHandlers *handlers.MonitoringHandlers
	recordHandlers     *handlers.RecordHandlers

	// middleware chain
	mchain func(http.Handler) http.Handler
}

// New constructs a server delivering ingested records to s.
func New(opts Options, s sink.Sink) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MetricsPath == "" {
		opts.MetricsPath = "/metrics"
	}

	return &Server{
		opts:               opts,
		monitoringHandlers: handlers.NewMonitoringHandlers(time.Now(), opts.Logger),
		recordHandlers:     handlers.NewRecordHandlers(s, opts.Logger),
		mchain:             smw.Chain(opts.Logger, errors.NewHTTPErrorAdapter(opts.Logger)),
	}
}

// Handler returns the routed handler with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.monitoringHandlers.HandleHealthCheck)
	mux.HandleFunc("/v1/records", s.recordHandlers.HandleIngest)
	mux.HandleFunc("/v1/codes", s.recordHandlers.HandleCodes)
	if s.opts.Metrics != nil {
		mux.Handle(s.opts.MetricsPath, s.opts.Metrics)
	}
	return s.mchain(mux)
}

// Start binds the listener and serves in the background. Binding happens
// before Start returns so address conflicts surface immediately.
func (s *Server) Start(ctx context.Context) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.opts.Addr)
	if err != nil {
		return errors.New(errors.KindConfiguration).
			Message(fmt.Sprintf("cannot listen on %s: %v", s.opts.Addr, err)).
			With("addr", s.opts.Addr).
			Build()
	}
	s.listener = ln

	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		if err := s.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.opts.Logger.Error("HTTP server error", "error", err)
		}
	}()

	s.opts.Logger.Info("HTTP server started", "addr", ln.Addr().String(), "metrics_path", s.opts.MetricsPath)
	return nil
}

// Addr reports the bound address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	s.opts.Logger.Info("HTTP server stopped")
	return nil
}
