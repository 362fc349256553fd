// Package server exposes scene simulation over HTTP.
//
// # Routes
//
//	GET  /healthz                       liveness and build info
//	POST /v1/simulate                   TOML scene body, JSON trace response
//	GET  /v1/traces/{id}                a trace from a previous simulate call
//	GET  /v1/traces/{id}/graph          mode graph (?format=dot|svg|png)
//	GET  /v1/traces/{id}/frames/{n}     frame n drawn as text
//
// Errors are JSON objects carrying the code from package errors:
//
//	{"error": {"code": "INVALID_SCENE", "message": "scene has no columns", "request_id": "..."}}
//
// Every response carries an X-Request-ID header. A request ID sent by the
// client is kept, otherwise a new UUID is issued.
package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/stickycols/pkg/errors"
	"github.com/matzehuels/stickycols/pkg/trace"
)

// Defaults for Config.
const (
	DefaultAddr         = "127.0.0.1:8080"
	DefaultMaxBodyBytes = 1 << 20
	DefaultTimeout      = 30 * time.Second
)

// Config holds server settings.
type Config struct {
	Addr         string
	MaxBodyBytes int64
	Timeout      time.Duration
}

func (c Config) withDefaults() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// Server serves the simulation API.
type Server struct {
	runner *trace.Runner
	cfg    Config
	logger *log.Logger
	router chi.Router
}

// New creates a server that runs scenes with runner.
func New(runner *trace.Runner, cfg Config, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	s := &Server{
		runner: runner,
		cfg:    cfg.withDefaults(),
		logger: logger,
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Config returns the effective configuration.
func (s *Server) Config() Config { return s.cfg }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(s.recoverer)
	r.Use(s.accessLog)

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Use(s.timeout)
		r.Post("/simulate", s.handleSimulate)
		r.Route("/traces/{id}", func(r chi.Router) {
			r.Get("/", s.handleTrace)
			r.Get("/graph", s.handleGraph)
			r.Get("/frames/{n}", s.handleFrame)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, errNotFound(r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		err := errors.New(errors.ErrCodeInvalidInput, "%s not allowed on %s", r.Method, r.URL.Path)
		s.writeErrorStatus(w, r, http.StatusMethodNotAllowed, err)
	})
	return r
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	s.logger.Info("listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != http.ErrServerClosed {
		return err
	}
	return nil
}
