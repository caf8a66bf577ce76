// Package server exposes the advisor over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/malu-oliver/agent-financeiro/internal/advisor"
	"github.com/malu-oliver/agent-financeiro/internal/metrics"
)

// Options configures the HTTP server. Zero timeouts disable the limit.
type Options struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server routes API requests to an advisor.Service.
type Server struct {
	svc     *advisor.Service
	metrics *metrics.Metrics
	logger  *slog.Logger
	router  *mux.Router
}

func New(svc *advisor.Service, m *metrics.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{svc: svc, metrics: m, logger: logger, router: mux.NewRouter()}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router
	r.Use(s.requestID, s.observe, s.recoverPanics)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}

	// API routes sit on the root router so its NotFound and
	// MethodNotAllowed handlers apply to them.
	api := apiRoutes{r}
	api.HandleFunc("/content", s.handleContent).Methods(http.MethodPost)
	api.HandleFunc("/simulations", s.handleSimulate).Methods(http.MethodPost)
	api.HandleFunc("/benchmark", s.handleBenchmark).Methods(http.MethodGet)

	api.HandleFunc("/users", s.handleListUsers).Methods(http.MethodGet)
	api.HandleFunc("/users", s.handleCreateUser).Methods(http.MethodPost)
	api.HandleFunc("/users/{id:[0-9]+}", s.handleGetUser).Methods(http.MethodGet)
	api.HandleFunc("/users/{id:[0-9]+}", s.handleUpdateUser).Methods(http.MethodPut)
	api.HandleFunc("/users/{id:[0-9]+}", s.handleDeleteUser).Methods(http.MethodDelete)
	api.HandleFunc("/users/{hash}/history", s.handleHistory).Methods(http.MethodGet)

	api.HandleFunc("/agent/status", s.handleStatus).Methods(http.MethodGet)
	api.HandleFunc("/agent/stats", s.handleStats).Methods(http.MethodGet)
	api.HandleFunc("/agent/{id:[0-9]+}/evolution", s.handleEvolution).Methods(http.MethodGet)
	api.HandleFunc("/agent/{id:[0-9]+}/suggestions", s.handleSuggestions).Methods(http.MethodGet)
	api.HandleFunc("/agent/{id:[0-9]+}/feedback", s.handleFeedback).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
}

type apiRoutes struct{ r *mux.Router }

func (a apiRoutes) HandleFunc(path string, f http.HandlerFunc) *mux.Route {
	return a.r.HandleFunc("/api"+path, f)
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, opts Options) error {
	srv := &http.Server{
		Addr:         opts.Addr,
		Handler:      s.router,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", opts.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	wait := opts.ShutdownTimeout
	if wait <= 0 {
		wait = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()
	s.logger.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
