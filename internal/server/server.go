package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"

	"libris/internal/api"
	"libris/internal/config"
	"libris/internal/logging"
)

// StatusFunc reports daemon status for GET /api/status.
type StatusFunc func(ctx context.Context) api.DaemonStatus

// Option customizes a Server.
type Option func(*Server)

// WithStatus overrides the status reported by GET /api/status.
func WithStatus(fn StatusFunc) Option {
	return func(s *Server) {
		s.status = fn
	}
}

// Server serves the library HTTP API.
type Server struct {
	cfg     *config.Config
	bind    string
	token   string
	logger  *slog.Logger
	svc     *api.LibraryService
	status  StatusFunc
	handler http.Handler

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
}

// New builds a server around svc. It does not start listening.
func New(cfg *config.Config, svc *api.LibraryService, logger *slog.Logger, opts ...Option) (*Server, error) {
	if cfg == nil || svc == nil {
		return nil, errors.New("server requires config and library service")
	}
	s := &Server{
		cfg:    cfg,
		bind:   strings.TrimSpace(cfg.Paths.APIBind),
		token:  strings.TrimSpace(cfg.Paths.APIToken),
		logger: logging.NewComponentLogger(logger, "api-server"),
		svc:    svc,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.status == nil {
		s.status = s.defaultStatus
	}

	mux := http.NewServeMux()
	s.routes(mux)
	s.handler = s.withRequestID(s.withAccessLog(mux))
	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/status", s.handleStatus)

	mux.HandleFunc("GET /books", s.handleListBooks)
	mux.HandleFunc("GET /books/list", s.handleBooksPage)
	mux.HandleFunc("GET /books/{id}", s.handleGetBook)
	mux.HandleFunc("POST /books/add", s.requireToken(s.handleAddBook))
	mux.HandleFunc("PUT /books/{id}", s.requireToken(s.handleUpdateBook))
	mux.HandleFunc("PUT /books/{first}/{second}", s.requireToken(s.dispatch(entityBook)))
	mux.HandleFunc("DELETE /books/{id}", s.requireToken(s.handleDeleteBook))
	mux.HandleFunc("DELETE /books/delete/{id}", s.requireToken(s.handleDeleteBook))

	mux.HandleFunc("GET /users", s.handleListUsers)
	mux.HandleFunc("GET /users/list", s.handleUsersPage)
	mux.HandleFunc("GET /users/{id}", s.handleGetUser)
	mux.HandleFunc("POST /users/add", s.requireToken(s.handleAddUser))
	mux.HandleFunc("PUT /users/{id}", s.requireToken(s.handleUpdateUser))
	mux.HandleFunc("PUT /users/{first}/{second}", s.requireToken(s.dispatch(entityUser)))
	mux.HandleFunc("DELETE /users/{id}", s.requireToken(s.handleDeleteUser))
	mux.HandleFunc("DELETE /users/delete/{id}", s.requireToken(s.handleDeleteUser))

	mux.HandleFunc("GET /loans", s.handleListLoans)
	mux.HandleFunc("GET /loans/list", s.handleLoansPage)
	mux.HandleFunc("GET /loans/{id}", s.handleGetLoan)
	mux.HandleFunc("POST /loans/add", s.requireToken(s.handleAddLoan))
	// PUT /loans/{id} historically removed the loan.
	mux.HandleFunc("PUT /loans/{id}", s.requireToken(s.handleDeleteLoan))
	mux.HandleFunc("PUT /loans/{first}/{second}", s.requireToken(s.dispatch(entityLoan)))
	mux.HandleFunc("DELETE /loans/{id}", s.requireToken(s.handleDeleteLoan))
	mux.HandleFunc("DELETE /loans/delete/{id}", s.requireToken(s.handleDeleteLoan))
}

// Start listens on the configured bind address and serves until ctx is done
// or Stop is called.
func (s *Server) Start(ctx context.Context) error {
	if s.bind == "" {
		return errors.New("api bind address is empty")
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: config.Seconds(s.cfg.Server.ReadHeaderTimeout),
		ReadTimeout:       config.Seconds(s.cfg.Server.ReadTimeout),
		WriteTimeout:      config.Seconds(s.cfg.Server.WriteTimeout),
		IdleTimeout:       config.Seconds(s.cfg.Server.IdleTimeout),
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	s.mu.Lock()
	s.listener = listener
	s.server = srv
	s.mu.Unlock()

	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("api server listening",
		logging.String("address", listener.Addr().String()),
		logging.Bool("auth", s.token != ""))
	return nil
}

// Addr returns the bound listener address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down gracefully within the configured timeout.
func (s *Server) Stop() {
	s.mu.Lock()
	srv := s.server
	s.server = nil
	s.listener = nil
	s.mu.Unlock()

	if srv == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Seconds(s.cfg.Server.ShutdownTimeout))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("api server shutdown", logging.Error(err))
		_ = srv.Close()
	}
}

func (s *Server) defaultStatus(ctx context.Context) api.DaemonStatus {
	status := api.DaemonStatus{Running: true, Bind: s.bind}
	if stats, err := s.svc.Stats(ctx); err == nil {
		status.Stats = stats
	} else {
		logging.WithContext(ctx, s.logger).Warn("status stats failed", logging.Error(err))
	}
	health, err := s.svc.Health(ctx)
	if err != nil {
		logging.WithContext(ctx, s.logger).Warn("status health check failed", logging.Error(err))
	}
	status.Health = health
	status.DatabasePath = health.Path
	return status
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, s.status(r.Context()))
}
