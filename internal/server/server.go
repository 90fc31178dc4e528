// Package server exposes the business API over HTTP with JSON bodies.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"time"

	"timesheet/internal/api"
	"timesheet/internal/errors"
)

// UserHeader carries the authenticated user id, set by the trusted proxy in
// front of the service
const UserHeader = "X-User-ID"

// Options configures the HTTP server
type Options struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	DateFormat      string
	TimeFormat      string
}

// Server routes HTTP requests to the business API
type Server struct {
	api  api.BusinessAPI
	log  *slog.Logger
	opts Options
}

// New creates a server
func New(businessAPI api.BusinessAPI, logger *slog.Logger, opts Options) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{api: businessAPI, log: logger, opts: opts}
}

// Handler returns the routed handler wrapped in request logging
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	const org = "/api/v1/organizations/{org}"
	mux.HandleFunc("GET "+org+"/period", s.handlePeriod)
	mux.HandleFunc("GET "+org+"/timesheet", s.handleOwnTimesheet)
	mux.HandleFunc("GET "+org+"/timesheets", s.handlePending)
	mux.HandleFunc("GET "+org+"/approvals", s.handleBoard)
	mux.HandleFunc("GET "+org+"/time-entries", s.handleListEntries)
	mux.HandleFunc("POST "+org+"/time-entries", s.handleCreateEntry)
	mux.HandleFunc("POST "+org+"/time-entries/{action}", s.handleTransition)
	mux.HandleFunc("POST "+org+"/time-entries/{id}/stop", s.handleStopEntry)
	mux.HandleFunc("DELETE "+org+"/time-entries/{id}", s.handleDeleteEntry)
	mux.HandleFunc("GET "+org+"/members/{member}/overview", s.handleOverview)
	mux.HandleFunc("GET "+org+"/export.csv", s.handleExport)

	return loggingMiddleware(s.log, mux)
}

// HTTPServer returns a configured http.Server
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.opts.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := s.HTTPServer()

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// statusRecorder remembers the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// loggingMiddleware provides basic request logging.
func loggingMiddleware(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.String("remote", r.RemoteAddr),
			slog.Duration("dur", time.Since(start)),
		)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	if errors.ShouldLogError(err) {
		s.log.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
	s.writeJSON(w, status, map[string]string{
		"error": errors.GetUserMessage(err),
		"code":  errors.GetErrorCode(err),
	})
}
