// Package http exposes a minimal status and query surface over the core
// services, in the teacher's net/http.ServeMux + writeJSON style, reduced
// to the handful of endpoints a local indexer actually needs (spec.md §6
// external interfaces is a CLI/library contract, not a multi-tenant API;
// this server exists only to expose the status record it is given and
// the query path over HTTP, per the expansion's Status surface; the
// index subcommand does not start it).
package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/custodia-labs/idxbeast/internal/core/domain"
	"github.com/custodia-labs/idxbeast/internal/core/ports/driving"
	"github.com/custodia-labs/idxbeast/internal/status"
)

// Server is the status/debug HTTP surface.
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux

	status       *status.Status
	queryService driving.QueryService
	version      string
}

// Config holds server configuration.
type Config struct {
	Addr    string
	Version string
}

// NewServer wires routes against the given status recorder and query
// service. queryService may be nil, in which case /query answers 503.
func NewServer(cfg Config, st *status.Status, queryService driving.QueryService) *Server {
	s := &Server{
		router:       http.NewServeMux(),
		status:       st,
		queryService: queryService,
		version:      cfg.Version,
	}

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /version", s.handleVersion)
	s.router.HandleFunc("GET /status", s.handleStatus)
	s.router.HandleFunc("GET /query", s.handleQuery)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.status.Snapshot())
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if s.queryService == nil {
		writeError(w, http.StatusServiceUnavailable, "query service not configured")
		return
	}

	text := r.URL.Query().Get("q")
	if text == "" {
		writeError(w, http.StatusBadRequest, "missing required query parameter: q")
		return
	}

	opts := domain.DefaultQueryOptions(text)
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.Limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.Offset = n
		}
	}
	if v := r.URL.Query().Get("order_by"); v != "" {
		opts.OrderBy = domain.OrderBy(v)
	}
	if v := r.URL.Query().Get("order_dir"); v != "" {
		opts.OrderDir = domain.OrderDir(v)
	}

	result, err := s.queryService.Search(r.Context(), opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Start runs the server until ctx is canceled, then gracefully shuts it
// down.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
