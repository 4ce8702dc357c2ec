// Package server exposes the registry over HTTP: company queries, single
// lookups and asynchronous enrichment triggers.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/finprospect/internal/enrich"
	"github.com/sells-group/finprospect/internal/model"
	"github.com/sells-group/finprospect/internal/store"
	"github.com/sells-group/finprospect/internal/unify"
)

// Server is the HTTP API over the store and enrichment pipeline.
type Server struct {
	store    store.Store
	orch     *enrich.Orchestrator
	searcher *unify.Searcher
	srv      *http.Server
}

// New builds the server with all routes registered.
func New(port int, st store.Store, orch *enrich.Orchestrator, searcher *unify.Searcher) *Server {
	s := &Server{
		store:    st,
		orch:     orch,
		searcher: searcher,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/companies", s.handleListCompanies)
	r.Get("/companies/{businessID}", s.handleGetCompany)
	r.Get("/search", s.handleSearch)
	r.Post("/enrich/{businessID}", s.handleEnrich)

	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the route tree for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		zap.L().Info("server: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.srv.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	zap.L().Info("server: listening", zap.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return eris.Wrap(err, "server: listen")
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	businessID := chi.URLParam(r, "businessID")
	if !model.ValidBusinessID(businessID) {
		writeError(w, http.StatusBadRequest, "invalid business id")
		return
	}

	company, err := s.store.GetCompany(r.Context(), businessID)
	if err != nil {
		zap.L().Error("server: get company failed",
			zap.String("business_id", businessID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	if company == nil {
		writeError(w, http.StatusNotFound, "company not found")
		return
	}
	writeJSON(w, http.StatusOK, company)
}

func (s *Server) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := s.store.QueryCompanies(r.Context(), f)
	if err != nil {
		zap.L().Error("server: query companies failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "q parameter is required")
		return
	}

	result, err := s.searcher.SearchAll(r.Context(), query)
	if err != nil {
		zap.L().Error("server: search failed", zap.String("query", query), zap.Error(err))
		writeError(w, http.StatusBadGateway, "all sources failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleEnrich accepts the request and runs the pipeline in the background;
// the source fan-out can take tens of seconds, too long to hold a request.
func (s *Server) handleEnrich(w http.ResponseWriter, r *http.Request) {
	businessID := chi.URLParam(r, "businessID")
	if !model.ValidBusinessID(businessID) {
		writeError(w, http.StatusBadRequest, "invalid business id")
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		result, err := s.orch.Enrich(ctx, businessID)
		if err != nil {
			zap.L().Error("server: async enrichment failed",
				zap.String("business_id", businessID), zap.Error(err))
			return
		}
		zap.L().Info("server: async enrichment complete",
			zap.String("run_id", result.RunID),
			zap.String("business_id", businessID),
			zap.Bool("degraded", result.Degraded()),
		)
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{
		"status":      "accepted",
		"business_id": businessID,
	})
}

func parseFilter(r *http.Request) (store.Filter, error) {
	q := r.URL.Query()
	var f store.Filter

	parse := func(key string) (*float64, error) {
		raw := q.Get(key)
		if raw == "" {
			return nil, nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, eris.Errorf("%s must be a number", key)
		}
		return &v, nil
	}

	var err error
	if f.MinTurnover, err = parse("min_turnover"); err != nil {
		return f, err
	}
	if f.MaxTurnover, err = parse("max_turnover"); err != nil {
		return f, err
	}
	if raw := q.Get("has_own_products"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return f, eris.New("has_own_products must be a boolean")
		}
		f.HasOwnProducts = &v
	}
	f.Industry = q.Get("industry")
	f.Location = q.Get("location")
	if raw := q.Get("page"); raw != "" {
		if f.Page, err = strconv.Atoi(raw); err != nil || f.Page < 1 {
			return f, eris.New("page must be a positive integer")
		}
	}
	if raw := q.Get("page_size"); raw != "" {
		if f.PageSize, err = strconv.Atoi(raw); err != nil || f.PageSize < 1 {
			return f, eris.New("page_size must be a positive integer")
		}
	}
	f.SortBy = store.SortField(q.Get("sort_by"))
	f.SortDesc = q.Get("sort_dir") == "desc"
	return f, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
