// Package httpapi serves the literature resource API over HTTP.
//
// Creation requests are accepted with 202 and a Location header pointing at
// the job status. Finished resources are read back by kind and params hash.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/custodia-labs/litmapper/internal/core/domain"
	"github.com/custodia-labs/litmapper/internal/core/ports/driving"
	"github.com/custodia-labs/litmapper/internal/logger"
)

// maxBodyBytes bounds request bodies. Temporary article id lists are the
// largest legitimate payloads.
const maxBodyBytes = 8 << 20

// ErrMissingService is returned when a required service is nil.
var ErrMissingService = errors.New("httpapi: resource and job services are required")

// Server routes API requests to the resource and job services.
type Server struct {
	resources driving.ResourceService
	jobs      driving.JobService
	mux       *http.ServeMux
}

// NewServer creates a server and registers its routes.
func NewServer(resources driving.ResourceService, jobs driving.JobService) (*Server, error) {
	if resources == nil || jobs == nil {
		return nil, ErrMissingService
	}

	s := &Server{resources: resources, jobs: jobs, mux: http.NewServeMux()}

	s.mux.HandleFunc("POST /literature/filter_sets", s.handleCreate(domain.KindFilterSet))
	s.mux.HandleFunc("POST /literature/clustering", s.handleCreate(domain.KindClustering))
	s.mux.HandleFunc("POST /literature/article_groups", s.handleCreate(domain.KindArticleGroup))
	s.mux.HandleFunc("GET /literature/filter_set/{hash}/articles", s.handleFilterSetArticles)
	s.mux.HandleFunc("GET /literature/{kind}/{hash}", s.handleGet)
	s.mux.HandleFunc("DELETE /literature/{kind}/{hash}", s.handleEvict)
	s.mux.HandleFunc("GET /info/job/{id}", s.handleJob)

	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r)
	logger.Debug("%s %s -> %d (%s)", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond))
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	logger.Info("API listening on %s", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) handleCreate(kind domain.ResourceKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		force, err := parseForce(r)
		if err != nil {
			writeError(w, kind, err)
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			writeError(w, kind, fmt.Errorf("%w: reading body: %v", domain.ErrInvalidInput, err))
			return
		}
		params, err := domain.DecodeParams(kind, body)
		if err != nil {
			writeError(w, kind, err)
			return
		}

		job, err := s.jobs.Start(r.Context(), params, force)
		if err != nil {
			writeError(w, kind, err)
			return
		}

		logger.Info("Accepted %s job %s for %s", kind, job.ID, params.Hash())
		w.Header().Set("Location", job.Location())
		writeJSON(w, http.StatusAccepted, job)
	}
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	kind, err := domain.ParseResourceKind(r.PathValue("kind"))
	if err != nil {
		writeError(w, "", err)
		return
	}

	result, err := s.resources.FindHash(r.Context(), kind, r.PathValue("hash"))
	if err != nil {
		writeError(w, kind, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleEvict(w http.ResponseWriter, r *http.Request) {
	kind, err := domain.ParseResourceKind(r.PathValue("kind"))
	if err != nil {
		writeError(w, "", err)
		return
	}

	if err := s.resources.Evict(r.Context(), kind, r.PathValue("hash")); err != nil {
		writeError(w, kind, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFilterSetArticles(w http.ResponseWriter, r *http.Request) {
	articles, err := s.resources.FilterSetArticles(r.Context(), r.PathValue("hash"))
	if err != nil {
		writeError(w, domain.KindFilterSet, err)
		return
	}
	if articles == nil {
		articles = []domain.Article{}
	}
	writeJSON(w, http.StatusOK, articles)
}

func (s *Server) handleJob(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	job, err := s.jobs.Get(r.Context(), id)
	if errors.Is(err, domain.ErrJobNotFound) {
		writeDetail(w, http.StatusNotFound, "No job found for ID: "+id)
		return
	}
	if err != nil {
		writeError(w, "", err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// ==================== Helper Functions ====================

func parseForce(r *http.Request) (bool, error) {
	raw := r.URL.Query().Get("force")
	if raw == "" {
		return false, nil
	}
	force, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: force must be a boolean", domain.ErrInvalidInput)
	}
	return force, nil
}

// errorResponse matches the {"detail": ...} body clients already parse.
type errorResponse struct {
	Detail string `json:"detail"`
}

func writeError(w http.ResponseWriter, kind domain.ResourceKind, err error) {
	switch {
	case errors.Is(err, domain.ErrResourceDoesNotExist):
		writeDetail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrResourceCreationInProgress):
		writeDetail(w, http.StatusConflict, fmt.Sprintf("%s creation is in progress", kindTitle(kind)))
	case errors.Is(err, domain.ErrUnsupportedResource), errors.Is(err, domain.ErrJobNotFound):
		writeDetail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
	default:
		logger.Error("Request failed: %v", err)
		writeDetail(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Writing response: %v", err)
	}
}

func kindTitle(kind domain.ResourceKind) string {
	switch kind {
	case domain.KindFilterSet:
		return "Filter set"
	case domain.KindClustering:
		return "Clustering"
	case domain.KindArticleGroup:
		return "Article group"
	default:
		return "Resource"
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
