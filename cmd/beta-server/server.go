package main

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	boulderbeta "github.com/menta2k/boulder-beta"
	"github.com/menta2k/boulder-beta/pkg/client"
	"github.com/menta2k/boulder-beta/pkg/heuristic"
	"github.com/menta2k/boulder-beta/pkg/types"
)

const maxRequestBytes = 1 << 20

type server struct {
	analyzer client.BetaAnalyzer
	backend  string
}

func newRouter(s *server, timeout time.Duration) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if timeout > 0 {
		r.Use(middleware.Timeout(timeout))
	}

	r.Get("/", s.handleRoot)
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/beta", s.handleBeta)
	})
	return r
}

func (s *server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Boulder Beta API",
		"version": boulderbeta.Version,
	})
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"backend": s.backend,
		"version": boulderbeta.Version,
	})
}

// handleBeta generates a beta for the posted holds.
// POST /api/beta
func (s *server) handleBeta(w http.ResponseWriter, r *http.Request) {
	var req types.BetaRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.analyzer.Analyze(r.Context(), req)
	switch {
	case errors.Is(err, heuristic.ErrNoHolds),
		errors.Is(err, heuristic.ErrTooFewHolds),
		errors.Is(err, heuristic.ErrInvalidHeight):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		log.Printf("beta generation failed [%s]: %v", middleware.GetReqID(r.Context()), err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
