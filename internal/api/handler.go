// Package api implements the hosted scenariq REST API.
// It provides case submission, run, and read endpoints backed by Postgres
// and blob storage.
package api

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/scenariq/scenariq/internal/runs"
	"github.com/scenariq/scenariq/internal/store"
)

// Handler is the top-level API handler for the hosted scenariq service.
type Handler struct {
	db       *sql.DB
	storeSvc *store.Service
	runSvc   *runs.Service
}

// NewHandler creates a new API handler.
func NewHandler(db *sql.DB, storeSvc *store.Service, runSvc *runs.Service) *Handler {
	return &Handler{
		db:       db,
		storeSvc: storeSvc,
		runSvc:   runSvc,
	}
}

// RegisterRoutes registers all API routes on the given ServeMux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Write endpoints (auth-protected)
	mux.HandleFunc("POST /api/v1/cases", h.handleSubmitCase)
	mux.HandleFunc("POST /api/v1/cases/{caseID}/runs", h.handleStartRun)

	// Read endpoints
	mux.HandleFunc("GET /api/cases", h.handleListCases)
	mux.HandleFunc("GET /api/cases/{caseID}", h.handleGetCase)
	mux.HandleFunc("GET /api/cases/{caseID}/runs", h.handleListRuns)
	mux.HandleFunc("GET /api/cases/{caseID}/trace", h.handleTrace)
	mux.HandleFunc("GET /api/runs/{runID}", h.handleGetRun)
	mux.HandleFunc("GET /api/runs/{runID}/results", h.handleGetResults)
	mux.HandleFunc("GET /api/runs/{runID}/ranking", h.handleRanking)
	mux.HandleFunc("GET /api/runs/{runID}/comparison", h.handleComparison)

	mux.HandleFunc("GET /healthz", h.handleHealthz)
}

func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		if err := h.db.PingContext(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unreachable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
