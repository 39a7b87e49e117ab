package api

import (
	"net/http"
	"time"

	"github.com/scenariq/scenariq/internal/store"
	"github.com/scenariq/scenariq/pkg/results"
)

type runResponse struct {
	ID         string  `json:"id"`
	CaseID     string  `json:"case_id"`
	Status     string  `json:"status"`
	Error      *string `json:"error,omitempty"`
	CreatedAt  string  `json:"created_at"`
	StartedAt  *string `json:"started_at,omitempty"`
	FinishedAt *string `json:"finished_at,omitempty"`
}

func runRowToResponse(r *store.RunRow) runResponse {
	resp := runResponse{
		ID:        r.ID,
		CaseID:    r.CaseID,
		Status:    r.Status,
		Error:     r.Error,
		CreatedAt: r.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	resp.StartedAt = formatTimePtr(r.StartedAt)
	resp.FinishedAt = formatTimePtr(r.FinishedAt)
	return resp
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02T15:04:05Z")
	return &s
}

// handleStartRun evaluates a stored case and records the run. Evaluation
// runs synchronously; the response carries the terminal run state.
func (h *Handler) handleStartRun(w http.ResponseWriter, r *http.Request) {
	caseID := r.PathValue("caseID")

	if _, err := h.storeSvc.GetCase(r.Context(), caseID); err != nil {
		writeError(w, http.StatusNotFound, "case not found")
		return
	}

	run, err := h.runSvc.StartRun(r.Context(), caseID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "starting run: "+err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, runRowToResponse(run))
}

func (h *Handler) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("runID")

	run, err := h.storeSvc.GetRun(r.Context(), runID)
	if err != nil {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}

	writeJSON(w, http.StatusOK, runRowToResponse(run))
}

func (h *Handler) handleListRuns(w http.ResponseWriter, r *http.Request) {
	caseID := r.PathValue("caseID")

	rows, err := h.storeSvc.ListRunsByCase(r.Context(), caseID)
	if err != nil {
		writeJSON(w, http.StatusOK, []runResponse{})
		return
	}

	var result []runResponse
	for i := range rows {
		result = append(result, runRowToResponse(&rows[i]))
	}

	if result == nil {
		result = []runResponse{}
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) loadResults(w http.ResponseWriter, r *http.Request) *results.Document {
	runID := r.PathValue("runID")

	doc, err := h.runSvc.Results(r.Context(), runID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return nil
	}
	return doc
}

func (h *Handler) handleGetResults(w http.ResponseWriter, r *http.Request) {
	doc := h.loadResults(w, r)
	if doc == nil {
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// handleRanking answers ?scenario=<name> with the option ranking of one
// scenario, or all rankings when the parameter is absent.
func (h *Handler) handleRanking(w http.ResponseWriter, r *http.Request) {
	doc := h.loadResults(w, r)
	if doc == nil {
		return
	}

	scenario := r.URL.Query().Get("scenario")
	if scenario == "" {
		writeJSON(w, http.StatusOK, doc.Rankings)
		return
	}

	ranking, ok := doc.Rankings[scenario]
	if !ok {
		writeError(w, http.StatusNotFound, "no ranking for scenario "+scenario)
		return
	}
	writeJSON(w, http.StatusOK, ranking)
}

func (h *Handler) handleComparison(w http.ResponseWriter, r *http.Request) {
	doc := h.loadResults(w, r)
	if doc == nil {
		return
	}
	writeJSON(w, http.StatusOK, doc.Comparisons)
}
