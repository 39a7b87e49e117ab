package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/scenariq/scenariq/internal/store"
	"github.com/scenariq/scenariq/pkg/decision"
)

type caseResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func caseRowToResponse(c *store.CaseRow) caseResponse {
	return caseResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:   c.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// handleSubmitCase accepts a full case document as the request body,
// validates it, and stores it. Resubmitting a case with the same name
// replaces it.
func (h *Handler) handleSubmitCase(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 10<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading request body: "+err.Error())
		return
	}

	row, err := h.runSvc.SubmitCase(r.Context(), body)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, caseRowToResponse(row))
}

func (h *Handler) handleListCases(w http.ResponseWriter, r *http.Request) {
	cases, err := h.storeSvc.ListCases(r.Context())
	if err != nil {
		writeJSON(w, http.StatusOK, []caseResponse{})
		return
	}

	var result []caseResponse
	for i := range cases {
		result = append(result, caseRowToResponse(&cases[i]))
	}

	if result == nil {
		result = []caseResponse{}
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleGetCase(w http.ResponseWriter, r *http.Request) {
	caseID := r.PathValue("caseID")

	row, err := h.storeSvc.GetCase(r.Context(), caseID)
	if err != nil {
		writeError(w, http.StatusNotFound, "case not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":          row.ID,
		"name":        row.Name,
		"description": row.Description,
		"spec":        json.RawMessage(row.Spec),
	})
}

// handleTrace answers ?node=<name>&direction=upstream|downstream with the
// structural neighborhood of a node in the stored case.
func (h *Handler) handleTrace(w http.ResponseWriter, r *http.Request) {
	caseID := r.PathValue("caseID")
	node := r.URL.Query().Get("node")
	direction := r.URL.Query().Get("direction")
	if direction == "" {
		direction = "upstream"
	}

	if node == "" {
		writeError(w, http.StatusBadRequest, "node query parameter is required")
		return
	}

	row, err := h.storeSvc.GetCase(r.Context(), caseID)
	if err != nil {
		writeError(w, http.StatusNotFound, "case not found")
		return
	}

	var c decision.Case
	if err := json.Unmarshal(row.Spec, &c); err != nil {
		writeError(w, http.StatusInternalServerError, "stored case is corrupt")
		return
	}
	if err := c.Validate(); err != nil {
		writeError(w, http.StatusInternalServerError, "stored case no longer validates: "+err.Error())
		return
	}

	var trace *decision.TraceResult
	switch strings.ToLower(direction) {
	case "upstream":
		trace = c.Upstream(node)
	case "downstream":
		trace = c.Downstream(node)
	default:
		writeError(w, http.StatusBadRequest, "direction must be upstream or downstream")
		return
	}

	if trace == nil {
		writeError(w, http.StatusNotFound, "node not found in case")
		return
	}
	writeJSON(w, http.StatusOK, trace)
}
