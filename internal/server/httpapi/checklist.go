package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/crewdesk-app/crewdesk/internal/server/metrics"
	"github.com/crewdesk-app/crewdesk/internal/server/models"
)

// ChecklistResponse lists a school's yearbook checklist.
type ChecklistResponse struct {
	Entries []models.ChecklistEntry `json:"entries"`
}

// ChecklistEntryResponse wraps a single entry.
type ChecklistEntryResponse struct {
	Entry models.ChecklistEntry `json:"entry"`
}

// SetChecklistDoneRequest is the PATCH body.
type SetChecklistDoneRequest struct {
	Done bool `json:"done"`
}

// ListChecklist handles GET /api/schools/{id}/checklist.
func (h *Handler) ListChecklist(w http.ResponseWriter, r *http.Request) {
	schoolID := chi.URLParam(r, "id")

	// 404 for unknown schools rather than an empty list.
	if _, err := h.store.GetSchool(r.Context(), schoolID); err != nil {
		h.fail(w, r, err)
		return
	}

	entries, err := h.store.ListChecklist(r.Context(), schoolID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if entries == nil {
		entries = []models.ChecklistEntry{}
	}
	h.JSON(w, http.StatusOK, ChecklistResponse{Entries: entries})
}

// SetChecklistDone handles PATCH /api/checklist/{id}.
func (h *Handler) SetChecklistDone(w http.ResponseWriter, r *http.Request) {
	var req SetChecklistDoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	entry, err := h.store.SetChecklistDone(r.Context(), chi.URLParam(r, "id"), req.Done, employeeID(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	metrics.ChecklistToggles.Inc()
	h.JSON(w, http.StatusOK, ChecklistEntryResponse{Entry: *entry})
}
