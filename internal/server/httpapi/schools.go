package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/crewdesk-app/crewdesk/internal/server/models"
)

// SchoolsResponse lists all schools visible to the caller.
type SchoolsResponse struct {
	Schools []models.School `json:"schools"`
}

// SchoolResponse wraps a single school.
type SchoolResponse struct {
	School models.School `json:"school"`
}

// ListSchools handles GET /api/schools.
func (h *Handler) ListSchools(w http.ResponseWriter, r *http.Request) {
	schools, err := h.store.ListSchools(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if schools == nil {
		schools = []models.School{}
	}
	h.JSON(w, http.StatusOK, SchoolsResponse{Schools: schools})
}

// GetSchool handles GET /api/schools/{id}.
func (h *Handler) GetSchool(w http.ResponseWriter, r *http.Request) {
	school, err := h.store.GetSchool(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.JSON(w, http.StatusOK, SchoolResponse{School: *school})
}
