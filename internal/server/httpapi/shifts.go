package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/crewdesk-app/crewdesk/internal/server/metrics"
	"github.com/crewdesk-app/crewdesk/internal/server/models"
)

// ShiftsResponse lists shifts for one employee and day.
type ShiftsResponse struct {
	Shifts []models.Shift `json:"shifts"`
}

// ShiftResponse wraps a single shift.
type ShiftResponse struct {
	Shift models.Shift `json:"shift"`
}

// ListShifts handles GET /api/shifts?employee_id=&day=.
func (h *Handler) ListShifts(w http.ResponseWriter, r *http.Request) {
	empID := r.URL.Query().Get("employee_id")
	if empID == "" {
		empID = employeeID(r.Context())
	}

	day := time.Now().UTC()
	if v := r.URL.Query().Get("day"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			h.Error(w, http.StatusBadRequest, "day must be YYYY-MM-DD")
			return
		}
		day = parsed
	}

	shifts, err := h.store.ListShifts(r.Context(), empID, day)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if shifts == nil {
		shifts = []models.Shift{}
	}
	h.JSON(w, http.StatusOK, ShiftsResponse{Shifts: shifts})
}

// ClockIn handles POST /api/shifts/{id}/clock-in.
func (h *Handler) ClockIn(w http.ResponseWriter, r *http.Request) {
	shift, err := h.store.ClockIn(r.Context(), chi.URLParam(r, "id"), time.Now().UTC())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	metrics.PunchesRecorded.WithLabelValues("in").Inc()
	h.JSON(w, http.StatusOK, ShiftResponse{Shift: *shift})
}

// ClockOut handles POST /api/shifts/{id}/clock-out.
func (h *Handler) ClockOut(w http.ResponseWriter, r *http.Request) {
	shift, err := h.store.ClockOut(r.Context(), chi.URLParam(r, "id"), time.Now().UTC())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	metrics.PunchesRecorded.WithLabelValues("out").Inc()
	h.JSON(w, http.StatusOK, ShiftResponse{Shift: *shift})
}
