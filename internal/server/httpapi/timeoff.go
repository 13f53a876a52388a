package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/crewdesk-app/crewdesk/internal/server/metrics"
	"github.com/crewdesk-app/crewdesk/internal/server/models"
)

// TimeOffListResponse lists an employee's requests, newest first.
type TimeOffListResponse struct {
	Requests []models.TimeOffRequest `json:"requests"`
}

// TimeOffResponse wraps a single request.
type TimeOffResponse struct {
	Request models.TimeOffRequest `json:"request"`
}

// CreateTimeOffRequest is the submission body.
type CreateTimeOffRequest struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Hours     float64   `json:"hours"`
	Paid      bool      `json:"paid"`
	Reason    string    `json:"reason,omitempty"`
}

// BalanceResponse wraps an employee's PTO balance.
type BalanceResponse struct {
	Balance models.PTOBalance `json:"balance"`
}

// ListTimeOff handles GET /api/timeoff?employee_id=.
func (h *Handler) ListTimeOff(w http.ResponseWriter, r *http.Request) {
	empID := r.URL.Query().Get("employee_id")
	if empID == "" {
		empID = employeeID(r.Context())
	}

	requests, err := h.store.ListTimeOff(r.Context(), empID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if requests == nil {
		requests = []models.TimeOffRequest{}
	}
	h.JSON(w, http.StatusOK, TimeOffListResponse{Requests: requests})
}

// CreateTimeOff handles POST /api/timeoff.
func (h *Handler) CreateTimeOff(w http.ResponseWriter, r *http.Request) {
	var req CreateTimeOffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Hours <= 0 {
		h.Error(w, http.StatusUnprocessableEntity, "hours must be positive")
		return
	}
	if req.EndDate.Before(req.StartDate) {
		h.Error(w, http.StatusUnprocessableEntity, "end date precedes start date")
		return
	}

	row := models.TimeOffRequest{
		EmployeeID: employeeID(r.Context()),
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Hours:      req.Hours,
		Paid:       req.Paid,
		Reason:     req.Reason,
	}
	if err := h.store.CreateTimeOff(r.Context(), &row); err != nil {
		h.fail(w, r, err)
		return
	}
	metrics.TimeOffRequests.WithLabelValues(models.TimeOffPending).Inc()
	h.JSON(w, http.StatusCreated, TimeOffResponse{Request: row})
}

// CancelTimeOff handles POST /api/timeoff/{id}/cancel.
func (h *Handler) CancelTimeOff(w http.ResponseWriter, r *http.Request) {
	row, err := h.store.CancelTimeOff(r.Context(), chi.URLParam(r, "id"), employeeID(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	metrics.TimeOffRequests.WithLabelValues(models.TimeOffCanceled).Inc()
	h.JSON(w, http.StatusOK, TimeOffResponse{Request: *row})
}

// ApproveTimeOff handles POST /api/timeoff/{id}/approve.
func (h *Handler) ApproveTimeOff(w http.ResponseWriter, r *http.Request) {
	h.setTimeOffStatus(w, r, models.TimeOffApproved)
}

// DenyTimeOff handles POST /api/timeoff/{id}/deny.
func (h *Handler) DenyTimeOff(w http.ResponseWriter, r *http.Request) {
	h.setTimeOffStatus(w, r, models.TimeOffDenied)
}

func (h *Handler) setTimeOffStatus(w http.ResponseWriter, r *http.Request, status string) {
	row, err := h.store.SetTimeOffStatus(r.Context(), chi.URLParam(r, "id"), status)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	metrics.TimeOffRequests.WithLabelValues(status).Inc()
	h.JSON(w, http.StatusOK, TimeOffResponse{Request: *row})
}

// PTOBalance handles GET /api/pto/balance?employee_id=.
func (h *Handler) PTOBalance(w http.ResponseWriter, r *http.Request) {
	empID := r.URL.Query().Get("employee_id")
	if empID == "" {
		empID = employeeID(r.Context())
	}

	balance, err := h.store.PTOBalance(r.Context(), empID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.JSON(w, http.StatusOK, BalanceResponse{Balance: *balance})
}
