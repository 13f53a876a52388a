// Package httpapi exposes the CrewDesk backend over HTTP/JSON: schools,
// shifts, time-off, yearbook checklists and conversation feeds.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/crewdesk-app/crewdesk/internal/common"
	"github.com/crewdesk-app/crewdesk/internal/logging"
	"github.com/crewdesk-app/crewdesk/internal/server/chat"
	"github.com/crewdesk-app/crewdesk/internal/server/store"
)

// ChatStore is the slice of the chat backend used by the handlers.
type ChatStore interface {
	AddMessage(ctx context.Context, msg *chat.Message) error
	Messages(ctx context.Context, conversationID, beforeID string, limit int) ([]chat.Message, bool, error)
	History(ctx context.Context, conversationID string) ([]chat.Message, error)
	MarkRead(ctx context.Context, conversationID, employeeID, msgID string) error
}

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	store store.DataStore
	chat  ChatStore
	log   logging.Logger
}

// NewHandler creates a Handler over the given stores.
func NewHandler(ds store.DataStore, cs ChatStore, log logging.Logger) *Handler {
	if log == nil {
		log = logging.NopLogger{}
	}
	return &Handler{store: ds, chat: cs, log: log}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}

// fail maps store sentinels onto HTTP statuses and writes the response.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrNotFound):
		h.Error(w, http.StatusNotFound, "not found")
	case errors.Is(err, common.ErrAlreadyExists):
		h.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, common.ErrValidation):
		h.Error(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, common.ErrNotAuthenticated):
		h.Error(w, http.StatusUnauthorized, "authentication required")
	default:
		h.log.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		h.Error(w, http.StatusInternalServerError, "internal error")
	}
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
