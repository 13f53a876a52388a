package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/crewdesk-app/crewdesk/internal/server/chat"
	"github.com/crewdesk-app/crewdesk/internal/server/metrics"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
	maxBodyLen      = 4000
)

// PostMessageRequest is the send body.
type PostMessageRequest struct {
	Body          string `json:"body"`
	AttachmentRef string `json:"attachment_ref,omitempty"`
}

// PostMessageResponse echoes the stored message.
type PostMessageResponse struct {
	Message chat.Message `json:"message"`
}

// MessagesResponse is one page of history, oldest first.
type MessagesResponse struct {
	Messages []chat.Message `json:"messages"`
	HasMore  bool           `json:"has_more"`
}

// HistoryResponse is the full conversation, oldest first.
type HistoryResponse struct {
	Messages []chat.Message `json:"messages"`
}

// MarkReadRequest advances the caller's read watermark.
type MarkReadRequest struct {
	MessageID string `json:"message_id"`
}

// PostMessage handles POST /api/conversations/{id}/messages.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	var req PostMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.Body = strings.TrimSpace(req.Body)
	if req.Body == "" && req.AttachmentRef == "" {
		h.Error(w, http.StatusUnprocessableEntity, "message needs a body or an attachment")
		return
	}
	if len(req.Body) > maxBodyLen {
		h.Error(w, http.StatusUnprocessableEntity, "body too long")
		return
	}

	msg := chat.Message{
		ConversationID: chi.URLParam(r, "id"),
		From:           employeeID(r.Context()),
		Body:           req.Body,
		AttachmentRef:  req.AttachmentRef,
	}
	if err := h.chat.AddMessage(r.Context(), &msg); err != nil {
		h.fail(w, r, err)
		return
	}
	metrics.MessagesPosted.Inc()
	h.JSON(w, http.StatusCreated, PostMessageResponse{Message: msg})
}

// GetMessages handles GET /api/conversations/{id}/messages?before=&limit=.
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	limit := defaultPageSize
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			h.Error(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	messages, hasMore, err := h.chat.Messages(r.Context(),
		chi.URLParam(r, "id"), r.URL.Query().Get("before"), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if messages == nil {
		messages = []chat.Message{}
	}
	h.JSON(w, http.StatusOK, MessagesResponse{Messages: messages, HasMore: hasMore})
}

// GetHistory handles GET /api/conversations/{id}/history.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	messages, err := h.chat.History(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if messages == nil {
		messages = []chat.Message{}
	}
	h.JSON(w, http.StatusOK, HistoryResponse{Messages: messages})
}

// MarkRead handles POST /api/conversations/{id}/read.
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	var req MarkReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.MessageID == "" {
		h.Error(w, http.StatusUnprocessableEntity, "message_id is required")
		return
	}

	err := h.chat.MarkRead(r.Context(), chi.URLParam(r, "id"), employeeID(r.Context()), req.MessageID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
