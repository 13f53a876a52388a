// Package chat adapts the CrewDesk chat backend to the feed engine: it
// implements feed.Source over HTTP plus a Redis change stream, and converts
// the wire message model into the local one.
package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/crewdesk-app/crewdesk/internal/client/models"
	"github.com/crewdesk-app/crewdesk/internal/common"
)

// wireMessage is the message shape on the wire. Timestamps travel as unix
// milliseconds. There is no client correlation id; optimistic sends are
// matched heuristically by the feed tracker.
type wireMessage struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversation_id"`
	From           string `json:"from"`
	Body           string `json:"body,omitempty"`
	AttachmentRef  string `json:"attachment_ref,omitempty"`
	Timestamp      int64  `json:"ts"`
}

// wireChange mirrors feed.Change on the wire.
type wireChange struct {
	Kind string          `json:"kind"`
	ID   string          `json:"id,omitempty"`
	Item json.RawMessage `json:"item,omitempty"`
}

// wireBatch is one pub/sub delivery of changes.
type wireBatch struct {
	Changes []wireChange `json:"changes"`
}

// Convert decodes a wire item into models.Message. Malformed items fail with
// ErrConversionFailed so the reconciler can skip them without sinking the
// batch. Convert satisfies feed.Converter.
func Convert(raw json.RawMessage) (models.Message, error) {
	var w wireMessage
	if err := json.Unmarshal(raw, &w); err != nil {
		return models.Message{}, fmt.Errorf("decode item: %w", errors.Join(common.ErrConversionFailed, err))
	}
	if w.ID == "" || w.From == "" || w.Timestamp <= 0 {
		return models.Message{}, fmt.Errorf("item missing id, sender or timestamp: %w", common.ErrConversionFailed)
	}
	return models.Message{
		ID:             w.ID,
		ConversationID: w.ConversationID,
		AuthorID:       w.From,
		Body:           w.Body,
		AttachmentRef:  w.AttachmentRef,
		CreatedAt:      time.UnixMilli(w.Timestamp).UTC(),
	}, nil
}
